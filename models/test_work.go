package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkStatus статус тестового цикла
type WorkStatus string

const (
	WorkPending    WorkStatus = "pending"
	WorkInProgress WorkStatus = "in_progress"
	WorkActive     WorkStatus = "active"
	WorkCompleted  WorkStatus = "completed"
	WorkFailed     WorkStatus = "failed"
	WorkCancelled  WorkStatus = "cancelled"
)

// TestWork один цикл тестирования казино конкретной картой
type TestWork struct {
	ID             uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	CardID         uint             `gorm:"column:card_id;not null;index" json:"card_id"`
	CasinoID       uint             `gorm:"column:casino_id;not null;index" json:"casino_id"`
	Casino         *Casino          `gorm:"foreignKey:CasinoID" json:"casino,omitempty"`
	TesterID       uint             `gorm:"column:tester_id;not null;index" json:"tester_id"`
	Status         WorkStatus       `gorm:"column:status;type:varchar(20);not null;default:'pending'" json:"status"`
	DepositAmount  decimal.Decimal  `gorm:"column:deposit_amount;type:numeric(20,2);not null;default:0" json:"deposit_amount"`
	DepositSuccess *bool            `gorm:"column:deposit_success" json:"deposit_success"`
	Rating         *int             `gorm:"column:rating" json:"rating"`
	Notes          string           `gorm:"column:notes;type:text" json:"notes"`
	Withdrawals    []WorkWithdrawal `gorm:"foreignKey:TestWorkID" json:"withdrawals"`
	CreatedAt      time.Time        `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (TestWork) TableName() string {
	return "test_works"
}

// WithdrawalStatus статус вывода средств
type WithdrawalStatus string

const (
	WithdrawalNew      WithdrawalStatus = "new"
	WithdrawalWaiting  WithdrawalStatus = "waiting"
	WithdrawalReceived WithdrawalStatus = "received"
	WithdrawalBlocked  WithdrawalStatus = "blocked"
)

// WorkWithdrawal вывод средств в рамках тестового цикла
type WorkWithdrawal struct {
	ID         uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	TestWorkID uint             `gorm:"column:test_work_id;not null;index" json:"test_work_id"`
	TestWork   *TestWork        `gorm:"foreignKey:TestWorkID" json:"test_work,omitempty"`
	Amount     decimal.Decimal  `gorm:"column:amount;type:numeric(20,2);not null" json:"amount"`
	Status     WithdrawalStatus `gorm:"column:status;type:varchar(20);not null;default:'new'" json:"status"`
	Overdue    bool             `gorm:"column:overdue;not null;default:false" json:"overdue"`
	UpdatedBy  *uint            `gorm:"column:updated_by" json:"updated_by"`
	CreatedAt  time.Time        `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (WorkWithdrawal) TableName() string {
	return "work_withdrawals"
}
