package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CasinoStatus статус казино в процессе тестирования
type CasinoStatus string

const (
	CasinoStatusNew      CasinoStatus = "new"
	CasinoStatusTesting  CasinoStatus = "testing"
	CasinoStatusApproved CasinoStatus = "approved"
	CasinoStatusBlocked  CasinoStatus = "blocked"
)

// TimeUnit единица измерения политики времени вывода
type TimeUnit string

const (
	UnitMinutes TimeUnit = "minutes"
	UnitHours   TimeUnit = "hours"
	UnitDays    TimeUnit = "days"
)

// Casino казино под тестированием
type Casino struct {
	ID                  uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                string          `gorm:"column:name;unique;not null;size:100" json:"name"`
	URL                 string          `gorm:"column:url;size:255" json:"url"`
	Status              CasinoStatus    `gorm:"column:status;type:varchar(20);not null;default:'new'" json:"status"`
	AllowedBins         pq.StringArray  `gorm:"column:allowed_bins;type:text[];not null;default:'{}'" json:"allowed_bins"`
	Currency            string          `gorm:"column:currency;type:varchar(3);not null;default:'USD'" json:"currency"`
	AutoApproveLimit    decimal.Decimal `gorm:"column:auto_approve_limit;type:numeric(20,2);not null;default:0" json:"auto_approve_limit"`
	WithdrawalTimeValue int             `gorm:"column:withdrawal_time_value;not null;default:0" json:"withdrawal_time_value"`
	WithdrawalTimeUnit  TimeUnit        `gorm:"column:withdrawal_time_unit;type:varchar(10);not null;default:'hours'" json:"withdrawal_time_unit"`
	CreatedAt           time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Casino) TableName() string {
	return "casinos"
}

// WithdrawalWindow возвращает допустимое время ожидания вывода; 0 - без ограничения
func (c Casino) WithdrawalWindow() time.Duration {
	if c.WithdrawalTimeValue <= 0 {
		return 0
	}
	n := time.Duration(c.WithdrawalTimeValue)
	switch c.WithdrawalTimeUnit {
	case UnitMinutes:
		return n * time.Minute
	case UnitDays:
		return n * 24 * time.Hour
	default:
		return n * time.Hour
	}
}
