package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceHistory запись журнала изменений баланса счета.
// Журнал только дополняется, записи не изменяются.
type BalanceHistory struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID     uint            `gorm:"column:account_id;not null;index" json:"account_id"`
	Delta         decimal.Decimal `gorm:"column:delta;type:numeric(20,2);not null" json:"delta"`
	BalanceBefore decimal.Decimal `gorm:"column:balance_before;type:numeric(20,2);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"column:balance_after;type:numeric(20,2);not null" json:"balance_after"`
	Comment       string          `gorm:"column:comment;size:255" json:"comment"`
	ChangedBy     uint            `gorm:"column:changed_by;not null" json:"changed_by"`
	CreatedAt     time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (BalanceHistory) TableName() string {
	return "balance_history"
}
