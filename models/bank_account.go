package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bank банк-эмитент, объединяющий счета
type Bank struct {
	ID        uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string        `gorm:"column:name;unique;not null;size:100" json:"name"`
	Country   string        `gorm:"column:country;size:2" json:"country"`
	Accounts  []BankAccount `gorm:"foreignKey:BankID" json:"accounts,omitempty"`
	CreatedAt time.Time     `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Bank) TableName() string {
	return "banks"
}

type BankAccount struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	BankID    uint            `gorm:"column:bank_id;not null;index" json:"bank_id"`
	Bank      *Bank           `gorm:"foreignKey:BankID" json:"bank,omitempty"`
	Number    string          `gorm:"column:number;unique;not null" json:"number"`
	Holder    string          `gorm:"column:holder;not null" json:"holder"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(20,2);not null;default:0" json:"balance"`
	Currency  string          `gorm:"column:currency;type:varchar(3);not null;default:'USD'" json:"currency"`
	Cards     []Card          `gorm:"foreignKey:AccountID" json:"cards,omitempty"`
	CreatedAt time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (BankAccount) TableName() string {
	return "bank_accounts"
}
