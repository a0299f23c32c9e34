package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayPalAccount учетная запись PayPal
type PayPalAccount struct {
	ID                uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Email             string          `gorm:"column:email;unique;not null;size:100" json:"-"`
	PasswordEncrypted string          `gorm:"column:password_encrypted;not null" json:"-"`
	Status            string          `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	Balance           decimal.Decimal `gorm:"column:balance;type:numeric(20,2);not null;default:0" json:"balance"`
	Currency          string          `gorm:"column:currency;type:varchar(3);not null;default:'USD'" json:"currency"`
	AssignedTo        *uint           `gorm:"column:assigned_to" json:"assigned_to"`
	CreatedAt         time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PayPalAccount) TableName() string {
	return "paypal_accounts"
}
