package models

import (
	"time"

	"gorm.io/gorm"
)

// CardStatus статус карты
type CardStatus string

const (
	CardStatusActive   CardStatus = "active"
	CardStatusBlocked  CardStatus = "blocked"
	CardStatusInactive CardStatus = "inactive"
)

// Card представляет платежную карту
type Card struct {
	gorm.Model
	PANEncrypted    string      `gorm:"column:pan_encrypted;not null" json:"-"`
	PANHMAC         string      `gorm:"column:pan_hmac;unique;not null" json:"-"`
	SecretEncrypted string      `gorm:"column:secret_encrypted;not null" json:"-"` // срок действия и CVV
	MaskedPAN       string      `gorm:"column:masked_pan;not null" json:"masked_pan"`
	BIN             string      `gorm:"column:bin;type:varchar(6);not null;index" json:"bin"`
	Holder          string      `gorm:"column:holder;size:100" json:"holder"`
	Status          CardStatus  `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	AccountID       uint        `gorm:"column:account_id;not null;index" json:"account_id"`
	Account         BankAccount `gorm:"foreignKey:AccountID" json:"-"`
	AssignedTo      *uint       `gorm:"column:assigned_to;index" json:"assigned_to"`
	// Устаревшая одиночная привязка к казино, читается только через адаптер
	AssignedCasinoID *uint              `gorm:"column:assigned_casino_id" json:"-"`
	Assignments      []CasinoAssignment `gorm:"foreignKey:CardID" json:"-"`
}

// TableName возвращает имя таблицы для модели Card
func (Card) TableName() string {
	return "cards"
}

// AssignmentType тип привязки карты к казино
type AssignmentType string

const (
	AssignmentTesting AssignmentType = "testing"
	AssignmentWork    AssignmentType = "work"
)

// AssignmentStatus статус привязки
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// CasinoAssignment связь карты с казино
type CasinoAssignment struct {
	ID         uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	CardID     uint             `gorm:"column:card_id;not null;index" json:"card_id"`
	CasinoID   uint             `gorm:"column:casino_id;not null;index" json:"casino_id"`
	Casino     *Casino          `gorm:"foreignKey:CasinoID" json:"casino,omitempty"`
	Type       AssignmentType   `gorm:"column:assignment_type;type:varchar(20);not null;default:'testing'" json:"assignment_type"`
	Status     AssignmentStatus `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	HasDeposit bool             `gorm:"column:has_deposit;not null;default:false" json:"has_deposit"`
	AssignedBy uint             `gorm:"column:assigned_by;not null;index" json:"assigned_by"`
	CreatedAt  time.Time        `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CasinoAssignment) TableName() string {
	return "casino_assignments"
}
