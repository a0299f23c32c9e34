package models

import "time"

// Notification уведомление пользователя
type Notification struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   string     `gorm:"column:event_id;type:varchar(36);not null;index" json:"event_id"`
	UserID    uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	Kind      string     `gorm:"column:kind;type:varchar(40);not null" json:"kind"`
	Title     string     `gorm:"column:title;not null;size:200" json:"title"`
	Body      string     `gorm:"column:body;type:text" json:"body"`
	ReadAt    *time.Time `gorm:"column:read_at" json:"read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
