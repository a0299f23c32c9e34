package models

import "time"

// TaskStatus статус задачи
type TaskStatus string

const (
	TaskNew        TaskStatus = "new"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskCancelled  TaskStatus = "cancelled"
)

// Task задача, делегированная сотруднику
type Task struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"column:title;not null;size:200" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	CreatedBy   uint       `gorm:"column:created_by;not null;index" json:"created_by"`
	AssignedTo  uint       `gorm:"column:assigned_to;not null;index" json:"assigned_to"`
	Status      TaskStatus `gorm:"column:status;type:varchar(20);not null;default:'new'" json:"status"`
	Priority    int        `gorm:"column:priority;not null;default:0" json:"priority"`
	DueAt       *time.Time `gorm:"column:due_at" json:"due_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
