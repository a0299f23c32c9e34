package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Role роль сотрудника в бэк-офисе
type Role string

const (
	RoleCFO      Role = "cfo"
	RoleManager  Role = "manager"
	RoleTeamLead Role = "teamlead"
	RoleJunior   Role = "junior"
	RoleTester   Role = "tester"
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
)

// AllRoles перечисляет все роли
var AllRoles = []Role{RoleCFO, RoleManager, RoleTeamLead, RoleJunior, RoleTester, RoleAdmin, RoleHR}

// Valid проверяет, что роль известна
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string    `gorm:"column:first_name;not null;size:50" json:"first_name"`
	LastName  string    `gorm:"column:last_name;not null;size:50" json:"last_name"`
	Email     string    `gorm:"column:email;unique;not null;size:100;index" json:"email"`
	Password  string    `gorm:"column:password;not null;size:100" json:"-"`
	Role      Role      `gorm:"column:role;type:varchar(20);not null;default:'junior'" json:"role"`
	TeamLead  *uint     `gorm:"column:team_lead_id" json:"team_lead_id,omitempty"`
	Active    bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// FullName возвращает имя и фамилию
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// BeforeCreate хук для валидации перед созданием
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if len(u.FirstName) < 2 || len(u.FirstName) > 50 {
		return errors.New("first name must be between 2 and 50 characters")
	}
	if len(u.LastName) < 2 || len(u.LastName) > 50 {
		return errors.New("last name must be between 2 and 50 characters")
	}
	if len(u.Email) < 3 || len(u.Email) > 100 {
		return errors.New("email must be between 3 and 100 characters")
	}
	if !u.Role.Valid() {
		return errors.New("unknown role")
	}
	return nil
}
