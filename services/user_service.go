package services

import (
	"backoffice/models"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

type UserDTO struct {
	ID         uint        `json:"id"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	TeamLeadID *uint       `json:"team_lead_id,omitempty"`
	Active     bool        `json:"active"`
}

type CreateUserRequest struct {
	FirstName  string      `json:"first_name" validate:"required,min=2,max=50"`
	LastName   string      `json:"last_name" validate:"required,min=2,max=50"`
	Email      string      `json:"email" validate:"required,email"`
	Password   string      `json:"password" validate:"required,min=8"`
	Role       models.Role `json:"role" validate:"required,oneof=cfo manager teamlead junior tester admin hr"`
	TeamLeadID *uint       `json:"team_lead_id"`
	Active     bool        `json:"-"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// IsActive сообщает, активна ли учетная запись. Удаленный пользователь считается неактивным.
func (h *UserService) IsActive(id uint) (bool, error) {
	var user models.User
	err := h.db.Select("id", "active").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Active, nil
}

// ToUserDTO преобразует модель пользователя для ответа
func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Role:       u.Role,
		TeamLeadID: u.TeamLead,
		Active:     u.Active,
	}
}

// CreateUserInternal создает нового пользователя
func (h *UserService) CreateUserInternal(req CreateUserRequest) (*models.User, error) {
	if !req.Role.Valid() {
		return nil, invalid("неизвестная роль %q", req.Role)
	}

	// Проверяем, существует ли пользователь с таким email
	var existingUser models.User
	if err := h.db.Where("LOWER(email) = LOWER(?)", req.Email).First(&existingUser).Error; err == nil {
		return nil, conflict("пользователь с email %s уже существует", req.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if req.TeamLeadID != nil {
		lead, err := h.FindByID(*req.TeamLeadID)
		if err != nil {
			return nil, err
		}
		if lead.Role != models.RoleTeamLead {
			return nil, invalid("пользователь #%d не является TeamLead", lead.ID)
		}
	}

	// Хешируем пароль
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.TrimSpace(req.Email),
		Password:  string(hashedPassword),
		Role:      req.Role,
		TeamLead:  req.TeamLeadID,
		Active:    req.Active,
	}

	// gorm пропускает нулевое значение bool при default:true, поэтому статус пишем явно
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Model(user).Update("active", req.Active).Error
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пользователя: %w", err)
	}

	return user, nil
}

// Authenticate проверяет email и пароль
func (h *UserService) Authenticate(email, password string) (*models.User, error) {
	user, err := h.FindByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidLogin
	}
	if !user.Active {
		return nil, forbidden("учетная запись не активирована")
	}
	return user, nil
}

// FindByID ищет пользователя по ID
func (h *UserService) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("пользователь", id)
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail ищет пользователя по email (игнорируя регистр и пробелы)
func (h *UserService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := h.db.Where("LOWER(TRIM(email)) = LOWER(TRIM(?))", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: пользователь %s", ErrNotFound, email)
		}
		return nil, err
	}
	return &user, nil
}

// List возвращает сотрудников, при необходимости только с указанной ролью
func (h *UserService) List(role models.Role) ([]UserDTO, error) {
	query := h.db.Order("id")
	if role != "" {
		if !role.Valid() {
			return nil, invalid("неизвестная роль %q", role)
		}
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователей: %w", err)
	}

	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDTO(u))
	}
	return out, nil
}

// SetActive включает или отключает учетную запись
func (h *UserService) SetActive(id uint, active bool) (*UserDTO, error) {
	user, err := h.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := h.db.Model(user).Update("active", active).Error; err != nil {
		return nil, fmt.Errorf("не удалось обновить пользователя: %w", err)
	}
	user.Active = active
	dto := ToUserDTO(*user)
	return &dto, nil
}

// Recipients возвращает активных пользователей с указанными ролями.
// Используется Notifier для рассылки событий по ролям.
func (h *UserService) Recipients(roles ...models.Role) ([]Recipient, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := h.db.Where("role IN ? AND active = ?", roles, true).Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]Recipient, 0, len(users))
	for _, u := range users {
		out = append(out, Recipient{UserID: u.ID, Email: u.Email})
	}
	return out, nil
}

// RecipientByID возвращает получателя для конкретного пользователя
func (h *UserService) RecipientByID(id uint) (Recipient, error) {
	user, err := h.FindByID(id)
	if err != nil {
		return Recipient{}, err
	}
	return Recipient{UserID: user.ID, Email: user.Email}, nil
}
