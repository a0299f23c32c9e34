package services

import (
	"backoffice/models"
	"backoffice/presentation"
	"backoffice/utils"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreatePayPalRequest данные учетной записи PayPal
type CreatePayPalRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	Password   string          `json:"password" validate:"required,min=6,max=128"`
	Balance    decimal.Decimal `json:"balance"`
	Currency   string          `json:"currency" validate:"omitempty,len=3,alpha"`
	AssignedTo *uint           `json:"assigned_to"`
}

// PayPalDTO учетная запись PayPal с маскированными данными
type PayPalDTO struct {
	ID         uint            `json:"id"`
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	Status     string          `json:"status"`
	Balance    decimal.Decimal `json:"balance"`
	Currency   string          `json:"currency"`
	AssignedTo *uint           `json:"assigned_to"`
}

// PayPalService предоставляет методы для работы с учетными записями PayPal
type PayPalService struct {
	db       *gorm.DB
	vault    *utils.Vault
	currency string
}

// NewPayPalService создает новый экземпляр PayPalService
func NewPayPalService(db *gorm.DB, vault *utils.Vault, defaultCurrency string) *PayPalService {
	return &PayPalService{db: db, vault: vault, currency: defaultCurrency}
}

func maskedPayPal(a models.PayPalAccount) PayPalDTO {
	return PayPalDTO{
		ID:         a.ID,
		Email:      presentation.NewSensitiveField(a.Email, presentation.MaskEmail).String(),
		Password:   presentation.MaskSecret(""),
		Status:     a.Status,
		Balance:    a.Balance,
		Currency:   a.Currency,
		AssignedTo: a.AssignedTo,
	}
}

// List возвращает учетные записи в маскированном виде. Junior видит только выданные ему.
func (s *PayPalService) List(actor Actor) ([]PayPalDTO, error) {
	query := s.db.Order("id")
	if actor.Role == models.RoleJunior {
		query = query.Where("assigned_to = ?", actor.ID)
	}
	var list []models.PayPalAccount
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении PayPal: %w", err)
	}
	out := make([]PayPalDTO, 0, len(list))
	for _, a := range list {
		out = append(out, maskedPayPal(a))
	}
	return out, nil
}

// Create сохраняет учетную запись, пароль шифруется
func (s *PayPalService) Create(req CreatePayPalRequest) (*PayPalDTO, error) {
	if req.Balance.IsNegative() {
		return nil, invalid("баланс не может быть отрицательным")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.Model(&models.PayPalAccount{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("учетная запись %s уже существует", presentation.MaskEmail(email))
	}

	encrypted, err := s.vault.Seal(req.Password)
	if err != nil {
		return nil, errors.New("не удалось зашифровать пароль")
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = s.currency
	}

	account := &models.PayPalAccount{
		Email:             email,
		PasswordEncrypted: encrypted,
		Status:            "active",
		Balance:           req.Balance,
		Currency:          currency,
		AssignedTo:        req.AssignedTo,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, fmt.Errorf("не удалось создать учетную запись PayPal: %w", err)
	}
	dto := maskedPayPal(*account)
	return &dto, nil
}

// Reveal возвращает учетную запись с открытыми email и паролем
func (s *PayPalService) Reveal(id uint, actor Actor) (*PayPalDTO, error) {
	var account models.PayPalAccount
	if err := s.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("PayPal", id)
		}
		return nil, err
	}
	if actor.Role == models.RoleJunior && (account.AssignedTo == nil || *account.AssignedTo != actor.ID) {
		return nil, forbidden("учетная запись PayPal #%d выдана другому сотруднику", id)
	}

	password, err := s.vault.Open(account.PasswordEncrypted)
	if err != nil {
		if errors.Is(err, utils.ErrVaultLocked) {
			return nil, conflict("расшифровка недоступна: %v", err)
		}
		return nil, errors.New("не удалось расшифровать пароль")
	}

	dto := maskedPayPal(account)
	dto.Email = account.Email
	dto.Password = password
	return &dto, nil
}
