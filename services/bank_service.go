package services

import (
	"backoffice/models"
	"backoffice/presentation"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BalanceMode способ изменения баланса
type BalanceMode string

const (
	BalanceSet   BalanceMode = "set"
	BalanceDelta BalanceMode = "delta"
)

type BankDTO struct {
	ID       uint             `json:"id"`
	Name     string           `json:"name"`
	Country  string           `json:"country"`
	Accounts []BankAccountDTO `json:"accounts"`
}

type BankAccountDTO struct {
	ID         uint                     `json:"id"`
	BankID     uint                     `json:"bank_id"`
	Number     string                   `json:"number"`
	Holder     string                   `json:"holder"`
	Balance    decimal.Decimal          `json:"balance"`
	Currency   string                   `json:"currency"`
	BalanceUSD decimal.Decimal          `json:"balance_usd"`
	View       presentation.BalanceView `json:"view"`
	CardCount  int                      `json:"card_count"`
	CreatedAt  string                   `json:"created_at"`
	UpdatedAt  string                   `json:"updated_at"`
}

// CreateBankDTO представляет данные для создания банка
type CreateBankDTO struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Country string `json:"country" validate:"omitempty,len=2,alpha"`
}

// CreateBankAccountDTO представляет данные для создания банковского счета
type CreateBankAccountDTO struct {
	Number   string          `json:"number" validate:"omitempty,numeric,min=8,max=34"`
	Holder   string          `json:"holder" validate:"required,min=2,max=100"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency" validate:"omitempty,len=3,alpha"`
}

// BalanceChangeRequest представляет данные для изменения баланса
type BalanceChangeRequest struct {
	Mode    BalanceMode     `json:"mode" validate:"required,oneof=set delta"`
	Amount  decimal.Decimal `json:"amount"`
	Comment string          `json:"comment" validate:"max=255"`
}

// BankService предоставляет методы для работы с банками и счетами
type BankService struct {
	db        *gorm.DB
	rates     *RateService
	notifier  *Notifier
	threshold decimal.Decimal
	currency  string
}

// NewBankService создает новый экземпляр BankService
func NewBankService(db *gorm.DB, rates *RateService, notifier *Notifier, threshold decimal.Decimal, defaultCurrency string) *BankService {
	return &BankService{
		db:        db,
		rates:     rates,
		notifier:  notifier,
		threshold: threshold,
		currency:  defaultCurrency,
	}
}

// ListBanks возвращает банки со счетами
func (s *BankService) ListBanks() ([]BankDTO, error) {
	var banks []models.Bank
	err := s.db.
		Preload("Accounts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Accounts.Cards").
		Order("name").
		Find(&banks).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении банков: %w", err)
	}

	out := make([]BankDTO, 0, len(banks))
	for _, b := range banks {
		dto := BankDTO{ID: b.ID, Name: b.Name, Country: b.Country, Accounts: make([]BankAccountDTO, 0, len(b.Accounts))}
		for _, a := range b.Accounts {
			dto.Accounts = append(dto.Accounts, s.accountToDTO(a))
		}
		out = append(out, dto)
	}
	return out, nil
}

// CreateBank создает банк
func (s *BankService) CreateBank(dto CreateBankDTO) (*BankDTO, error) {
	bank := &models.Bank{Name: strings.TrimSpace(dto.Name), Country: strings.ToUpper(dto.Country)}

	var count int64
	if err := s.db.Model(&models.Bank{}).Where("LOWER(name) = LOWER(?)", bank.Name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("банк %s уже существует", bank.Name)
	}

	if err := s.db.Create(bank).Error; err != nil {
		return nil, fmt.Errorf("не удалось создать банк: %w", err)
	}
	return &BankDTO{ID: bank.ID, Name: bank.Name, Country: bank.Country, Accounts: []BankAccountDTO{}}, nil
}

// GetById возвращает банковский счет по ID
func (s *BankService) GetById(id uint) (*models.BankAccount, error) {
	var account models.BankAccount

	// Ищем счет в базе данных
	if err := s.db.Preload("Cards").First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("банковский счет", id)
		}
		return nil, fmt.Errorf("ошибка при поиске банковского счета: %w", err)
	}

	return &account, nil
}

// CreateBankAccount создает новый банковский счет
func (s *BankService) CreateBankAccount(bankID uint, dto CreateBankAccountDTO) (*BankAccountDTO, error) {
	if dto.Balance.IsNegative() {
		return nil, invalid("начальный баланс не может быть отрицательным")
	}

	var bank models.Bank
	if err := s.db.First(&bank, bankID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("банк", bankID)
		}
		return nil, err
	}

	// Генерируем номер счета, если он не задан
	number := dto.Number
	if number == "" {
		number = generateAccountNumber()
	}
	currency := strings.ToUpper(dto.Currency)
	if currency == "" {
		currency = s.currency
	}

	account := &models.BankAccount{
		BankID:   bank.ID,
		Number:   number,
		Holder:   dto.Holder,
		Balance:  dto.Balance,
		Currency: currency,
	}

	if err := s.db.Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("счет %s уже существует", number)
		}
		return nil, fmt.Errorf("не удалось создать счет: %w", err)
	}

	result := s.accountToDTO(*account)
	return &result, nil
}

// generateAccountNumber генерирует номер банковского счета из 20 цифр
func generateAccountNumber() string {
	var number strings.Builder
	for i := 0; i < 20; i++ {
		number.WriteString(strconv.Itoa(rand.IntN(10)))
	}
	return number.String()
}

// ApplyBalanceChange вычисляет новый баланс. Результат не может быть отрицательным.
func ApplyBalanceChange(current decimal.Decimal, req BalanceChangeRequest) (decimal.Decimal, error) {
	var next decimal.Decimal
	switch req.Mode {
	case BalanceSet:
		next = req.Amount
	case BalanceDelta:
		if req.Amount.IsZero() {
			return current, invalid("изменение баланса не может быть нулевым")
		}
		next = current.Add(req.Amount)
	default:
		return current, invalid("неизвестный режим %q", req.Mode)
	}
	if next.IsNegative() {
		return current, invalid("баланс не может стать отрицательным")
	}
	return next.Round(2), nil
}

// ChangeBalance меняет баланс счета и записывает историю в той же транзакции
func (s *BankService) ChangeBalance(ctx context.Context, accountID uint, req BalanceChangeRequest, actor Actor) (*BankAccountDTO, error) {
	// Начинаем транзакцию
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, errors.New("ошибка при начале транзакции")
	}

	// Блокируем счет до конца транзакции
	var account models.BankAccount
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, accountID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("банковский счет", accountID)
		}
		return nil, fmt.Errorf("ошибка при поиске банковского счета: %w", err)
	}

	next, err := ApplyBalanceChange(account.Balance, req)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	history := &models.BalanceHistory{
		AccountID:     account.ID,
		Delta:         next.Sub(account.Balance),
		BalanceBefore: account.Balance,
		BalanceAfter:  next,
		Comment:       req.Comment,
		ChangedBy:     actor.ID,
	}

	if err := tx.Model(&account).Update("balance", next).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("ошибка при обновлении баланса")
	}
	if err := tx.Create(history).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("ошибка при сохранении истории баланса")
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("ошибка при подтверждении транзакции")
	}
	account.Balance = next

	s.notifier.Publish(ctx, Event{
		Kind:  EventBalanceChanged,
		Title: "Изменен баланс счета " + account.Number,
		Body: fmt.Sprintf("%s → %s (%s)",
			presentation.FormatMoney(history.BalanceBefore, account.Currency),
			presentation.FormatMoney(history.BalanceAfter, account.Currency),
			req.Comment),
		Roles: []models.Role{models.RoleCFO},
	})

	dto := s.accountToDTO(account)
	return &dto, nil
}

// History возвращает историю баланса счета, новые записи первыми
func (s *BankService) History(accountID uint) ([]models.BalanceHistory, error) {
	if _, err := s.GetById(accountID); err != nil {
		return nil, err
	}
	var list []models.BalanceHistory
	if err := s.db.Where("account_id = ?", accountID).Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении истории: %w", err)
	}
	return list, nil
}

func (s *BankService) accountToDTO(a models.BankAccount) BankAccountDTO {
	usd := s.rates.USDOrRaw(a.Balance, a.Currency)
	return BankAccountDTO{
		ID:         a.ID,
		BankID:     a.BankID,
		Number:     a.Number,
		Holder:     a.Holder,
		Balance:    a.Balance,
		Currency:   a.Currency,
		BalanceUSD: usd,
		View:       presentation.ViewBalance(a.Balance, a.Currency, usd, s.threshold),
		CardCount:  len(a.Cards),
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
	}
}
