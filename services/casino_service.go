package services

import (
	"backoffice/models"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CasinoRequest данные для создания и обновления казино
type CasinoRequest struct {
	Name                string              `json:"name" validate:"required,min=2,max=100"`
	URL                 string              `json:"url" validate:"omitempty,url"`
	Status              models.CasinoStatus `json:"status" validate:"omitempty,oneof=new testing approved blocked"`
	AllowedBins         []string            `json:"allowed_bins" validate:"max=200"`
	Currency            string              `json:"currency" validate:"omitempty,len=3,alpha"`
	AutoApproveLimit    decimal.Decimal     `json:"auto_approve_limit"`
	WithdrawalTimeValue int                 `json:"withdrawal_time_value" validate:"gte=0,lte=10000"`
	WithdrawalTimeUnit  models.TimeUnit     `json:"withdrawal_time_unit" validate:"omitempty,oneof=minutes hours days"`
}

// CasinoService предоставляет методы для работы с казино
type CasinoService struct {
	db       *gorm.DB
	currency string
}

// NewCasinoService создает новый экземпляр CasinoService
func NewCasinoService(db *gorm.DB, defaultCurrency string) *CasinoService {
	return &CasinoService{db: db, currency: defaultCurrency}
}

// NormalizeBins проверяет, что каждый BIN состоит из 6 цифр, и убирает повторы, сохраняя порядок
func NormalizeBins(bins []string) ([]string, error) {
	out := make([]string, 0, len(bins))
	seen := make(map[string]bool, len(bins))
	for _, raw := range bins {
		bin := strings.TrimSpace(raw)
		if len(bin) != 6 {
			return nil, invalid("BIN %q должен содержать 6 цифр", raw)
		}
		for _, r := range bin {
			if r < '0' || r > '9' {
				return nil, invalid("BIN %q должен содержать только цифры", raw)
			}
		}
		if seen[bin] {
			continue
		}
		seen[bin] = true
		out = append(out, bin)
	}
	return out, nil
}

// List возвращает все казино
func (s *CasinoService) List(status models.CasinoStatus) ([]models.Casino, error) {
	query := s.db.Order("name")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var list []models.Casino
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении казино: %w", err)
	}
	return list, nil
}

// Get возвращает казино по ID
func (s *CasinoService) Get(id uint) (*models.Casino, error) {
	var casino models.Casino
	if err := s.db.First(&casino, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("казино", id)
		}
		return nil, err
	}
	return &casino, nil
}

// Create создает казино
func (s *CasinoService) Create(req CasinoRequest) (*models.Casino, error) {
	casino := &models.Casino{}
	if err := s.apply(casino, req); err != nil {
		return nil, err
	}
	if err := s.db.Create(casino).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("казино %s уже существует", casino.Name)
		}
		return nil, fmt.Errorf("не удалось создать казино: %w", err)
	}
	return casino, nil
}

// Update обновляет казино целиком
func (s *CasinoService) Update(id uint, req CasinoRequest) (*models.Casino, error) {
	casino, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(casino, req); err != nil {
		return nil, err
	}
	if err := s.db.Save(casino).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict("казино %s уже существует", casino.Name)
		}
		return nil, fmt.Errorf("не удалось обновить казино: %w", err)
	}
	return casino, nil
}

func (s *CasinoService) apply(casino *models.Casino, req CasinoRequest) error {
	bins, err := NormalizeBins(req.AllowedBins)
	if err != nil {
		return err
	}
	if req.AutoApproveLimit.IsNegative() {
		return invalid("лимит автоодобрения не может быть отрицательным")
	}

	casino.Name = strings.TrimSpace(req.Name)
	casino.URL = req.URL
	casino.AllowedBins = pq.StringArray(bins)
	casino.AutoApproveLimit = req.AutoApproveLimit
	casino.WithdrawalTimeValue = req.WithdrawalTimeValue

	// Пустые поля не затирают текущие значения
	if req.Status != "" {
		casino.Status = req.Status
	} else if casino.Status == "" {
		casino.Status = models.CasinoStatusNew
	}
	if req.Currency != "" {
		casino.Currency = strings.ToUpper(req.Currency)
	} else if casino.Currency == "" {
		casino.Currency = s.currency
	}
	if req.WithdrawalTimeUnit != "" {
		casino.WithdrawalTimeUnit = req.WithdrawalTimeUnit
	} else if casino.WithdrawalTimeUnit == "" {
		casino.WithdrawalTimeUnit = models.UnitHours
	}
	return nil
}
