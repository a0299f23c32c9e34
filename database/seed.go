package database

import (
	"backoffice/models"
	"backoffice/services"
	"backoffice/utils"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed/seed.yaml
var seedYAML []byte

// Catalog справочные данные для начального заполнения базы
type Catalog struct {
	Admin   SeedUser     `yaml:"admin"`
	Banks   []SeedBank   `yaml:"banks"`
	Casinos []SeedCasino `yaml:"casinos"`
}

type SeedUser struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
}

type SeedBank struct {
	Name    string `yaml:"name"`
	Country string `yaml:"country"`
}

type SeedCasino struct {
	Name             string   `yaml:"name"`
	URL              string   `yaml:"url"`
	Status           string   `yaml:"status"`
	AllowedBins      []string `yaml:"allowed_bins"`
	Currency         string   `yaml:"currency"`
	AutoApproveLimit string   `yaml:"auto_approve_limit"`
	WithdrawalTime   struct {
		Value int    `yaml:"value"`
		Unit  string `yaml:"unit"`
	} `yaml:"withdrawal_time"`
}

// ParseCatalog разбирает справочник; неизвестные поля считаются ошибкой
func ParseCatalog(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var catalog Catalog
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("ошибка разбора справочника: %w", err)
	}
	if catalog.Admin.Email == "" {
		return nil, errors.New("в справочнике не указан администратор")
	}
	for i, c := range catalog.Casinos {
		bins, err := services.NormalizeBins(c.AllowedBins)
		if err != nil {
			return nil, fmt.Errorf("казино %s: %w", c.Name, err)
		}
		catalog.Casinos[i].AllowedBins = bins
		if c.AutoApproveLimit == "" {
			catalog.Casinos[i].AutoApproveLimit = "0"
		}
		if _, err := decimal.NewFromString(catalog.Casinos[i].AutoApproveLimit); err != nil {
			return nil, fmt.Errorf("казино %s: неверный лимит: %w", c.Name, err)
		}
	}
	return &catalog, nil
}

// DefaultCatalog возвращает встроенный справочник
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(seedYAML)
}

// Seed применяет справочник в одной транзакции. Существующие записи не изменяются.
// adminPassword, если не пуст, заменяет пароль из справочника.
func Seed(db *gorm.DB, catalog *Catalog, adminPassword string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := seedAdmin(tx, catalog.Admin, adminPassword); err != nil {
		tx.Rollback()
		return err
	}
	if err := seedBanks(tx, catalog.Banks); err != nil {
		tx.Rollback()
		return err
	}
	if err := seedCasinos(tx, catalog.Casinos); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("ошибка при подтверждении транзакции: %w", err)
	}
	return nil
}

// seedAdmin создает администратора, только если в системе нет ни одного
func seedAdmin(tx *gorm.DB, admin SeedUser, override string) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := admin.Password
	if override != "" {
		password = override
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &models.User{
		FirstName: admin.FirstName,
		LastName:  admin.LastName,
		Email:     strings.ToLower(admin.Email),
		Password:  string(hash),
		Role:      models.RoleAdmin,
		Active:    true,
	}
	if err := tx.Create(user).Error; err != nil {
		return fmt.Errorf("не удалось создать администратора: %w", err)
	}
	utils.LogInfo("Создан администратор %s", user.Email)
	return nil
}

func seedBanks(tx *gorm.DB, banks []SeedBank) error {
	for _, b := range banks {
		bank := models.Bank{Name: b.Name, Country: strings.ToUpper(b.Country)}
		if err := tx.Where(models.Bank{Name: b.Name}).FirstOrCreate(&bank).Error; err != nil {
			return fmt.Errorf("не удалось создать банк %s: %w", b.Name, err)
		}
	}
	return nil
}

func seedCasinos(tx *gorm.DB, casinos []SeedCasino) error {
	for _, c := range casinos {
		casino := models.Casino{
			Name:                c.Name,
			URL:                 c.URL,
			Status:              models.CasinoStatus(c.Status),
			AllowedBins:         pq.StringArray(c.AllowedBins),
			Currency:            strings.ToUpper(c.Currency),
			AutoApproveLimit:    decimal.RequireFromString(c.AutoApproveLimit),
			WithdrawalTimeValue: c.WithdrawalTime.Value,
			WithdrawalTimeUnit:  models.TimeUnit(c.WithdrawalTime.Unit),
		}
		if casino.Status == "" {
			casino.Status = models.CasinoStatusNew
		}
		if casino.WithdrawalTimeUnit == "" {
			casino.WithdrawalTimeUnit = models.UnitHours
		}
		if err := tx.Where(models.Casino{Name: c.Name}).FirstOrCreate(&casino).Error; err != nil {
			return fmt.Errorf("не удалось создать казино %s: %w", c.Name, err)
		}
	}
	return nil
}
