package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port         int
		OpsPort      int
		ReadTimeout  time.Duration
		WriteTimeout time.Duration

		// Адреса прокси, чьему X-Real-IP можно верить
		TrustedProxies []string
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
		MaxIdle  int
		MaxOpen  int
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // в часах
	}
	SMTP struct {
		Enabled  bool
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Log struct {
		Level  string
		Format string // text|json
		Dir    string // пусто - только stdout
	}
	RateLimit struct {
		Requests int
		Window   time.Duration
	}
	Business struct {
		MinVisibleBalance decimal.Decimal // порог видимости карт для Junior, в USD
		DefaultCurrency   string
	}
	Rates struct {
		URL         string
		RefreshSpec string // cron-выражение обновления курсов
	}
	Scheduler struct {
		OverdueSpec string // cron-выражение проверки просроченных выводов
	}
	Seed struct {
		Enabled       bool
		AdminPassword string // пароль администратора из справочника, если пуст - берется из seed.yaml
	}
	CardPrivateKey string // Приватный PGP ключ для расшифровки данных карт
	CardPublicKey  string // Публичный PGP ключ для шифрования данных карт
	CardHMACKey    string // Ключ для HMAC-подписи номеров карт
}

// NewConfig создает новый экземпляр конфигурации
func NewConfig() (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.ops_port", 8081)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "backoffice")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.max_open", 100)

	v.SetDefault("jwt.secret_key", "your-secret-key-here")
	v.SetDefault("jwt.expires_in", 24)

	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "backoffice@example.com")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.dir", "")

	v.SetDefault("ratelimit.requests", 300)
	v.SetDefault("ratelimit.window", "1m")

	v.SetDefault("business.min_visible_balance", "10")
	v.SetDefault("business.default_currency", "USD")

	v.SetDefault("rates.url", "https://www.cbr.ru/scripts/XML_daily.asp")
	v.SetDefault("rates.refresh_spec", "0 */6 * * *")
	v.SetDefault("scheduler.overdue_spec", "*/15 * * * *")
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.admin_password", "")

	v.SetDefault("card.private_key", "")
	v.SetDefault("card.public_key", "")
	v.SetDefault("card.hmac_key", "your-card-hmac-key-here")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	// Настройки сервера
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.OpsPort = v.GetInt("server.ops_port")
	cfg.Server.TrustedProxies = v.GetStringSlice("server.trusted_proxies")
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("неверный порт сервера: %d", cfg.Server.Port)
	}
	if cfg.Server.OpsPort < 0 || cfg.Server.OpsPort > 65535 {
		return nil, fmt.Errorf("неверный служебный порт: %d", cfg.Server.OpsPort)
	}
	var err error
	if cfg.Server.ReadTimeout, err = parseDuration(v, "server.read_timeout"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDuration(v, "server.write_timeout"); err != nil {
		return nil, err
	}

	// Настройки базы данных
	cfg.DB.Host = v.GetString("db.host")
	cfg.DB.Port = v.GetInt("db.port")
	cfg.DB.User = v.GetString("db.user")
	cfg.DB.Password = v.GetString("db.password")
	cfg.DB.DBName = v.GetString("db.name")
	cfg.DB.SSLMode = v.GetString("db.sslmode")
	cfg.DB.MaxIdle = v.GetInt("db.max_idle")
	cfg.DB.MaxOpen = v.GetInt("db.max_open")

	// Настройки JWT
	cfg.JWT.SecretKey = v.GetString("jwt.secret_key")
	cfg.JWT.ExpiresIn = v.GetInt("jwt.expires_in")
	if cfg.JWT.ExpiresIn <= 0 {
		return nil, fmt.Errorf("неверное время жизни JWT: %d", cfg.JWT.ExpiresIn)
	}

	// Настройки SMTP
	cfg.SMTP.Enabled = v.GetBool("smtp.enabled")
	cfg.SMTP.Host = v.GetString("smtp.host")
	cfg.SMTP.Port = v.GetInt("smtp.port")
	cfg.SMTP.Username = v.GetString("smtp.username")
	cfg.SMTP.Password = v.GetString("smtp.password")
	cfg.SMTP.From = v.GetString("smtp.from")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.Log.Dir = v.GetString("log.dir")

	cfg.RateLimit.Requests = v.GetInt("ratelimit.requests")
	if cfg.RateLimit.Window, err = parseDuration(v, "ratelimit.window"); err != nil {
		return nil, err
	}

	// Бизнес-пороги
	threshold, err := decimal.NewFromString(v.GetString("business.min_visible_balance"))
	if err != nil {
		return nil, fmt.Errorf("неверный формат порога баланса: %w", err)
	}
	cfg.Business.MinVisibleBalance = threshold
	cfg.Business.DefaultCurrency = strings.ToUpper(v.GetString("business.default_currency"))

	cfg.Rates.URL = v.GetString("rates.url")
	cfg.Rates.RefreshSpec = v.GetString("rates.refresh_spec")
	cfg.Scheduler.OverdueSpec = v.GetString("scheduler.overdue_spec")
	cfg.Seed.Enabled = v.GetBool("seed.enabled")
	cfg.Seed.AdminPassword = v.GetString("seed.admin_password")

	// Настройки карт
	cfg.CardPrivateKey = v.GetString("card.private_key")
	cfg.CardPublicKey = v.GetString("card.public_key")
	cfg.CardHMACKey = v.GetString("card.hmac_key")

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("неверный формат %s: %w", key, err)
	}
	return d, nil
}

// DSN возвращает строку подключения к PostgreSQL для gorm
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.DBName, c.DB.SSLMode)
}

// MigrateURL возвращает URL базы данных для golang-migrate
func (c *Config) MigrateURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.DBName, c.DB.SSLMode)
}
