package services

import (
	"backoffice/utils"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// Курсы публикуются в рублях за единицу валюты
const baseCurrency = "RUB"

// RateService хранит курсы валют из ежедневной XML-выгрузки центробанка и пересчитывает суммы в USD
type RateService struct {
	url    string
	client *http.Client

	mu        sync.RWMutex
	rates     map[string]decimal.Decimal // рублей за 1 единицу
	updatedAt time.Time
}

// NewRateService создает новый экземпляр RateService
func NewRateService(url string, client *http.Client) *RateService {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RateService{
		url:    url,
		client: client,
		rates:  map[string]decimal.Decimal{baseCurrency: decimal.NewFromInt(1)},
	}
}

// ParseDailyRates разбирает документ ValCurs/Valute и возвращает рубли за единицу каждой валюты
func ParseDailyRates(r io.Reader) (map[string]decimal.Decimal, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		switch strings.ToLower(label) {
		case "windows-1251", "cp1251":
			return charmap.Windows1251.NewDecoder().Reader(input), nil
		default:
			return input, nil
		}
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("не удалось разобрать XML курсов: %w", err)
	}

	root := doc.SelectElement("ValCurs")
	if root == nil {
		return nil, errors.New("в документе нет элемента ValCurs")
	}

	rates := map[string]decimal.Decimal{baseCurrency: decimal.NewFromInt(1)}
	for _, el := range root.SelectElements("Valute") {
		code := strings.ToUpper(strings.TrimSpace(childText(el, "CharCode")))
		if code == "" {
			continue
		}
		value, err := parseRuDecimal(childText(el, "Value"))
		if err != nil {
			return nil, fmt.Errorf("неверный курс %s: %w", code, err)
		}
		nominal := decimal.NewFromInt(1)
		if raw := childText(el, "Nominal"); raw != "" {
			if nominal, err = parseRuDecimal(raw); err != nil || !nominal.IsPositive() {
				return nil, fmt.Errorf("неверный номинал %s: %q", code, raw)
			}
		}
		rates[code] = value.Div(nominal)
	}
	if _, ok := rates["USD"]; !ok {
		return nil, errors.New("в выгрузке нет курса USD")
	}
	return rates, nil
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

// parseRuDecimal разбирает число с запятой в качестве разделителя
func parseRuDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}

// Refresh загружает свежие курсы
func (s *RateService) Refresh(ctx context.Context) error {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		utils.LogOperation("rates.refresh", start, err)
		return fmt.Errorf("не удалось загрузить курсы: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("сервер курсов вернул статус %d", resp.StatusCode)
		utils.LogOperation("rates.refresh", start, err)
		return err
	}

	rates, err := ParseDailyRates(resp.Body)
	utils.LogOperation("rates.refresh", start, err)
	if err != nil {
		return err
	}
	s.SetRates(rates)
	return nil
}

// SetRates заменяет таблицу курсов
func (s *RateService) SetRates(rates map[string]decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = make(map[string]decimal.Decimal, len(rates))
	for k, v := range rates {
		s.rates[strings.ToUpper(k)] = v
	}
	s.updatedAt = time.Now()
}

// UpdatedAt возвращает время последнего обновления курсов
func (s *RateService) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// ToUSD пересчитывает сумму в USD. Для USD сумма возвращается без изменений.
func (s *RateService) ToUSD(amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	cur := strings.ToUpper(currency)
	if cur == "USD" || cur == "" {
		return amount, nil
	}

	s.mu.RLock()
	from, okFrom := s.rates[cur]
	usd, okUSD := s.rates["USD"]
	s.mu.RUnlock()

	if !okFrom {
		return amount, fmt.Errorf("нет курса для валюты %s", cur)
	}
	if !okUSD || usd.IsZero() {
		return amount, errors.New("курс USD еще не загружен")
	}
	return amount.Mul(from).Div(usd).Round(2), nil
}

// USDOrRaw пересчитывает сумму в USD, а при ошибке логирует ее и возвращает исходную сумму
func (s *RateService) USDOrRaw(amount decimal.Decimal, currency string) decimal.Decimal {
	usd, err := s.ToUSD(amount, currency)
	if err != nil {
		utils.LogError("пересчет в USD: %v", err)
		return amount
	}
	return usd
}
