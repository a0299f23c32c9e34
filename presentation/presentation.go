// Package presentation содержит правила отображения, общие для всех ролей:
// пороги баланса, оформление статусов выводов, маскирование данных.
package presentation

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Tier уровень отображения баланса
type Tier string

const (
	TierAvailable Tier = "available"
	TierHidden    Tier = "hidden"
)

// BalanceView отображение баланса счета
type BalanceView struct {
	Tier      Tier   `json:"tier"`
	Color     string `json:"color"`
	Formatted string `json:"formatted"`
}

// BalanceTier относит баланс (в USD) к уровню отображения.
// Баланс, равный порогу, считается доступным.
func BalanceTier(amountUSD, threshold decimal.Decimal) Tier {
	if amountUSD.GreaterThanOrEqual(threshold) {
		return TierAvailable
	}
	return TierHidden
}

// VisibleToJunior сообщает, видна ли карта с таким балансом сотруднику Junior
func VisibleToJunior(amountUSD, threshold decimal.Decimal) bool {
	return BalanceTier(amountUSD, threshold) == TierAvailable
}

// ViewBalance собирает отображение баланса
func ViewBalance(amount decimal.Decimal, cur string, amountUSD, threshold decimal.Decimal) BalanceView {
	tier := BalanceTier(amountUSD, threshold)
	color := "green"
	if tier == TierHidden {
		color = "red"
	}
	return BalanceView{Tier: tier, Color: color, Formatted: FormatMoney(amount, cur)}
}

var printer = message.NewPrinter(language.English)

// FormatMoney форматирует сумму с символом валюты, например "$1,234.50"
func FormatMoney(amount decimal.Decimal, cur string) string {
	unit, err := currency.ParseISO(strings.ToUpper(cur))
	if err != nil {
		return amount.StringFixed(2) + " " + strings.ToUpper(cur)
	}
	f, _ := amount.Round(2).Float64()
	return printer.Sprint(currency.Symbol(unit.Amount(f)))
}

// StatusStyle оформление статуса вывода
type StatusStyle struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var withdrawalStyles = map[string]StatusStyle{
	"new":      {Label: "Новый", Color: "blue", Icon: "clock"},
	"waiting":  {Label: "Ожидание", Color: "yellow", Icon: "hourglass"},
	"received": {Label: "Получен", Color: "green", Icon: "check-circle"},
	"blocked":  {Label: "Заблокирован", Color: "red", Icon: "x-circle"},
}

// WithdrawalStatuses возвращает все статусы вывода в фиксированном порядке
func WithdrawalStatuses() []string {
	return []string{"new", "waiting", "received", "blocked"}
}

// ValidWithdrawalStatus проверяет, что статус входит в перечисление
func ValidWithdrawalStatus(status string) bool {
	_, ok := withdrawalStyles[status]
	return ok
}

// WithdrawalStatusStyle возвращает оформление статуса вывода
func WithdrawalStatusStyle(status string) (StatusStyle, bool) {
	style, ok := withdrawalStyles[status]
	return style, ok
}
