package presentation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

var ten = decimal.NewFromInt(10)

func TestBalanceTier(t *testing.T) {
	cases := []struct {
		amount string
		want   Tier
	}{
		{"5", TierHidden},
		{"9.99", TierHidden},
		{"10", TierAvailable},
		{"10.01", TierAvailable},
		{"-3", TierHidden},
	}
	for _, c := range cases {
		if got := BalanceTier(decimal.RequireFromString(c.amount), ten); got != c.want {
			t.Errorf("BalanceTier(%s) = %s, want %s", c.amount, got, c.want)
		}
	}
}

func TestViewBalance(t *testing.T) {
	v := ViewBalance(decimal.RequireFromString("5"), "USD", decimal.RequireFromString("5"), ten)
	if v.Tier != TierHidden || v.Color != "red" {
		t.Errorf("five dollars must be red/hidden, got %+v", v)
	}
	v = ViewBalance(decimal.RequireFromString("1234.5"), "USD", decimal.RequireFromString("1234.5"), ten)
	if v.Color != "green" || !strings.Contains(v.Formatted, "$") {
		t.Errorf("unexpected view %+v", v)
	}
}

func TestFormatMoneyUnknownCurrency(t *testing.T) {
	if got := FormatMoney(decimal.RequireFromString("3.456"), "xx"); got != "3.46 XX" {
		t.Errorf("got %q", got)
	}
}

func TestWithdrawalStatusStyles(t *testing.T) {
	for _, s := range WithdrawalStatuses() {
		style, ok := WithdrawalStatusStyle(s)
		if !ok || style.Color == "" || style.Icon == "" {
			t.Errorf("status %s has no style", s)
		}
	}
	if ValidWithdrawalStatus("approved") {
		t.Error("approved is not a withdrawal status")
	}
}

func TestSensitiveFieldDoubleToggle(t *testing.T) {
	f := NewSensitiveField("john.doe@paypal.com", MaskEmail)
	masked := f.String()
	if masked != "j***@paypal.com" {
		t.Fatalf("unexpected mask %q", masked)
	}

	f.Toggle()
	if f.String() != "john.doe@paypal.com" || !f.Revealed() {
		t.Errorf("first toggle must reveal, got %q", f.String())
	}
	f.Toggle()
	if f.String() != masked {
		t.Errorf("second toggle must restore mask, got %q", f.String())
	}
}

func TestMaskPAN(t *testing.T) {
	if got := MaskPAN("4111111111111111"); got != "411111******1111" {
		t.Errorf("got %q", got)
	}
	if got := MaskPAN("123"); got != "***" {
		t.Errorf("got %q", got)
	}
}
