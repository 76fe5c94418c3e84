/*
formatter.go - DefaultFormatter, the fallback storeext.CurrencyFormatter

PURPOSE:
  Locale-specific currency formatting is an explicit Non-goal of the
  kernel (spec.md §1: "delegated"). This default implementation exists
  only so cmd/posd has something to wire when a store profile's database
  configuration doesn't supply a richer extension - it is intentionally
  minimal, not a locale engine.
*/
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "$",
}

var decimalPlaces = map[string]int{
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"JPY": 0,
	"CAD": 2,
}

// DefaultFormatter is a minimal built-in formatter covering a handful of
// common ISO-4217 codes. It ignores culture entirely, on the theory that
// a store wanting real locale behavior supplies its own formatter.
type DefaultFormatter struct{}

func (DefaultFormatter) FormatCurrency(amount decimal.Decimal, currency, culture string) (string, error) {
	places, err := DefaultFormatter{}.GetDecimalPlaces(currency)
	if err != nil {
		return "", err
	}
	symbol, err := DefaultFormatter{}.GetCurrencySymbol(currency)
	if err != nil {
		return "", err
	}
	return symbol + amount.StringFixed(int32(places)), nil
}

func (DefaultFormatter) GetCurrencySymbol(currency string) (string, error) {
	symbol, ok := symbols[strings.ToUpper(currency)]
	if !ok {
		return "", fmt.Errorf("currency: unknown currency %q", currency)
	}
	return symbol, nil
}

func (DefaultFormatter) GetDecimalPlaces(currency string) (int, error) {
	places, ok := decimalPlaces[strings.ToUpper(currency)]
	if !ok {
		return 0, fmt.Errorf("currency: unknown currency %q", currency)
	}
	return places, nil
}
