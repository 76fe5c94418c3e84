/*
money.go - Culture-neutral monetary value type

PURPOSE:
  Money pairs an arbitrary-precision decimal amount with an ISO-4217
  currency code. It carries no rounding policy and no formatting opinion -
  both are the concern of a store's currency formatter, never this type.

KEY CONCEPTS:
  Amount:    shopspring/decimal, so every add/sub/mul is exact.
  Currency:  a plain string tag, compared case-sensitively as stored.

ARITHMETIC:
  Add and Sub check currency equality first; Mul (which scales by a
  unitless decimal) and Neg take no second currency. Mismatched currencies
  in Add/Sub return an error rather than silently picking one side.

SEE ALSO:
  - kernel/types.go: uses Money for unitPrice/extended/total/etc.
*/
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an immutable (amount, currency) pair.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// Zero returns a zero-valued Money in the given currency.
func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// New builds a Money from a decimal amount and currency code.
func New(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// NewFromFloat builds a Money from a float64, for literal test fixtures
// and CLI parameter coercion. Production pricing paths should prefer
// decimal.Decimal constructed from strings to avoid binary-float noise.
func NewFromFloat(amount float64, currency string) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}

func (m Money) sameCurrency(other Money) error {
	if m.Currency != other.Currency {
		return fmt.Errorf("money: currency mismatch %q vs %q", m.Currency, other.Currency)
	}
	return nil
}

// Add returns m+other. Fails when currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m-other. Fails when currencies differ.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Mul scales m by a unitless factor (e.g. a quantity).
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor), Currency: m.Currency}
}

// Neg returns the additive inverse, same currency.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// GreaterThanOrEqual compares amounts; panics-free, assumes same currency
// has already been established by the caller (arithmetic already enforces
// it upstream of every comparison in this codebase).
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.Amount.GreaterThanOrEqual(other.Amount)
}

// Equal compares both amount and currency.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}
