// Package money provides currency-safe amounts using integer minor units,
// wrapping go-money for arithmetic and shopspring/decimal for exact
// conversions between statement decimals and stored values.
package money

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// RUB is the base currency all multi-currency spreadsheet rows normalize to
// when a converted-amount column is available.
const RUB = "RUB"

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units (kopecks, cents) and a currency
// code. Unknown codes fall back to a two-decimal currency.
func New(amountMinor int64, currencyCode string) *Money {
	return &Money{m: money.New(amountMinor, currencyCode)}
}

// NewFromDecimal converts an exact decimal major-unit amount to Money.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	fraction := 2
	if c := money.GetCurrency(currencyCode); c != nil {
		fraction = c.Fraction
	}
	minor := amount.Mul(decimal.New(1, int32(fraction))).Round(0).IntPart()
	return New(minor, currencyCode)
}

// Minor returns the amount in minor units.
func (m *Money) Minor() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the currency code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Decimal returns the exact major-unit amount.
func (m *Money) Decimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	return decimal.New(m.m.Amount(), -int32(m.m.Currency().Fraction))
}

// Format renders the amount as "1234.56 RUB" for report text.
func (m *Money) Format() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(2), m.Currency())
}
