package domain

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"

	dErrors "kycore/pkg/domain-errors"
)

const moneyScale = 2

var hundred = decimal.NewFromInt(100)

// Money is a non-negative amount with at most two decimal places.
type Money struct {
	d decimal.Decimal
}

// NewMoney validates d.
//
// Errors: returns CodeArgumentInvalid for negative amounts and amounts with more
// than two decimal places.
func NewMoney(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, dErrors.New(dErrors.CodeArgumentInvalid, "money amount cannot be less than 0")
	}
	if !d.Equal(d.Truncate(moneyScale)) {
		return Money{}, dErrors.Newf(dErrors.CodeArgumentInvalid, "money amount must have at most %d decimal places: %s", moneyScale, d.String())
	}
	return Money{d: d}, nil
}

// ParseMoney reads a decimal string such as "10.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "invalid money amount")
	}
	return NewMoney(d)
}

// MoneyFromCents converts an amount in cents: 1050 becomes 10.50.
func MoneyFromCents(cents int64) (Money, error) {
	return NewMoney(decimal.New(cents, -moneyScale))
}

// ZeroMoney returns 0.00.
func ZeroMoney() Money {
	return Money{d: decimal.Zero}
}

func (m Money) Decimal() decimal.Decimal { return m.d }
func (m Money) IsZero() bool             { return m.d.IsZero() }

// ToCents returns the amount in cents, rounded down.
func (m Money) ToCents() int64 {
	return m.d.Mul(hundred).Floor().IntPart()
}

func (m Money) Add(other Money) Money {
	return Money{d: m.d.Add(other.d)}
}

// Subtract fails with CodeArgumentInvalid when the result would be negative.
func (m Money) Subtract(other Money) (Money, error) {
	return NewMoney(m.d.Sub(other.d))
}

// Percent returns p percent of m, rounded up to the next cent.
func (m Money) Percent(p Percent) Money {
	cents := m.d.Mul(hundred).Mul(p.Multiplier()).Ceil()
	return Money{d: cents.Div(hundred).Round(moneyScale)}
}

func (m Money) Equal(other Money) bool {
	return m.d.Equal(other.d)
}

// String renders the amount with exactly two decimals.
func (m Money) String() string {
	return m.d.StringFixed(moneyScale)
}

func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// Percent is a non-negative percentage; 15 means fifteen percent.
type Percent struct {
	d decimal.Decimal
}

// NewPercent errors with CodeArgumentInvalid for negative values.
func NewPercent(d decimal.Decimal) (Percent, error) {
	if d.IsNegative() {
		return Percent{}, dErrors.New(dErrors.CodeArgumentInvalid, "percent amount cannot be less than 0")
	}
	return Percent{d: d}, nil
}

// ParsePercent reads a decimal string such as "12.5".
func ParsePercent(s string) (Percent, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percent{}, dErrors.Wrap(err, dErrors.CodeArgumentInvalid, "invalid percent")
	}
	return NewPercent(d)
}

func (p Percent) Decimal() decimal.Decimal { return p.d }
func (p Percent) IsZero() bool             { return p.d.IsZero() }

// Multiplier returns the factor to apply, with the percentage rounded up to two
// decimals first: 12.345 gives 0.1235.
func (p Percent) Multiplier() decimal.Decimal {
	return p.d.Mul(hundred).Ceil().Div(decimal.NewFromInt(10000))
}

func (p Percent) Add(other Percent) Percent {
	return Percent{d: p.d.Add(other.d)}
}

// Subtract fails with CodeArgumentInvalid when the result would be negative.
func (p Percent) Subtract(other Percent) (Percent, error) {
	return NewPercent(p.d.Sub(other.d))
}

func (p Percent) Equal(other Percent) bool {
	return p.d.Equal(other.d)
}

func (p Percent) String() string {
	return p.d.StringFixed(2)
}

func (p Percent) Value() (driver.Value, error) {
	return p.d.String(), nil
}
