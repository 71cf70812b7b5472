package domain

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits every amount carries.
const MoneyScale = 2

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// Money is a fixed-point amount stored as an integer number of minor units (cents).
// The zero value is 0.00.
type Money struct {
	cents int64
}

// ZeroMoney is 0.00.
var ZeroMoney = Money{}

// MoneyFromCents builds an amount from minor units.
func MoneyFromCents(cents int64) Money {
	return Money{cents: cents}
}

// NewMoney converts a decimal to Money. It fails with ErrValidation when the
// value carries more than two significant fractional digits or does not fit.
func NewMoney(d decimal.Decimal) (Money, error) {
	if !d.Round(MoneyScale).Equal(d) {
		return Money{}, fmt.Errorf("%w: amount %s must have at most %d decimal places", apperrors.ErrValidation, d.String(), MoneyScale)
	}
	shifted := d.Shift(MoneyScale)
	if shifted.GreaterThan(maxCents) || shifted.LessThan(minCents) {
		return Money{}, fmt.Errorf("%w: amount %s is out of range", apperrors.ErrValidation, d.String())
	}
	return Money{cents: shifted.IntPart()}, nil
}

// ParseMoney parses a decimal string such as "100.00" or "-12.5".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: invalid amount %q", apperrors.ErrValidation, s)
	}
	return NewMoney(d)
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 { return m.cents }

// Decimal returns the amount as a decimal with two fractional digits.
func (m Money) Decimal() decimal.Decimal { return decimal.New(m.cents, -MoneyScale) }

// Add and Sub wrap on overflow. Use CheckedAdd and CheckedSub when the
// operands come from input.
func (m Money) Add(o Money) Money { return Money{cents: m.cents + o.cents} }
func (m Money) Sub(o Money) Money { return Money{cents: m.cents - o.cents} }
func (m Money) Neg() Money        { return Money{cents: -m.cents} }

// CheckedAdd returns m+o, or ErrValidation when the sum does not fit in int64 cents.
func (m Money) CheckedAdd(o Money) (Money, error) {
	sum := m.cents + o.cents
	if (o.cents > 0 && sum < m.cents) || (o.cents < 0 && sum > m.cents) {
		return Money{}, fmt.Errorf("%w: %s + %s is out of range", apperrors.ErrValidation, m, o)
	}
	return Money{cents: sum}, nil
}

// CheckedSub returns m-o, or ErrValidation when the difference does not fit.
func (m Money) CheckedSub(o Money) (Money, error) {
	diff := m.cents - o.cents
	if (o.cents > 0 && diff > m.cents) || (o.cents < 0 && diff < m.cents) {
		return Money{}, fmt.Errorf("%w: %s - %s is out of range", apperrors.ErrValidation, m, o)
	}
	return Money{cents: diff}, nil
}

// Cmp returns -1, 0 or +1.
func (m Money) Cmp(o Money) int {
	switch {
	case m.cents < o.cents:
		return -1
	case m.cents > o.cents:
		return 1
	default:
		return 0
	}
}

func (m Money) Equal(o Money) bool { return m.cents == o.cents }
func (m Money) IsZero() bool       { return m.cents == 0 }
func (m Money) IsPositive() bool   { return m.cents > 0 }
func (m Money) IsNegative() bool   { return m.cents < 0 }

// String formats the amount with exactly two fractional digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(MoneyScale)
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both quoted strings and bare numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: invalid amount %s", apperrors.ErrValidation, string(data))
	}
	parsed, err := NewMoney(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
