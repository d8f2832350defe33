package values

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary amount in the ad account's settlement currency.
// Amazon advertising reports carry a single currency per profile, so no
// currency code travels with the amount.
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates a new Money value object
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewMoneyFromFloat creates Money from a float64 amount
// Note: Use with caution due to floating point precision issues
func NewMoneyFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount)}
}

// NewMoneyFromString creates Money from a string amount
func NewMoneyFromString(amount string) (Money, error) {
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount: %w", err)
	}
	return Money{amount: dec}, nil
}

// MustNewMoneyFromString creates Money and panics on error (for constants/tests)
func MustNewMoneyFromString(amount string) Money {
	m, err := NewMoneyFromString(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns a zero Money value
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// String returns the amount formatted to two decimal places
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// IsZero checks if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive checks if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative checks if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Equal checks if two Money values are equal
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Compare returns -1, 0, or 1 based on comparison with other Money
func (m Money) Compare(other Money) int {
	return m.amount.Cmp(other.amount)
}

// Add adds two Money values
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub subtracts other Money from this Money
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// MulFloat multiplies Money by a float64 factor
func (m Money) MulFloat(factor float64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromFloat(factor))}
}

// RatioTo divides this amount by another Money amount, returning an absent
// Ratio when the divisor is not positive
func (m Money) RatioTo(other Money) Ratio {
	if !other.IsPositive() {
		return AbsentRatio()
	}
	f, _ := m.amount.Div(other.amount).Float64()
	return PresentRatio(f)
}

// PerUnit divides this amount by an integer count (e.g. cost per click),
// returning an absent Ratio when the count is not positive
func (m Money) PerUnit(count int64) Ratio {
	if count <= 0 {
		return AbsentRatio()
	}
	f, _ := m.amount.Div(decimal.NewFromInt(count)).Float64()
	return PresentRatio(f)
}

// ToFloat64 converts to float64 (use with caution for precision)
func (m Money) ToFloat64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// MarshalJSON implements json.Marshaler, encoding the amount as a string to
// preserve precision
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.amount.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount
	return nil
}
