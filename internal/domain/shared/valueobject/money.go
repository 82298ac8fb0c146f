package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxScale is the number of decimal places every stored amount keeps.
// Money columns are DECIMAL(18,4).
const MaxScale = 4

// Money is an immutable fixed-point monetary amount in the ledger's single
// currency. All operations return new Money instances.
type Money struct {
	amount decimal.Decimal
}

// NewMoney wraps a decimal amount
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewMoneyFromInt creates Money from an int64 value
func NewMoneyFromInt(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount)}
}

// NewMoneyFromString parses a decimal string such as "1250.75"
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d}, nil
}

// Zero returns a zero amount
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// FitsScale reports whether the amount has no significant digits beyond MaxScale
// decimal places, so storing it loses nothing
func (m Money) FitsScale() bool {
	return FitsScale(m.amount)
}

// FitsScale is the decimal form of Money.FitsScale
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MaxScale))
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns m - other. The result may be negative.
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Neg returns the negated amount
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg()}
}

// Compare returns -1, 0 or 1
func (m Money) Compare(other Money) int {
	return m.amount.Cmp(other.amount)
}

func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// MinMoney returns the smaller of a and b
func MinMoney(a, b Money) Money {
	return Money{amount: decimal.Min(a.amount, b.amount)}
}

// String returns the canonical decimal representation
func (m Money) String() string {
	return m.amount.String()
}

// StringFixed returns the amount with a fixed number of decimal places
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}

// MarshalJSON encodes the amount as a decimal string to avoid float rounding on the wire
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.amount.String())
}

// UnmarshalJSON accepts both "12.50" and 12.50
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		m.amount = d
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = d
	return nil
}

// Value implements driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return m.amount.Value()
}

// Scan implements sql.Scanner
func (m *Money) Scan(value any) error {
	return m.amount.Scan(value)
}
