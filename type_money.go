package cryptotax

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value in a currency (usually the tax currency).
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M creates a Money value. The currency code is upper cased.
func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: strings.ToUpper(currency)}
}

// ParseMoney parses a decimal string into a Money. An empty string is zero.
func ParseMoney(s, currency string) (Money, error) {
	q, err := ParseQuantity(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount: %w", err)
	}
	return M(q.value, currency), nil
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value, using the
// currency formatting rules (grapheme, thousand separator, fraction digits).
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string                { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(amount Money) bool      { return m.value.LessThan(amount.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) Cmp(n Money) int                 { return m.value.Cmp(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Mul(n Quantity) Money            { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) Div(n Quantity) Money            { return Money{value: m.value.Div(n.value), cur: m.cur} }
func (m Money) In(currency string) Money        { return M(m.value, currency) }
func (m Money) Round(places int32) Money        { return Money{value: m.value.Round(places), cur: m.cur} }
func (m Money) StringFixed(places int32) string { return m.value.StringFixed(places) }

// Fraction returns the number of minor unit digits of the currency (2 for USD).
func (m Money) Fraction() int32 { return int32(m.currency().Fraction) }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch " + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// MarshalJSON writes the exact amount; the currency is carried by the report.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.value.MarshalJSON()
}

// ValidateCurrency checks that code is a known ISO-4217 currency.
func ValidateCurrency(code string) error {
	if code == "" {
		return fmt.Errorf("currency is missing")
	}
	if money.GetCurrency(strings.ToUpper(code)) == nil {
		return fmt.Errorf("unknown currency %q", code)
	}
	return nil
}
