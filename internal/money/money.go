// Package money holds currency amounts as integer minor units.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units (1/100).
type Cents int64

// FromDecimal rounds d half-up to two decimals.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Round(2).Shift(2).IntPart())
}

// Parse reads a NUMERIC rendered as text ("19.90"). Empty means zero.
func Parse(s string) (Cents, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

func (c Cents) Decimal() decimal.Decimal { return decimal.New(int64(c), -2) }

// String renders the amount with exactly two decimals.
func (c Cents) String() string { return c.Decimal().StringFixed(2) }

// Mul scales by an integer quantity.
func (c Cents) Mul(qty int) Cents { return c * Cents(qty) }

// DivRound divides by n rounding half away from zero. n <= 0 yields 0.
func (c Cents) DivRound(n int) Cents {
	if n <= 0 {
		return 0
	}
	return FromDecimal(c.Decimal().Div(decimal.NewFromInt(int64(n))))
}

// MarshalJSON writes a JSON number such as 60.00.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Cents) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*c = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
