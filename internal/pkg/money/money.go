// Package money holds the fixed-point helpers every payroll computation goes through.
// All amounts are decimal.Decimal with two fractional digits; nothing here touches float64.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for currency amounts.
const Scale = 2

var (
	Hundred = decimal.NewFromInt(100)
	Twelve  = decimal.NewFromInt(12)
)

// Round2 rounds half-up to two decimals. decimal.Round rounds half away from zero,
// which is half-up for the non-negative amounts payroll deals in.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Percent returns base * rate / 100 rounded to two decimals.
func Percent(base, rate decimal.Decimal) decimal.Decimal {
	if base.IsZero() || rate.IsZero() {
		return decimal.Zero
	}
	return Round2(base.Mul(rate).Div(Hundred))
}

// Sum adds the given amounts.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Parse reads a decimal string and rounds it to two decimals.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Round2(d), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Ptr returns nil for a nil pointer and the rounded value otherwise.
func Ptr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := Round2(*d)
	return &v
}

// ValueOr returns *d, or fallback when d is nil.
func ValueOr(d *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if d == nil {
		return fallback
	}
	return *d
}
