package domain

import (
	"fmt"
	"math"
)

// Money is an amount in cents.
type Money int64

// Ceilings accepted for order contents. Items below them can never overflow a total.
const (
	MaxQuantity       = 10_000
	MaxAmount   Money = 100_000_000 // 1 000 000.00
)

// MoneyFromFloat converts a decimal amount (e.g. 12.5) to cents, rounding half away from zero.
// Values outside the int64 range saturate; NaN becomes zero.
func MoneyFromFloat(v float64) Money {
	c := math.Round(v * 100)
	switch {
	case math.IsNaN(c):
		return 0
	case c >= math.MaxInt64:
		return math.MaxInt64
	case c <= math.MinInt64:
		return math.MinInt64
	}
	return Money(c)
}

// Float returns the decimal amount.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// Mul multiplies the amount by a quantity.
func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

// String renders the amount with two decimals.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
