// Package money rounds and compares currency amounts through shopspring/decimal
// so reported figures do not carry binary floating point noise.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Round2 rounds a dollar amount to cents, half away from zero.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Percent returns part/total*100 rounded to two places. A zero total yields 0.
func Percent(part, total float64) float64 {
	return Round2(Share(part, total))
}

// Share returns part/total*100 without display rounding, for threshold
// comparisons. A zero total yields 0.
func Share(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	p := decimal.NewFromFloat(part).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromFloat(total))
	f, _ := p.Float64()
	return f
}

// Diff returns a-b computed in decimal, so 25-24 is exactly 1.
func Diff(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Float64()
	return f
}

// Sum adds amounts exactly before converting back to float64.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Float64()
	return f
}

// FromFloat converts a float amount to a cent-rounded decimal.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// ToFloat converts a decimal amount back to float64.
func ToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// Format renders an amount as "$1,234.56".
func Format(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return fmt.Sprintf("%s$%s.%02d", sign, groupThousands(whole.String()), cents)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := len(digits) % 3
	out := digits[:head]
	for i := head; i < len(digits); i += 3 {
		if out != "" {
			out += ","
		}
		out += digits[i : i+3]
	}
	return out
}
