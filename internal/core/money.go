// Amount coercion and display formatting.
//
// All amounts are MVR. The gateway returns amounts as JSON numbers or as
// strings that may carry currency symbols, thousands separators, or a leading
// escape quote; coercion never fails, it degrades to zero.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CoerceAmount converts a loosely-typed gateway amount into a decimal.
// Strings are stripped down to digits, '.' and '-' before parsing; anything
// unparseable becomes zero so a single malformed row cannot abort a load.
func CoerceAmount(v any) decimal.Decimal {
	switch a := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(a)
	case int64:
		return decimal.NewFromInt(a)
	case string:
		return coerceAmountString(a)
	default:
		return decimal.Zero
	}
}

func coerceAmountString(s string) decimal.Decimal {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an amount for display: two decimals with thousands
// separators, e.g. 1250.5 -> "1,250.50".
func FormatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}
