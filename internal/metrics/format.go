package metrics

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatUSD renders an amount as whole dollars with thousands separators,
// e.g. "$1,234,567" or "-$40,000".
func FormatUSD(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	negative := rounded.IsNegative()
	digits := rounded.Abs().StringFixed(0)

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	b.WriteString(groupThousands(digits))
	return b.String()
}

// FormatPercent renders a percentage with one decimal, e.g. "11.1%".
func FormatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(1) + "%"
}

// FormatMonths renders a runway as "45.0 months", or the infinity sign.
func FormatMonths(r Runway) string {
	if r.Infinite {
		return r.String()
	}
	return r.String() + " months"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)
	return strings.Join(parts, ",")
}
