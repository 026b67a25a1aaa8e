package answer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// formatAmount renders d with Turkish grouping ('.' thousands, ','
// decimal) when currency is known, falling back to locale-agnostic
// plain output when currency is null (spec §9's formatting rule).
func formatAmount(d decimal.Decimal, currency *string) string {
	plain := d.StringFixed(2)
	if currency == nil {
		return plain
	}
	return turkishGrouping(plain) + " " + *currency
}

// turkishGrouping converts a plain "1234.56" decimal string into
// Turkish-grouped "1.234,56".
func turkishGrouping(plain string) string {
	neg := strings.HasPrefix(plain, "-")
	if neg {
		plain = plain[1:]
	}
	intPart, fracPart, _ := strings.Cut(plain, ".")

	var grouped strings.Builder
	n := len(intPart)
	for i, r := range intPart {
		if i > 0 && (n-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := grouped.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
