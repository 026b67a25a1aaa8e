package extract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber parses a raw numeric span using the format-sensitive
// policy from spec §4.2: the last-occurring separator among '.' and
// ',' is the decimal separator; the other (if present) is a thousands
// grouping separator. When only one kind of separator appears, a
// trailing group of length 2 is treated as decimal digits, a trailing
// group of length 3 is treated as a thousands separator (no decimal
// part). A leading '-' or a wrapping "(...)" indicates a negative
// value.
func ParseNumber(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("extract: empty numeric span")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	}

	var digits strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			digits.WriteRune(r)
		}
	}
	s = digits.String()
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("extract: no digits in %q", raw)
	}

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	var decSep byte
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			decSep = ','
		} else {
			decSep = '.'
		}
	case lastComma >= 0:
		if len(s)-lastComma-1 == 2 {
			decSep = ','
		}
	case lastDot >= 0:
		if len(s)-lastDot-1 == 2 {
			decSep = '.'
		}
	}

	stripGroups := strings.NewReplacer(".", "", ",", "")

	var canon string
	if decSep == 0 {
		canon = stripGroups.Replace(s)
	} else {
		idx := strings.LastIndexByte(s, decSep)
		intPart := stripGroups.Replace(s[:idx])
		fracPart := s[idx+1:]
		canon = intPart + "." + fracPart
	}
	if negative {
		canon = "-" + canon
	}
	return decimal.NewFromString(canon)
}

// FormatAmount renders a decimal using Turkish grouping ('.' thousands,
// ',' decimals) with two decimal places, the default display policy per
// spec §9 ("Turkish grouping by default"). When currency is non-empty
// it is appended as an ISO 4217 suffix.
func FormatAmount(d decimal.Decimal, currency string) string {
	rounded := d.Round(2)
	neg := rounded.Sign() < 0
	if neg {
		rounded = rounded.Neg()
	}
	s := rounded.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")

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
	if currency != "" {
		out = out + " " + currency
	}
	return out
}
