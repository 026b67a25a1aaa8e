package extract

import (
	"regexp"
	"strings"
)

// numSpan matches a bare numeric span: optional parens/sign, digits
// with optional '.'/',' grouping or decimal punctuation.
const numSpan = `\(?-?\d(?:[\d.,]*\d)?\)?`

var (
	symbolBeforePattern = regexp.MustCompile(`[₺$€£]\s?` + numSpan)
	symbolAfterPattern  = regexp.MustCompile(numSpan + `\s?[₺$€£]`)
	codeAfterPattern    = regexp.MustCompile(`(?i)` + numSpan + `\s?(?:TRY|TL\.|TL|USD|EUR|EURO|GBP)\b`)
	bareNumberPattern   = regexp.MustCompile(numSpan)

	currencyCodeExtract = regexp.MustCompile(`(?i)TRY|TL\.|TL|USD|EUR|EURO|GBP`)
)

// currencyFromSpan inspects a matched raw span for a currency symbol or
// code and returns its ISO 4217 code, or "" if none is present.
func currencyFromSpan(raw string) string {
	switch {
	case strings.ContainsAny(raw, "₺"):
		return "TRY"
	case strings.ContainsRune(raw, '$'):
		return "USD"
	case strings.ContainsRune(raw, '€'):
		return "EUR"
	case strings.ContainsRune(raw, '£'):
		return "GBP"
	}
	if code := currencyCodeExtract.FindString(raw); code != "" {
		switch strings.ToUpper(code) {
		case "TL", "TL.", "TRY":
			return "TRY"
		case "USD":
			return "USD"
		case "EUR", "EURO":
			return "EUR"
		case "GBP":
			return "GBP"
		}
	}
	return ""
}

// numericSpanOnly strips everything but digits/sign/punctuation from a
// matched raw span, leaving only the part ParseNumber understands.
func numericSpanOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-', r == '(', r == ')':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExtractAmounts detects monetary amounts in text, trying currency-
// symbol matches, then currency-code matches, then bare numbers, in
// that order (spec §4.2). Matched spans are consumed so a later,
// lower-priority pattern never re-matches the same text.
func ExtractAmounts(sectionID, text string) []Amount {
	var results []Amount
	work := []byte(text)

	blank := func(start, end int) {
		for i := start; i < end; i++ {
			if work[i] != '\n' {
				work[i] = ' '
			}
		}
	}

	consume := func(pattern *regexp.Regexp, confidence float64, requireCurrency bool) {
		matches := pattern.FindAllStringIndex(string(work), -1)
		for _, m := range matches {
			start, end := m[0], m[1]
			raw := text[start:end]
			currency := currencyFromSpan(raw)
			if requireCurrency && currency == "" {
				continue
			}
			numSpanStr := numericSpanOnly(raw)
			val, err := ParseNumber(numSpanStr)
			if err != nil {
				continue
			}
			results = append(results, Amount{
				Raw:        strings.TrimSpace(raw),
				Value:      val,
				Currency:   currency,
				Confidence: confidence,
				SectionID:  sectionID,
			})
			blank(start, end)
		}
	}

	consume(symbolBeforePattern, 0.95, true)
	consume(symbolAfterPattern, 0.95, true)
	consume(codeAfterPattern, 0.9, true)
	consume(bareNumberPattern, 0.5, false)

	return results
}
