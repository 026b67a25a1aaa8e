package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// idPattern matches alphanumeric runs joined by internal dashes or
// slashes, e.g. "INV-2024-001", "2025/001", "13TVEI4D-0002".
var idPattern = regexp.MustCompile(`\b[A-Za-z0-9]+(?:[-/][A-Za-z0-9]+)+\b`)

// ExtractInvoiceIDs detects invoice-style identifiers in text (spec
// §4.2): length ≥ 4, containing at least one digit and at least one
// alphanumeric segment of length ≥ 3.
func ExtractInvoiceIDs(sectionID, text string) []ID {
	var results []ID
	for _, raw := range idPattern.FindAllString(text, -1) {
		if len(raw) < 4 || !containsDigit(raw) {
			continue
		}
		if !hasLongSegment(raw) {
			continue
		}
		results = append(results, ID{
			Raw:       raw,
			Canonical: Canonicalize(raw),
			Pattern:   "alnum-dash-slash",
			SectionID: sectionID,
		})
	}
	return results
}

// Canonicalize uppercases an identifier span and strips surrounding
// non-alphanumeric punctuation.
func Canonicalize(raw string) string {
	trimmed := strings.TrimFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToUpper(trimmed)
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasLongSegment(s string) bool {
	for _, seg := range strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' }) {
		if len([]rune(seg)) >= 3 {
			return true
		}
	}
	return false
}
