package normalize

import (
	"regexp"
	"strings"
)

// extensionPattern strips a trailing filename extension from a query,
// e.g. a user pasting a filename as their whole question.
var extensionPattern = regexp.MustCompile(`(?i)\.(pdf|docx?|xlsx?|pptx?|txt)$`)

// abbreviations is a fixed, tiny expansion map for common Turkish
// shorthand seen in real queries. Query-side only; never applied at
// index time, so indexed content keeps the user's original wording.
var abbreviations = map[string]string{
	"bdl": "bedel",
	"fat": "fatura",
	"dok": "doküman",
}

// typos is a fixed, tiny correction map for a handful of observed
// misspellings of "photobox". Query-side only.
var typos = map[string]string{
	"potobox":  "photobox",
	"fotobox":  "photobox",
	"photobok": "photobox",
}

// RewriteQuery applies the query-only normalization pipeline: strip a
// trailing file extension, normalize, then expand abbreviations and
// correct fixed typos token-by-token. It returns the rewritten raw
// query string (not yet re-normalized) suitable for further token
// derivation via Normalize/Tokens.
func RewriteQuery(raw string) string {
	raw = extensionPattern.ReplaceAllString(strings.TrimSpace(raw), "")
	normalized := Normalize(raw)
	tokens := Tokens(normalized)
	for i, t := range tokens {
		if exp, ok := abbreviations[t]; ok {
			tokens[i] = exp
			continue
		}
		if fix, ok := typos[t]; ok {
			tokens[i] = fix
		}
	}
	return strings.Join(tokens, " ")
}
