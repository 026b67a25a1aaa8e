// Package normalize implements the shared Turkish-aware text normalization
// used by both the ingest and query paths: lowercasing with diacritic
// folding, tokenization, and trigram derivation.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MinTokenLen is the shortest token kept for indexing purposes. Shorter
// tokens are dropped from the index token set but retained in the full
// query token list used for rewriting.
const MinTokenLen = 3

// turkishFold maps Turkish-specific letters (both cases) to their folded
// ASCII-ish equivalent, applied before generic lowercasing so that the
// Go runtime's locale-unaware unicode.ToLower never mangles them (in
// particular, U+0130 İ must fold to plain "i", not "i̇").
var turkishFold = map[rune]rune{
	'ı': 'i', 'İ': 'i', 'I': 'i',
	'ğ': 'g', 'Ğ': 'g',
	'ü': 'u', 'Ü': 'u',
	'ş': 's', 'Ş': 's',
	'ö': 'o', 'Ö': 'o',
	'ç': 'c', 'Ç': 'c',
}

// Normalize lowercases s, folds Turkish diacritics, applies Unicode NFC,
// collapses runs of non-alphanumeric runes to a single space, and trims
// the result. Invalid UTF-8 sequences are replaced with U+FFFD rather
// than rejected.
func Normalize(s string) string {
	s = strings.ToValidUTF8(s, "�")
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	lastWasSpace := true // avoid leading space
	for _, r := range s {
		if folded, ok := turkishFold[r]; ok {
			b.WriteRune(folded)
			lastWasSpace = false
			continue
		}
		lower := unicode.ToLower(r)
		if unicode.IsLetter(lower) || unicode.IsDigit(lower) {
			b.WriteRune(lower)
			lastWasSpace = false
			continue
		}
		if !lastWasSpace {
			b.WriteRune(' ')
			lastWasSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokens splits a normalized string on whitespace. It returns the full
// token list (for query rewriting) unchanged; callers that need the
// indexable subset should use IndexTokens.
func Tokens(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// IndexTokens returns the subset of tokens at least MinTokenLen runes
// long, the set actually used to populate the inverted index.
func IndexTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len([]rune(t)) >= MinTokenLen {
			out = append(out, t)
		}
	}
	return out
}

// TokenSet builds a set (map) from a token slice, for Jaccard comparisons.
func TokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Trigrams returns the sliding 3-token windows of tokens, joined by a
// single space, forming the trigram set used for near-duplicate
// detection and density scoring. Inputs shorter than 3 tokens produce
// no trigrams.
func Trigrams(tokens []string) []string {
	if len(tokens) < 3 {
		return nil
	}
	out := make([]string, 0, len(tokens)-2)
	for i := 0; i+3 <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+3], " "))
	}
	return out
}

// TrigramSet builds a set from a trigram slice.
func TrigramSet(trigrams []string) map[string]struct{} {
	set := make(map[string]struct{}, len(trigrams))
	for _, t := range trigrams {
		set[t] = struct{}{}
	}
	return set
}

// Jaccard computes the Jaccard similarity of two sets.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
