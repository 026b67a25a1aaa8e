// Package convo implements Conversation Memory (spec §4.14): a bounded
// ring of recent turns, plus anaphora resolution that rewrites a
// pronoun-led query into the filename it refers to.
package convo

import (
	"regexp"
	"strings"
	"sync"
)

const DefaultCapacity = 10

const lookbackTurns = 5

// Turn is one message in the conversation.
type Turn struct {
	Role    string // "user" | "assistant"
	Content string
}

// Memory is a thread-safe bounded ring of the last N turns.
type Memory struct {
	mu       sync.Mutex
	capacity int
	turns    []Turn // oldest first
}

func New(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{capacity: capacity}
}

// Add appends turn, evicting the oldest entry if at capacity.
func (m *Memory) Add(turn Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turn)
	if len(m.turns) > m.capacity {
		m.turns = m.turns[len(m.turns)-m.capacity:]
	}
}

// Recent returns up to n turns, newest first.
func (m *Memory) Recent(n int) []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.turns) {
		n = len(m.turns)
	}
	out := make([]Turn, n)
	for i := 0; i < n; i++ {
		out[i] = m.turns[len(m.turns)-1-i]
	}
	return out
}

var pronouns = []string{"bu", "o", "şu"}

var idPattern = regexp.MustCompile(`[A-Z][a-zA-Z]*-[A-Z0-9]{6,}`)

// ResolveReference rewrites query per spec §4.14. It returns the
// (possibly rewritten) query and whether a rewrite happened.
func (m *Memory) ResolveReference(query string, filenames []string) (string, bool) {
	_, rest, ok := stripPronounPrefix(query)
	if !ok {
		return query, false
	}

	recent := m.Recent(lookbackTurns)
	if len(recent) == 0 {
		return query, false
	}

	if introducesNewSearchToken(rest, recent) {
		return query, false
	}

	filename, found := findFilenameMention(recent, filenames)
	if !found {
		return query, false
	}

	return strings.TrimSpace(filename + " " + rest), true
}

// stripPronounPrefix reports whether query starts (case-insensitive)
// with one of {bu, o, şu} followed by whitespace, returning the
// matched pronoun and the remainder of the original query.
func stripPronounPrefix(query string) (pronoun string, rest string, ok bool) {
	trimmed := strings.TrimSpace(query)
	lower := strings.ToLower(trimmed)
	for _, p := range pronouns {
		if lower == p {
			continue // pronoun alone, no remainder to anchor a rewrite to
		}
		if strings.HasPrefix(lower, p+" ") || strings.HasPrefix(lower, p+"\t") {
			return p, strings.TrimSpace(trimmed[len(p):]), true
		}
	}
	return "", "", false
}

// introducesNewSearchToken reports whether rest contains a token of
// 5+ runes not present anywhere in the lookback history, which per
// spec §4.14 signals a fresh search rather than an anaphoric one.
func introducesNewSearchToken(rest string, recent []Turn) bool {
	var history strings.Builder
	for _, t := range recent {
		history.WriteString(strings.ToLower(t.Content))
		history.WriteByte(' ')
	}
	historyText := history.String()

	for _, tok := range strings.Fields(strings.ToLower(rest)) {
		if len([]rune(tok)) >= 5 && !strings.Contains(historyText, tok) {
			return true
		}
	}
	return false
}

// findFilenameMention searches recent (newest first) for a mention of
// any known filename, trying all four strategies in priority order
// before moving to the next turn.
func findFilenameMention(recent []Turn, filenames []string) (string, bool) {
	for _, turn := range recent {
		content := turn.Content
		if fn, ok := matchExact(content, filenames); ok {
			return fn, true
		}
		if fn, ok := matchWithoutExtension(content, filenames); ok {
			return fn, true
		}
		if fn, ok := matchIDPattern(content, filenames); ok {
			return fn, true
		}
		if fn, ok := matchSignificantWord(content, filenames); ok {
			return fn, true
		}
	}
	return "", false
}

func matchExact(content string, filenames []string) (string, bool) {
	lower := strings.ToLower(content)
	for _, fn := range filenames {
		if strings.Contains(lower, strings.ToLower(fn)) {
			return fn, true
		}
	}
	return "", false
}

func matchWithoutExtension(content string, filenames []string) (string, bool) {
	lower := strings.ToLower(content)
	for _, fn := range filenames {
		stem := stripExtension(fn)
		if stem != "" && strings.Contains(lower, strings.ToLower(stem)) {
			return fn, true
		}
	}
	return "", false
}

func matchIDPattern(content string, filenames []string) (string, bool) {
	for _, m := range idPattern.FindAllString(content, -1) {
		lowerID := strings.ToLower(m)
		for _, fn := range filenames {
			if strings.Contains(strings.ToLower(fn), lowerID) {
				return fn, true
			}
		}
	}
	return "", false
}

func matchSignificantWord(content string, filenames []string) (string, bool) {
	for _, word := range strings.Fields(content) {
		if len([]rune(word)) < 5 {
			continue
		}
		lowerWord := strings.ToLower(word)
		for _, fn := range filenames {
			lowerFn := strings.ToLower(fn)
			if strings.Contains(lowerFn, lowerWord) || strings.Contains(lowerWord, lowerFn) {
				return fn, true
			}
		}
	}
	return "", false
}

func stripExtension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i <= 0 {
		return filename
	}
	return filename[:i]
}
