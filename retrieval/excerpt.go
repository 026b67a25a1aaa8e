package retrieval

import (
	"strings"
	"unicode"
)

// excerptMaxLen is the approximate maximum character length for an
// excerpt shown alongside a retrieval result.
const excerptMaxLen = 300

// buildExcerpt returns the 1-2 most relevant sentences from content
// based on word overlap with queryWords. Returns the first sentence
// when no word overlap exists so the caller always has something to
// show.
func buildExcerpt(content string, queryWords map[string]struct{}) string {
	if content == "" {
		return ""
	}

	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return ""
	}

	type scored struct {
		text  string
		score int
	}
	scoredSentences := make([]scored, len(sentences))
	for i, s := range sentences {
		overlap := 0
		for w := range significantWords(s) {
			if _, ok := queryWords[w]; ok {
				overlap++
			}
		}
		scoredSentences[i] = scored{text: s, score: overlap}
	}

	bestIdx := 0
	bestScore := scoredSentences[0].score
	for i, s := range scoredSentences {
		if s.score > bestScore {
			bestScore = s.score
			bestIdx = i
		}
	}

	if bestScore == 0 {
		result := scoredSentences[0].text
		if len(result) > excerptMaxLen {
			result = result[:excerptMaxLen]
		}
		return result
	}

	result := scoredSentences[bestIdx].text
	if len(result) < excerptMaxLen && len(scoredSentences) > 1 {
		candidateIdx := -1
		candidateScore := 0
		for _, delta := range []int{1, -1} {
			adj := bestIdx + delta
			if adj >= 0 && adj < len(scoredSentences) && scoredSentences[adj].score > candidateScore {
				candidateScore = scoredSentences[adj].score
				candidateIdx = adj
			}
		}
		if candidateIdx >= 0 && candidateScore > 0 {
			combined := result + " " + scoredSentences[candidateIdx].text
			if candidateIdx < bestIdx {
				combined = scoredSentences[candidateIdx].text + " " + result
			}
			if len(combined) <= excerptMaxLen {
				result = combined
			}
		}
	}

	if len(result) > excerptMaxLen {
		result = result[:excerptMaxLen]
	}
	return result
}

// significantWords returns the set of lowercased word runs at least 4
// characters long.
func significantWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) >= 4 {
			words[w] = struct{}{}
		}
	}
	return words
}

// splitSentences splits text into sentences at period/question/
// exclamation boundaries followed by whitespace or end of string.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '?' || runes[i] == '!' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				s := strings.TrimSpace(cur.String())
				if s != "" {
					sentences = append(sentences, s)
				}
				cur.Reset()
			}
		}
	}
	if cur.Len() > 0 {
		s := strings.TrimSpace(cur.String())
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
