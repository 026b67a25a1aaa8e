package retrieval

import (
	"regexp"
	"strings"
)

// filenameMatchedThreshold is the minimum per-document filename score
// that flags a document as filename_matched (spec §4.9 step 2).
const filenameMatchedThreshold = 0.3

var extensionPattern = regexp.MustCompile(`(?i)\.(pdf|docx?|xlsx?|pptx?|txt)$`)

func stripExtension(filename string) string {
	return extensionPattern.ReplaceAllString(filename, "")
}

// filenameScore scores a document's filename against the query per the
// priority ladder of spec §4.9 step 2.
func filenameScore(queryNormalized string, queryTokens, filenameTokens []string, filenameStemNormalized string) float64 {
	if queryNormalized != "" && queryNormalized == filenameStemNormalized {
		return 1.00
	}

	best := 0.0
	for _, qt := range queryTokens {
		for _, ft := range filenameTokens {
			var score float64
			switch {
			case len(ft) >= len(qt) && strings.HasPrefix(ft, qt):
				score = 0.95
			case strings.Contains(ft, qt):
				score = 0.85
			case strings.HasPrefix(qt, ft):
				score = 0.75
			case strings.Contains(qt, ft):
				score = 0.65
			}
			if score > best {
				best = score
			}
		}
	}

	if overlapCount(queryTokens, filenameTokens) >= 2 && best < 0.40 {
		best = 0.40
	}
	return best
}

func overlapCount(a, b []string) int {
	set := make(map[string]struct{}, len(b))
	for _, t := range b {
		set[t] = struct{}{}
	}
	n := 0
	for _, t := range a {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}
