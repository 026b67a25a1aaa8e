package retrieval

import (
	"sort"

	"docqa/normalize"
)

// nearDuplicateThreshold is the trigram-Jaccard cutoff above which a
// candidate is dropped as a near-duplicate of an already-kept result
// (spec §4.10).
const nearDuplicateThreshold = 0.75

// maxPerDocument caps how many sections from one document may appear
// in the final result set (spec §4.10).
const maxPerDocument = 3

// Rerank rescores candidates using density/filename/position/original
// signals, deduplicates near-identical excerpts, caps results per
// document, and returns at most maxRefs results (spec §4.10).
// queryTokens is the token set used to compute the density signal.
func Rerank(candidates []Result, queryTokens map[string]struct{}, maxRefs int) []Result {
	for i := range candidates {
		density := densityScore(candidates[i], queryTokens)
		position := positionScore(candidates[i])
		candidates[i].Score = 0.1*candidates[i].Score + 0.3*density + 0.4*candidates[i].FilenameScore + 0.2*position
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })

	var kept []Result
	perDoc := make(map[string]int)
	for _, cand := range candidates {
		if perDoc[cand.DocumentID] >= maxPerDocument {
			continue
		}
		if isNearDuplicate(cand, kept) {
			continue
		}
		kept = append(kept, cand)
		perDoc[cand.DocumentID]++
		if len(kept) >= maxRefs {
			break
		}
	}
	return kept
}

// densityScore is the count of query tokens present in the excerpt
// divided by the number of query tokens (spec §4.10).
func densityScore(r Result, queryTokens map[string]struct{}) float64 {
	if len(queryTokens) == 0 || r.Excerpt == "" {
		return 0
	}
	excerptWords := significantWords(r.Excerpt)
	hits := 0
	for t := range queryTokens {
		if _, ok := excerptWords[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

func positionScore(r Result) float64 {
	if r.SectionCount <= 0 {
		return 1
	}
	return 1 - float64(r.Ordinal)/float64(r.SectionCount)
}

func isNearDuplicate(cand Result, kept []Result) bool {
	for _, k := range kept {
		if normalize.Jaccard(cand.Trigrams, k.Trigrams) >= nearDuplicateThreshold {
			return true
		}
	}
	return false
}
