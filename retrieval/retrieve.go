package retrieval

import (
	"regexp"
	"sort"
	"strings"

	"docqa/docstore"
	"docqa/index"
	"docqa/normalize"
)

// generalQueryMaxTokens and generalQueryMaxTokenLen define the "short,
// unspecific query" bypass of spec §4.9 edge cases.
const (
	generalQueryMaxTokens  = 3
	generalQueryMaxTokenLen = 4
)

var amountPattern = regexp.MustCompile(`[₺$€£]|\d[\d.,]*\d|\bTRY\b|\bTL\b|\bUSD\b|\bEUR\b|\bGBP\b`)

var priceTerms = map[string]struct{}{
	"fiyat": {}, "tutar": {}, "toplam": {}, "bedel": {}, "kdv": {},
	"price": {}, "amount": {}, "total": {}, "cost": {}, "tl": {},
	"try": {}, "usd": {}, "eur": {}, "gbp": {},
}

// Retrieve runs the Retriever (spec §4.9): normalize + rewrite the
// query, run the filename-matching pass, collect candidates from the
// index, score them, threshold, then hand off to Rerank.
func Retrieve(query string, docs []*docstore.NormalizedDocument, ix *index.Index, opts Options) []Result {
	if opts.MaxRefs <= 0 {
		opts.MaxRefs = DefaultOptions().MaxRefs
	}
	if opts.MinScore <= 0 {
		opts.MinScore = DefaultOptions().MinScore
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}

	rewritten := normalize.RewriteQuery(trimmed)
	norm := normalize.Normalize(rewritten)
	allTokens := normalize.Tokens(norm)
	if len(allTokens) == 0 {
		return nil
	}

	if isGeneralQuery(allTokens) {
		return generalQueryResults(docs, ix, opts)
	}

	indexTokens := normalize.IndexTokens(allTokens)
	queryTokenSet := normalize.TokenSet(indexTokens)
	queryTrigramSet := normalize.TrigramSet(normalize.Trigrams(allTokens))
	queryWords := wordSet(allTokens)

	filenameScores := make(map[string]float64, len(docs))
	filenameMatched := make(map[string]bool, len(docs))
	for _, d := range docs {
		stem := normalize.Normalize(stripExtension(d.Filename))
		fTokens := ix.FilenameTokens(d.ID)
		score := filenameScore(norm, allTokens, fTokens, stem)
		filenameScores[d.ID] = score
		filenameMatched[d.ID] = score >= filenameMatchedThreshold
	}

	candidateIDs := ix.Candidates(indexTokens)
	for docID, matched := range filenameMatched {
		if !matched {
			continue
		}
		for _, sid := range ix.SectionsOf(docID) {
			candidateIDs[sid] = struct{}{}
		}
	}

	wantsPriceBoost := (opts.Intent == "aggregate" || opts.Intent == "document") && hasPriceTerm(allTokens)

	var results []Result
	for sid := range candidateIDs {
		sc, ok := ix.Section(sid)
		if !ok {
			continue
		}
		score := normalize.Jaccard(queryTokenSet, sc.TokenSet)
		if score >= 0.5 {
			score += normalize.Jaccard(queryTrigramSet, sc.TrigramSet) * 0.3
		}

		fScore := filenameScores[sc.DocumentID]
		matched := filenameMatched[sc.DocumentID]

		if score < 0.3 && fScore >= 0.7 {
			score = 0.5
		}
		if matched {
			score += 0.9 * fScore
		}

		if wantsPriceBoost {
			if amountPattern.MatchString(sc.OriginalText) {
				score += 0.3
			} else {
				score *= 0.5
			}
		}

		if score < opts.MinScore {
			continue
		}

		results = append(results, Result{
			SectionID:       sid,
			DocumentID:      sc.DocumentID,
			Filename:        sc.Filename,
			Content:         sc.OriginalText,
			Excerpt:         buildExcerpt(sc.OriginalText, queryWords),
			Score:           score,
			FilenameScore:   fScore,
			FilenameMatched: matched,
			Ordinal:         sc.Ordinal,
			SectionCount:    sc.SectionCount,
			Trigrams:        sc.TrigramSet,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return Rerank(results, queryWords, opts.MaxRefs)
}

// isGeneralQuery reports the spec §4.9 "general query" edge case: a
// short query (≤3 tokens) none of which is longer than 4 characters.
func isGeneralQuery(tokens []string) bool {
	if len(tokens) == 0 || len(tokens) > generalQueryMaxTokens {
		return false
	}
	for _, t := range tokens {
		if len([]rune(t)) > generalQueryMaxTokenLen {
			return false
		}
	}
	return true
}

// generalQueryResults returns the first 3 sections of each document
// with a fixed score of 0.9, capped at opts.MaxRefs overall.
func generalQueryResults(docs []*docstore.NormalizedDocument, ix *index.Index, opts Options) []Result {
	var out []Result
	for _, d := range docs {
		ids := ix.SectionsOf(d.ID)
		if len(ids) > 3 {
			ids = ids[:3]
		}
		for _, sid := range ids {
			sc, ok := ix.Section(sid)
			if !ok {
				continue
			}
			out = append(out, Result{
				SectionID:    sid,
				DocumentID:   sc.DocumentID,
				Filename:     sc.Filename,
				Content:      sc.OriginalText,
				Excerpt:      sc.OriginalText,
				Score:        0.9,
				Ordinal:      sc.Ordinal,
				SectionCount: sc.SectionCount,
				Trigrams:     sc.TrigramSet,
			})
			if len(out) >= opts.MaxRefs {
				return out
			}
		}
	}
	return out
}

func hasPriceTerm(tokens []string) bool {
	for _, t := range tokens {
		if _, ok := priceTerms[t]; ok {
			return true
		}
	}
	return false
}

func wordSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if len([]rune(t)) >= 4 {
			set[t] = struct{}{}
		}
	}
	return set
}
