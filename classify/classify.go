// Package classify implements the Classifier (spec §4.4): a
// heuristic-first, LLM-fallback assignment of a document type from
// the closed enum in docstore.DocType.
package classify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"docqa/docstore"
	"docqa/extract"
	"docqa/llm"
	"docqa/normalize"
)

// heuristicThreshold is the top-score cutoff above which the heuristic
// stage alone decides the type (spec §4.4).
const heuristicThreshold = 0.7

// semanticTimeout bounds the LLM fallback call.
const semanticTimeout = 5 * time.Second

// Result is the Classifier's output.
type Result struct {
	Type       docstore.DocType
	Confidence float64
	Method     string // heuristic_only | hybrid

	// HeuristicScore and SemanticScore feed docstore.Confidence's
	// sub-fields. SemanticScore is -1 when the semantic fallback never
	// ran (heuristic alone cleared the threshold, or no provider) or
	// when its LLM call or response parsing failed.
	HeuristicScore float64
	SemanticScore  float64
}

// Heuristic scores doc against the fixed signal table and returns the
// argmax type and its score in [0,1].
func Heuristic(doc docstore.RawDocument) (docstore.DocType, float64) {
	filename := strings.ToLower(doc.Filename)
	bodyNorm := normalize.Normalize(joinSections(doc))

	best := docstore.TypeOther
	bestScore := 0.0
	for _, sig := range signals {
		score := 0.0
		if containsAny(filename, sig.FilenameWords) {
			score += 0.5
		}
		if metadataMatches(doc.Metadata, sig.MetadataKeys) {
			score += 0.3
		}
		score += bodyKeywordScore(bodyNorm, sig.BodyKeywords)

		if score > bestScore {
			bestScore = score
			best = sig.Type
		}
	}
	if bestScore > 1 {
		bestScore = 1
	}
	return best, bestScore
}

// Classify runs the full heuristic-then-semantic-fallback policy.
// provider may be nil, in which case the heuristic result is returned
// unconditionally (no LLM configured).
func Classify(ctx context.Context, doc docstore.RawDocument, ids []extract.ID, provider llm.Provider) Result {
	bestType, bestScore := Heuristic(doc)
	if bestScore >= heuristicThreshold || provider == nil {
		return Result{Type: bestType, Confidence: bestScore, Method: "heuristic_only", HeuristicScore: bestScore, SemanticScore: -1}
	}

	semType, semScore, err := semanticGuess(ctx, doc, ids, provider)
	if err != nil {
		downgraded := bestScore - 0.1
		if downgraded < 0 {
			downgraded = 0
		}
		return Result{Type: bestType, Confidence: downgraded, Method: "heuristic_only", HeuristicScore: bestScore, SemanticScore: -1}
	}

	combined := 0.4*bestScore + 0.6*semScore
	finalType := bestType
	if bestScore == 0 {
		finalType = semType
	}
	return Result{Type: finalType, Confidence: combined, Method: "hybrid", HeuristicScore: bestScore, SemanticScore: semScore}
}

// semanticGuess sends a short synthesized context to the LLM and
// parses a "<type> <confidence>" style response (spec §4.4).
func semanticGuess(ctx context.Context, doc docstore.RawDocument, ids []extract.ID, provider llm.Provider) (docstore.DocType, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, semanticTimeout)
	defer cancel()

	prompt := buildClassifyPrompt(doc, ids)
	raw, err := provider.Generate(ctx, prompt, llm.GenerateOptions{Temperature: 0, NumPredict: 32})
	if err != nil {
		return "", 0, err
	}
	return parseClassifyResponse(raw)
}

func buildClassifyPrompt(doc docstore.RawDocument, ids []extract.ID) string {
	var b strings.Builder
	b.WriteString("Classify the document type. Reply with exactly one line: \"<type> <confidence>\" ")
	b.WriteString("where <type> is one of invoice, quote, receipt, waybill, contract, other ")
	b.WriteString("and <confidence> is a number between 0 and 1.\n\n")
	fmt.Fprintf(&b, "Filename: %s\n", doc.Filename)
	if len(ids) > 0 {
		fmt.Fprintf(&b, "Detected IDs: %s\n", ids[0].Raw)
	}
	n := 0
	for _, sec := range doc.Sections {
		if strings.TrimSpace(sec.Content) == "" {
			continue
		}
		excerpt := sec.Content
		if len(excerpt) > 300 {
			excerpt = excerpt[:300]
		}
		fmt.Fprintf(&b, "Section: %s\n", excerpt)
		n++
		if n >= 3 {
			break
		}
	}
	return b.String()
}

func parseClassifyResponse(raw string) (docstore.DocType, float64, error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) < 2 {
		return "", 0, fmt.Errorf("classify: malformed llm response %q", raw)
	}
	t := docstore.DocType(strings.ToLower(fields[0]))
	if !docstore.ValidDocTypes[t] {
		return "", 0, fmt.Errorf("classify: unknown type %q in llm response", fields[0])
	}
	conf, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return "", 0, fmt.Errorf("classify: bad confidence %q: %w", fields[1], err)
	}
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return t, conf, nil
}

func joinSections(doc docstore.RawDocument) string {
	var b strings.Builder
	for _, sec := range doc.Sections {
		b.WriteString(sec.Content)
		b.WriteString(" ")
	}
	return b.String()
}

func containsAny(haystack string, words []string) bool {
	for _, w := range words {
		if strings.Contains(haystack, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

func metadataMatches(meta map[string]string, keys []string) bool {
	if len(meta) == 0 {
		return false
	}
	for k := range meta {
		lk := strings.ToLower(k)
		for _, cand := range keys {
			if lk == strings.ToLower(cand) {
				return true
			}
		}
	}
	return false
}

// bodyKeywordScore returns a value in [0, 0.2] proportional to how
// many distinct keywords occur in the normalized body, capped.
func bodyKeywordScore(normBody string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(normBody, normalize.Normalize(kw)) {
			hits++
		}
	}
	frac := float64(hits) / float64(len(keywords))
	score := frac * 0.2
	if score > 0.2 {
		score = 0.2
	}
	return score
}
