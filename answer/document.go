package answer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"docqa/convo"
	"docqa/extract"
	"docqa/llm"
	"docqa/normalize"
	"docqa/retrieval"
)

const (
	llmTemperature  = 0.1
	llmMaxPredict   = 512
	maxExcerpts     = 3
	longExcerptCap  = 800
	shortExcerptCap = 500
	historyTurns    = 3
)

// The possessive forms "tutarı"/"fiyatı" are price-shaped on their own
// (spec §8 scenario 3: "Invoice-13TVEI4D-0002 tutarı"), so the " ne"
// suffix is optional rather than required.
var priceQuestionPattern = regexp.MustCompile(`(?i)ne kadar|kac (tl|para|lira)|kaç (tl|para|lira)|fiyat[iı]?( ne)?|tutar[iı]?( ne)?|how much|what('| i)?s the (price|total|cost)`)

// notFoundPhrases are the false-negative markers from spec §4.15 (the
// phrase list is the same one the teacher's keywordFallback check
// used for its own "answer has no substance" heuristic).
var notFoundPhrases = []string{
	"not found", "not mentioned", "insufficient information", "cannot determine",
	"no relevant", "does not contain", "unable to find", "does not provide",
	"bulunamadi", "bulunamadı", "bulunamıyor", "yetersiz bilgi", "veri yok",
}

func composeDocument(ctx context.Context, req Request) (*Response, error) {
	results := req.Retrieval
	if len(results) == 0 {
		return &Response{Text: "Bu soruyla ilgili bir bilgi bulamadım.", Confidence: 0.4}, nil
	}

	amounts := extractAmounts(results)
	if resp, ok := priceBypass(req.Query, results, amounts); ok {
		return resp, nil
	}

	prompt := buildDocumentPrompt(req.Query, results, req.History)

	if req.Provider == nil {
		return templatedFallback(results), nil
	}

	raw, err := req.Provider.Generate(ctx, prompt, llm.GenerateOptions{Temperature: llmTemperature, NumPredict: llmMaxPredict})
	if err != nil {
		return templatedFallback(results), nil
	}

	text := postProcess(raw)
	if containsNotFoundPhrase(text) {
		return templatedFallback(results), nil
	}
	return &Response{Text: text, Confidence: 0.75, UsedLLM: true}, nil
}

func extractAmounts(results []retrieval.Result) []extract.Amount {
	var out []extract.Amount
	for _, r := range results {
		out = append(out, extract.ExtractAmounts(r.SectionID, r.Content)...)
	}
	return out
}

// priceBypass implements spec §4.15 rule 5's direct-answer shortcut:
// a price-shaped question, exactly one extracted amount, and the top
// result's filename named in the query skips the LLM entirely.
func priceBypass(query string, results []retrieval.Result, amounts []extract.Amount) (*Response, bool) {
	if !priceQuestionPattern.MatchString(query) || len(amounts) != 1 {
		return nil, false
	}
	top := results[0]
	if !filenameMentioned(query, top.Filename) {
		return nil, false
	}
	cur := amounts[0].Currency
	var curPtr *string
	if cur != "" {
		curPtr = &cur
	}
	return &Response{Text: formatAmount(amounts[0].Value, curPtr), Confidence: 0.95}, true
}

func filenameMentioned(query, filename string) bool {
	stem := filename
	if i := strings.LastIndex(stem, "."); i > 0 {
		stem = stem[:i]
	}
	normQuery := normalize.Normalize(query)
	normStem := normalize.Normalize(stem)
	if normStem == "" {
		return false
	}
	for _, tok := range strings.Fields(normStem) {
		if len(tok) >= 4 && strings.Contains(normQuery, tok) {
			return true
		}
	}
	return false
}

const systemPrompt = `Yalnızca verilen kaynaklara dayanarak yanıt ver. Kurallar:
1. Numaralı liste kullanma.
2. Markdown kalın/italik biçimlendirme kullanma.
3. En fazla 2 cümle ile yanıtla.
4. Kaynaklarda olmayan hiçbir bilgi uydurma.`

func buildDocumentPrompt(query string, results []retrieval.Result, history []convo.Turn) string {
	n := len(results)
	if n > maxExcerpts {
		n = maxExcerpts
		results = results[:n]
	}
	excerptCap := longExcerptCap
	if n > 2 {
		excerptCap = shortExcerptCap
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nKaynaklar:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "--- Kaynak %d: %s ---\n", i+1, r.Filename)
		b.WriteString(truncate(r.Excerpt, excerptCap))
		b.WriteString("\n\n")
	}

	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	if len(history) > 0 {
		b.WriteString("Önceki konuşma:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Soru: %s\n", query)
	return b.String()
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}

var (
	numberedListPattern = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	boldItalicPattern    = regexp.MustCompile(`\*{1,2}([^*]+)\*{1,2}`)
	multiNewlinePattern  = regexp.MustCompile(`\n{3,}`)
	sentencePattern      = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

// postProcess applies spec §4.15's deterministic cleanup: strip
// numbered-list markers and markdown emphasis, collapse runs of
// blank lines, and cap the output at 2 sentences.
func postProcess(text string) string {
	text = numberedListPattern.ReplaceAllString(text, "")
	text = boldItalicPattern.ReplaceAllString(text, "$1")
	text = multiNewlinePattern.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) > 2 {
		text = strings.TrimSpace(strings.Join(sentences[:2], ""))
	}
	return text
}

func containsNotFoundPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range notFoundPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// templatedFallback builds a deterministic answer from retrieval
// alone, used both when the LLM is unreachable and as the
// false-negative guard's override (spec §4.15).
func templatedFallback(results []retrieval.Result) *Response {
	names := make(map[string]struct{}, len(results))
	var ordered []string
	for _, r := range results {
		if _, seen := names[r.Filename]; !seen {
			names[r.Filename] = struct{}{}
			ordered = append(ordered, r.Filename)
		}
	}
	return &Response{
		Text:       "Şu belgelerde ilgili içerik buldum: " + strings.Join(ordered, ", ") + ". " + results[0].Excerpt,
		Confidence: 0.5,
	}
}
