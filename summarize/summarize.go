// Package summarize implements the Summarizer (spec §4.6): an
// optional, LLM-backed short summary plus key-point list for each
// ingested document, with an extractive fallback on timeout/failure.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docqa/docstore"
	"docqa/llm"
)

// timeout bounds the summarization LLM call (spec §4.6).
const timeout = 10 * time.Second

// extractiveConfidence is the confidence assigned to the fallback
// extractive summary.
const extractiveConfidence = 0.3

// extractiveChars bounds the extractive fallback excerpt.
const extractiveChars = 200

const systemPrompt = `You summarize business documents in Turkish. Use ONLY the fields given to you below, never invent values.
Rules:
1. Write at most two sentences.
2. Then list up to 5 short key-point bullets, one per line, each starting with "- ".
3. Do not state any fact not present in the fields given.`

// Summarize produces a SummaryInfo for doc using provider. If provider
// is nil or the call fails/times out, it falls back to an extractive
// summary built from source_sample (spec §4.6).
func Summarize(ctx context.Context, doc *docstore.NormalizedDocument, provider llm.Provider) *docstore.SummaryInfo {
	if provider == nil {
		return extractiveSummary(doc)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := buildPrompt(doc)
	raw, err := provider.Generate(callCtx, systemPrompt+"\n\n"+prompt, llm.GenerateOptions{Temperature: 0.2, NumPredict: 256})
	if err != nil {
		return extractiveSummary(doc)
	}

	text, points := parseSummary(raw)
	if text == "" {
		return extractiveSummary(doc)
	}
	return &docstore.SummaryInfo{
		Text:       text,
		KeyPoints:  points,
		Language:   "tr",
		Confidence: 0.8,
	}
}

func buildPrompt(doc *docstore.NormalizedDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Filename: %s\n", doc.Filename)
	fmt.Fprintf(&b, "Type: %s\n", doc.Type)
	if doc.InvoiceNo != nil {
		fmt.Fprintf(&b, "Invoice no: %s\n", *doc.InvoiceNo)
	}
	if doc.Supplier != nil {
		fmt.Fprintf(&b, "Supplier: %s\n", *doc.Supplier)
	}
	if doc.Buyer != nil {
		fmt.Fprintf(&b, "Buyer: %s\n", *doc.Buyer)
	}
	if doc.Total != nil {
		cur := ""
		if doc.Currency != nil {
			cur = " " + *doc.Currency
		}
		fmt.Fprintf(&b, "Total: %s%s\n", doc.Total.String(), cur)
	}
	if doc.Date != nil {
		fmt.Fprintf(&b, "Date: %s\n", doc.Date.Format("2006-01-02"))
	}
	for _, item := range doc.Items {
		fmt.Fprintf(&b, "Item: %s\n", item.Description)
	}
	return b.String()
}

// parseSummary splits the LLM's reply into the prose summary and the
// "- " bullet key points.
func parseSummary(raw string) (string, []string) {
	var textLines []string
	var points []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "- ") {
			if len(points) < 5 {
				points = append(points, strings.TrimPrefix(line, "- "))
			}
			continue
		}
		textLines = append(textLines, line)
	}
	return strings.Join(textLines, " "), points
}

func extractiveSummary(doc *docstore.NormalizedDocument) *docstore.SummaryInfo {
	excerpt := doc.SourceSample
	if len(excerpt) > extractiveChars {
		excerpt = excerpt[:extractiveChars]
	}
	return &docstore.SummaryInfo{
		Text:       excerpt,
		Language:   "tr",
		Confidence: extractiveConfidence,
	}
}
