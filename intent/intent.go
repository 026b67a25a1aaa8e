// Package intent implements the Intent Router (spec §4.13): a
// deterministic rule cascade classifying each user turn before any
// retrieval or LLM call happens.
package intent

import (
	"regexp"
	"strings"
	"time"

	"docqa/aggregate"
)

type Kind string

const (
	Casual       Kind = "casual"
	MetaCount    Kind = "meta_count"
	MetaList     Kind = "meta_list"
	Summarize    Kind = "summarize"
	InvoiceCount Kind = "invoice_count"
	InvoiceList  Kind = "invoice_list"
	Aggregate    Kind = "aggregate"
	Document     Kind = "document"
)

const (
	ruleConfidence    = 0.95
	defaultConfidence = 0.8
)

// Result is the router's output for one turn.
type Result struct {
	Kind       Kind
	Confidence float64
	Filename   string         // populated only for Summarize, when a filename was named
	Plan       *aggregate.Plan // populated only for Aggregate
}

var (
	casualPattern       = regexp.MustCompile(`(?i)^(merhaba|selam|gunaydin|günaydın|iyi gunler|iyi günler|tesekkur|teşekkür|tesekkurler|teşekkürler|yardim|yardım|help|hi|hello|thanks|thank you)\b`)
	metaCountPattern    = regexp.MustCompile(`(?i)kac belge|kaç belge|how many docs?|belge sayisi|belge sayısı`)
	metaListPattern     = regexp.MustCompile(`(?i)hangi belgeler|list documents?|belgeleri listele`)
	summarizePattern    = regexp.MustCompile(`(?i)(ozetle|özetle|summarize)\b`)
	invoiceCountPattern = regexp.MustCompile(`(?i)kac fatura|kaç fatura|invoice count`)
	invoiceListPattern  = regexp.MustCompile(`(?i)hangi faturalar|list invoices?`)
	filenamePattern     = regexp.MustCompile(`(?i)[\w\-]+\.(pdf|docx?|xlsx?|pptx?|txt)\b`)
)

// Route classifies query per the spec §4.13 rule cascade, tried in
// order. now is only consumed by the aggregator's date-range phrases.
func Route(query string, now time.Time) Result {
	trimmed := strings.TrimSpace(query)

	if casualPattern.MatchString(trimmed) {
		return Result{Kind: Casual, Confidence: ruleConfidence}
	}
	if metaCountPattern.MatchString(trimmed) {
		return Result{Kind: MetaCount, Confidence: ruleConfidence}
	}
	if metaListPattern.MatchString(trimmed) {
		return Result{Kind: MetaList, Confidence: ruleConfidence}
	}
	if summarizePattern.MatchString(trimmed) {
		return Result{Kind: Summarize, Confidence: ruleConfidence, Filename: filenamePattern.FindString(trimmed)}
	}
	if invoiceCountPattern.MatchString(trimmed) {
		return Result{Kind: InvoiceCount, Confidence: ruleConfidence}
	}
	if invoiceListPattern.MatchString(trimmed) {
		return Result{Kind: InvoiceList, Confidence: ruleConfidence}
	}
	if plan, ok := aggregate.ParseQuery(trimmed, now); ok {
		return Result{Kind: Aggregate, Confidence: ruleConfidence, Plan: plan}
	}
	return Result{Kind: Document, Confidence: defaultConfidence}
}
