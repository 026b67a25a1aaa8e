// Package answer implements the Answer Composer (spec §4.15): the
// final stage that turns an intent-routed turn into a response,
// choosing between a direct deterministic answer, a stored or
// on-demand summary, an aggregator reduction, or an LLM-formatted
// document answer.
package answer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"docqa/aggregate"
	"docqa/convo"
	"docqa/docstore"
	"docqa/intent"
	"docqa/llm"
	"docqa/retrieval"
	"docqa/summarize"
)

// Request bundles everything one Compose call needs. Not every field
// is required for every intent: Retrieval and History only matter to
// the document path, Provider to the document, summarize and casual
// paths; the aggregate path reads its plan from Intent.Plan.
type Request struct {
	Intent    intent.Result
	Query     string
	Store     *docstore.Store
	Retrieval []retrieval.Result
	History   []convo.Turn
	Provider  llm.Provider
}

// Response is the Composer's output.
type Response struct {
	Text             string
	Confidence       float64
	UsedLLM          bool
	DuplicateInvoices []string
	Outliers          []string
}

var casualReplies = map[string]string{
	"merhaba": "Merhaba! Size nasıl yardımcı olabilirim?",
	"selam":   "Selam! Nasıl yardımcı olabilirim?",
	"gunaydin": "Günaydın! Nasıl yardımcı olabilirim?",
	"günaydın": "Günaydın! Nasıl yardımcı olabilirim?",
	"tesekkur": "Rica ederim!",
	"teşekkür": "Rica ederim!",
	"tesekkurler": "Rica ederim!",
	"teşekkürler": "Rica ederim!",
	"thanks":   "You're welcome!",
	"thank you": "You're welcome!",
	"help":     "Belgelerinizle ilgili soru sorabilir, özet isteyebilir veya tutarları toplatabilirsiniz.",
	"yardim":   "Belgelerinizle ilgili soru sorabilir, özet isteyebilir veya tutarları toplatabilirsiniz.",
	"yardım":   "Belgelerinizle ilgili soru sorabilir, özet isteyebilir veya tutarları toplatabilirsiniz.",
}

const shortChatTemperature = 0.3

// Compose runs the priority-ordered rule list of spec §4.15.
func Compose(ctx context.Context, req Request) (*Response, error) {
	switch req.Intent.Kind {
	case intent.Casual:
		return composeCasual(ctx, req)
	case intent.MetaCount:
		return composeMetaCount(req), nil
	case intent.MetaList:
		return composeMetaList(req), nil
	case intent.InvoiceCount:
		return composeInvoiceCount(req), nil
	case intent.InvoiceList:
		return composeInvoiceList(req), nil
	case intent.Summarize:
		return composeSummarize(ctx, req)
	case intent.Aggregate:
		return composeAggregate(req)
	default:
		return composeDocument(ctx, req)
	}
}

func composeCasual(ctx context.Context, req Request) (*Response, error) {
	query := strings.ToLower(strings.TrimSpace(req.Query))
	for phrase, reply := range casualReplies {
		if strings.Contains(query, phrase) {
			return &Response{Text: reply, Confidence: 0.95}, nil
		}
	}
	if req.Provider == nil {
		return &Response{Text: "Merhaba! Size nasıl yardımcı olabilirim?", Confidence: 0.5}, nil
	}
	text, err := req.Provider.Generate(ctx, req.Query, llm.GenerateOptions{Temperature: shortChatTemperature, NumPredict: 64})
	if err != nil {
		return &Response{Text: "Merhaba! Size nasıl yardımcı olabilirim?", Confidence: 0.4}, nil
	}
	return &Response{Text: strings.TrimSpace(text), Confidence: 0.6, UsedLLM: true}, nil
}

func composeMetaCount(req Request) *Response {
	n := len(req.Store.List())
	return &Response{Text: fmt.Sprintf("Toplam %d belge bulunuyor.", n), Confidence: 1.0}
}

func composeMetaList(req Request) *Response {
	docs := req.Store.List()
	if len(docs) == 0 {
		return &Response{Text: "Henüz yüklenmiş bir belge yok.", Confidence: 1.0}
	}
	names := documentFilenames(docs, nil)
	return &Response{Text: "Yüklü belgeler: " + strings.Join(names, ", "), Confidence: 1.0}
}

func composeInvoiceCount(req Request) *Response {
	docs := req.Store.List()
	var invoices []*docstore.NormalizedDocument
	for _, d := range docs {
		if d.Type == docstore.TypeInvoice {
			invoices = append(invoices, d)
		}
	}
	resp := &Response{Text: fmt.Sprintf("Toplam %d fatura bulunuyor.", len(invoices)), Confidence: 1.0}
	if dups := aggregate.DuplicateInvoiceNumbers(invoices); len(dups) > 0 {
		resp.DuplicateInvoices = dups
		resp.Text += fmt.Sprintf(" (Uyarı: %d tekrar eden fatura numarası bulundu.)", len(dups))
	}
	return resp
}

func composeInvoiceList(req Request) *Response {
	invoiceType := docstore.TypeInvoice
	names := documentFilenames(req.Store.List(), &invoiceType)
	if len(names) == 0 {
		return &Response{Text: "Hiç fatura bulunamadı.", Confidence: 1.0}
	}
	return &Response{Text: "Faturalar: " + strings.Join(names, ", "), Confidence: 1.0}
}

func documentFilenames(docs []*docstore.NormalizedDocument, onlyType *docstore.DocType) []string {
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		if onlyType != nil && d.Type != *onlyType {
			continue
		}
		names = append(names, d.Filename)
	}
	sort.Strings(names)
	return names
}

func composeSummarize(ctx context.Context, req Request) (*Response, error) {
	doc := findDocumentByFilename(req.Store, req.Intent.Filename)
	if doc == nil {
		return &Response{Text: "Özetlenecek belge bulunamadı.", Confidence: 0.3}, nil
	}
	if doc.Summary != nil && doc.Summary.Text != "" {
		return &Response{Text: formatSummary(doc.Summary), Confidence: doc.Summary.Confidence}, nil
	}
	s := summarize.Summarize(ctx, doc, req.Provider)
	return &Response{Text: formatSummary(s), Confidence: s.Confidence, UsedLLM: req.Provider != nil}, nil
}

func formatSummary(s *docstore.SummaryInfo) string {
	if s == nil {
		return "Bu belge için özet oluşturulamadı."
	}
	var b strings.Builder
	b.WriteString(s.Text)
	for _, p := range s.KeyPoints {
		b.WriteString("\n- ")
		b.WriteString(p)
	}
	return b.String()
}

func findDocumentByFilename(store *docstore.Store, filename string) *docstore.NormalizedDocument {
	if filename == "" {
		return nil
	}
	for _, d := range store.List() {
		if strings.EqualFold(d.Filename, filename) {
			return d
		}
	}
	return nil
}

func composeAggregate(req Request) (*Response, error) {
	if req.Intent.Plan == nil {
		return &Response{Text: "Bu soruyu hesaplayamadım.", Confidence: 0.3}, nil
	}
	docs := req.Store.List()
	result, err := aggregate.Aggregate(docs, *req.Intent.Plan)
	if err != nil {
		if err == aggregate.ErrMixedCurrency {
			return composeMixedCurrency(result), nil
		}
		return &Response{Text: "Bu soruyu hesaplayamadım.", Confidence: 0.3}, nil
	}
	return composeAggregateResult(req.Intent.Plan, result), nil
}

func composeMixedCurrency(result *aggregate.Result) *Response {
	var parts []string
	keys := make([]string, 0, len(result.MixedBreakdown))
	for k := range result.MixedBreakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := result.MixedBreakdown[k]
		cur := k
		parts = append(parts, formatAmount(v, &cur))
	}
	return &Response{
		Text:       "Birden fazla para birimi bulundu, tek bir toplam hesaplanamıyor: " + strings.Join(parts, ", "),
		Confidence: 0.9,
	}
}

func composeAggregateResult(plan *aggregate.Plan, result *aggregate.Result) *Response {
	var b strings.Builder
	if plan.GroupBy != "" {
		keys := make([]string, 0, len(result.GroupedBy))
		for k := range result.GroupedBy {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(formatAmount(result.GroupedBy[k], nil))
		}
	} else if plan.Op == aggregate.OpCount {
		fmt.Fprintf(&b, "%d adet.", result.Count)
	} else if result.Value != nil {
		if result.Currency != "" {
			cur := result.Currency
			b.WriteString("Toplam: ")
			b.WriteString(formatAmount(*result.Value, &cur))
			fmt.Fprintf(&b, " (%d belge)", result.Count)
		} else {
			b.WriteString(formatAmount(*result.Value, nil))
		}
	} else {
		b.WriteString("Hesaplanacak veri bulunamadı.")
	}

	resp := &Response{Text: b.String(), Confidence: 0.9}
	if len(result.Duplicates) > 0 {
		resp.DuplicateInvoices = result.Duplicates
		resp.Text += fmt.Sprintf(" (Uyarı: %d tekrar eden fatura numarası bulundu.)", len(result.Duplicates))
	}
	if len(result.Outliers) > 0 {
		for _, o := range result.Outliers {
			resp.Outliers = append(resp.Outliers, formatAmount(o, nil))
		}
		resp.Text += fmt.Sprintf(" (Uyarı: %d aykırı değer bulundu.)", len(result.Outliers))
	}
	return resp
}
