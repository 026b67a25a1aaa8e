package canon

import (
	"testing"

	"docqa/classify"
	"docqa/docstore"
	"docqa/extract"
)

func TestCanonicalizeFromMetadata(t *testing.T) {
	raw := docstore.RawDocument{
		ID:       "doc-1",
		Filename: "fatura_001.pdf",
		FileType: "pdf",
		Metadata: map[string]string{
			"FATURA_NO":    "INV-2024-001",
			"TOPLAM_TUTAR": "1.234,56",
			"PARA_BIRIMI":  "TL",
		},
		Sections: []docstore.RawSection{{ID: "doc-1#0", Content: "Fatura detayları burada."}},
	}
	doc, err := Canonicalize(Input{
		Raw:   raw,
		Class: classify.Result{Type: docstore.TypeInvoice, Confidence: 0.9, Method: "heuristic_only", HeuristicScore: 0.9, SemanticScore: -1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.InvoiceNo == nil || *doc.InvoiceNo != "INV-2024-001" {
		t.Errorf("invoice_no = %v, want INV-2024-001", doc.InvoiceNo)
	}
	if doc.Currency == nil || *doc.Currency != "TRY" {
		t.Errorf("currency = %v, want TRY", doc.Currency)
	}
	if doc.Total == nil || doc.Total.String() != "1234.56" {
		t.Errorf("total = %v, want 1234.56", doc.Total)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}
}

func TestCanonicalizeFallsBackToExtractedFields(t *testing.T) {
	raw := docstore.RawDocument{
		ID:       "doc-2",
		Filename: "scan0002.pdf",
		FileType: "pdf",
		Sections: []docstore.RawSection{{ID: "doc-2#0", Content: "Tutar: 500,44 TL, tarih 12.05.2024"}},
	}
	amounts := extract.ExtractAmounts("doc-2#0", raw.Sections[0].Content)
	dates := extract.ExtractDates("doc-2#0", raw.Sections[0].Content)

	doc, err := Canonicalize(Input{
		Raw:     raw,
		Class:   classify.Result{Type: docstore.TypeReceipt, Confidence: 0.8, Method: "heuristic_only", HeuristicScore: 0.8, SemanticScore: -1},
		Amounts: amounts,
		Dates:   dates,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Total == nil || doc.Total.String() != "500.44" {
		t.Errorf("total = %v, want 500.44", doc.Total)
	}
	if doc.Currency == nil || *doc.Currency != "TRY" {
		t.Errorf("currency = %v, want TRY", doc.Currency)
	}
	if doc.Date == nil {
		t.Fatal("expected date to be set")
	}
}

func TestCanonicalizeRejectsInvalidCurrency(t *testing.T) {
	raw := docstore.RawDocument{
		ID:       "doc-3",
		Filename: "bad.pdf",
		FileType: "pdf",
		Metadata: map[string]string{"PARA_BIRIMI": "XX"},
	}
	doc, err := Canonicalize(Input{
		Raw:   raw,
		Class: classify.Result{Type: docstore.TypeOther, Confidence: 0.9, HeuristicScore: 0.9, SemanticScore: -1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Currency != nil {
		t.Errorf("expected unrecognized currency token to be dropped, got %v", doc.Currency)
	}
}

func TestCanonicalizeInvoiceWithoutTotalNeedsReview(t *testing.T) {
	raw := docstore.RawDocument{
		ID:       "doc-4",
		Filename: "fatura_004.pdf",
		FileType: "pdf",
	}
	doc, err := Canonicalize(Input{
		Raw:   raw,
		Class: classify.Result{Type: docstore.TypeInvoice, Confidence: 0.9, HeuristicScore: 0.9, SemanticScore: -1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.NeedsHumanReview {
		t.Error("expected needs_human_review for invoice with no total")
	}
}

func TestSourceSampleSynthesis(t *testing.T) {
	raw := docstore.RawDocument{
		ID:       "doc-5",
		Filename: "fatura_005.pdf",
		FileType: "pdf",
		Sections: []docstore.RawSection{{Content: "some body text"}},
	}
	doc, err := Canonicalize(Input{
		Raw:   raw,
		Class: classify.Result{Type: docstore.TypeOther, Confidence: 0.9, HeuristicScore: 0.9, SemanticScore: -1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.SourceSample == "" {
		t.Error("expected non-empty source_sample")
	}
}
