package answer

import (
	"context"
	"strings"
	"testing"

	"docqa/aggregate"
	"docqa/docstore"
	"docqa/intent"
	"docqa/llm"
	"docqa/retrieval"

	"github.com/shopspring/decimal"
)

func TestComposeCasualFromFixedTable(t *testing.T) {
	resp, err := Compose(context.Background(), Request{
		Intent: intent.Result{Kind: intent.Casual},
		Query:  "merhaba",
		Store:  docstore.New(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.Text, "Merhaba") {
		t.Errorf("unexpected casual reply: %q", resp.Text)
	}
}

func TestComposeMetaCount(t *testing.T) {
	store := docstore.New()
	store.Insert(&docstore.NormalizedDocument{ID: "1", Filename: "a.pdf", Type: docstore.TypeInvoice, Confidence: docstore.Confidence{Classification: 0.9}})
	store.Insert(&docstore.NormalizedDocument{ID: "2", Filename: "b.pdf", Type: docstore.TypeQuote, Confidence: docstore.Confidence{Classification: 0.9}})

	resp, err := Compose(context.Background(), Request{Intent: intent.Result{Kind: intent.MetaCount}, Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.Text, "2") {
		t.Errorf("expected count 2 in reply, got %q", resp.Text)
	}
}

func TestComposeInvoiceCountFiltersByType(t *testing.T) {
	store := docstore.New()
	store.Insert(&docstore.NormalizedDocument{ID: "1", Filename: "a.pdf", Type: docstore.TypeInvoice, Confidence: docstore.Confidence{Classification: 0.9}})
	store.Insert(&docstore.NormalizedDocument{ID: "2", Filename: "b.pdf", Type: docstore.TypeQuote, Confidence: docstore.Confidence{Classification: 0.9}})

	resp, err := Compose(context.Background(), Request{Intent: intent.Result{Kind: intent.InvoiceCount}, Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.Text, "1") {
		t.Errorf("expected invoice count 1 in reply, got %q", resp.Text)
	}
}

func TestComposeAggregateSum(t *testing.T) {
	store := docstore.New()
	total := decimal.NewFromFloat(1200)
	cur := "TRY"
	store.Insert(&docstore.NormalizedDocument{
		ID: "1", Filename: "a.pdf", Type: docstore.TypeInvoice,
		Total: &total, Currency: &cur, Confidence: docstore.Confidence{Classification: 0.9},
	})

	plan := &aggregate.Plan{Op: aggregate.OpSum, Field: aggregate.FieldTotal}
	resp, err := Compose(context.Background(), Request{
		Intent: intent.Result{Kind: intent.Aggregate, Plan: plan},
		Store:  store,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.Text, "1.200,00") {
		t.Errorf("expected Turkish-grouped amount in reply, got %q", resp.Text)
	}
}

func TestComposeDocumentNoResultsIsPolite(t *testing.T) {
	resp, err := Compose(context.Background(), Request{
		Intent: intent.Result{Kind: intent.Document},
		Store:  docstore.New(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text == "" {
		t.Error("expected a non-empty polite fallback")
	}
}

func TestComposeDocumentFalseNegativeGuardOverridesLLM(t *testing.T) {
	results := []retrieval.Result{
		{SectionID: "s1", DocumentID: "d1", Filename: "fatura.pdf", Content: "icerik", Excerpt: "icerik"},
	}
	resp, err := Compose(context.Background(), Request{
		Intent:    intent.Result{Kind: intent.Document},
		Query:     "bu ne anlatiyor",
		Store:     docstore.New(),
		Retrieval: results,
		Provider:  stubNotFoundProvider{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.Text, "fatura.pdf") {
		t.Errorf("expected false-negative guard to list the matched filename, got %q", resp.Text)
	}
}

type stubNotFoundProvider struct{}

func (stubNotFoundProvider) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	return "Bu bilgi bulunamadı.", nil
}

func (stubNotFoundProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}
