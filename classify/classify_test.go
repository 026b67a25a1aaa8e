package classify

import (
	"context"
	"testing"

	"docqa/docstore"
	"docqa/llm"
)

func TestHeuristicFilenameStrongSignal(t *testing.T) {
	doc := docstore.RawDocument{
		Filename: "fatura_2024_001.pdf",
		Metadata: map[string]string{"fatura_no": "2024-001"},
		Sections: []docstore.RawSection{{Content: "KDV toplam tutar 1.234,56 TL"}},
	}
	typ, score := Heuristic(doc)
	if typ != docstore.TypeInvoice {
		t.Fatalf("type = %q, want invoice", typ)
	}
	if score < heuristicThreshold {
		t.Errorf("score = %f, want >= %f", score, heuristicThreshold)
	}
}

func TestClassifyHeuristicOnlyShortCircuits(t *testing.T) {
	doc := docstore.RawDocument{
		Filename: "fatura_001.pdf",
		Metadata: map[string]string{"fatura_no": "1"},
		Sections: []docstore.RawSection{{Content: "fatura kdv toplam tutar"}},
	}
	result := Classify(context.Background(), doc, nil, &stubProvider{})
	if result.Method != "heuristic_only" {
		t.Errorf("method = %q, want heuristic_only", result.Method)
	}
	if result.Type != docstore.TypeInvoice {
		t.Errorf("type = %q, want invoice", result.Type)
	}
}

func TestClassifyFallsBackToHybridOnWeakHeuristic(t *testing.T) {
	doc := docstore.RawDocument{
		Filename: "scan0001.pdf",
		Sections: []docstore.RawSection{{Content: "ambiguous text with no strong cues"}},
	}
	provider := &stubProvider{response: "contract 0.8"}
	result := Classify(context.Background(), doc, nil, provider)
	if result.Method != "hybrid" {
		t.Errorf("method = %q, want hybrid", result.Method)
	}
	if result.Type != docstore.TypeContract {
		t.Errorf("type = %q, want contract", result.Type)
	}
}

func TestClassifyDowngradesOnLLMFailure(t *testing.T) {
	doc := docstore.RawDocument{
		Filename: "scan0001.pdf",
		Sections: []docstore.RawSection{{Content: "teklif proforma geçerlilik"}},
	}
	_, bestScore := Heuristic(doc)
	provider := &stubProvider{err: errBoom}
	result := Classify(context.Background(), doc, nil, provider)
	if result.Method != "heuristic_only" {
		t.Errorf("method = %q, want heuristic_only on llm failure", result.Method)
	}
	if result.Confidence != bestScore-0.1 && result.Confidence != 0 {
		t.Errorf("confidence = %f, want downgraded from %f", result.Confidence, bestScore)
	}
}

func TestClassifyNoProviderStaysHeuristic(t *testing.T) {
	doc := docstore.RawDocument{Filename: "scan0001.pdf"}
	result := Classify(context.Background(), doc, nil, nil)
	if result.Method != "heuristic_only" {
		t.Errorf("method = %q, want heuristic_only", result.Method)
	}
}

var errBoom = &stubErr{"boom"}

type stubErr struct{ msg string }

func (e *stubErr) Error() string { return e.msg }

type stubProvider struct {
	response string
	err      error
}

func (p *stubProvider) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func (p *stubProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}
