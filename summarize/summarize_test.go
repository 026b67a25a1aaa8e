package summarize

import (
	"context"
	"testing"

	"docqa/docstore"
	"docqa/llm"
)

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

func TestSummarizeUsesLLMResponse(t *testing.T) {
	doc := &docstore.NormalizedDocument{Filename: "a.pdf", Type: docstore.TypeInvoice, SourceSample: "sample"}
	provider := &stubProvider{response: "Bu bir fatura özetidir.\n- kalem 1\n- kalem 2"}
	summary := Summarize(context.Background(), doc, provider)
	if summary.Confidence != 0.8 {
		t.Errorf("confidence = %f, want 0.8", summary.Confidence)
	}
	if len(summary.KeyPoints) != 2 {
		t.Fatalf("expected 2 key points, got %d", len(summary.KeyPoints))
	}
}

func TestSummarizeFallsBackOnError(t *testing.T) {
	doc := &docstore.NormalizedDocument{Filename: "a.pdf", SourceSample: "This is the extractive fallback text."}
	provider := &stubProvider{err: context.DeadlineExceeded}
	summary := Summarize(context.Background(), doc, provider)
	if summary.Confidence != extractiveConfidence {
		t.Errorf("confidence = %f, want %f", summary.Confidence, extractiveConfidence)
	}
	if summary.Text != doc.SourceSample {
		t.Errorf("text = %q, want %q", summary.Text, doc.SourceSample)
	}
}

func TestSummarizeNoProviderIsExtractive(t *testing.T) {
	doc := &docstore.NormalizedDocument{SourceSample: "short sample"}
	summary := Summarize(context.Background(), doc, nil)
	if summary.Confidence != extractiveConfidence {
		t.Errorf("confidence = %f, want %f", summary.Confidence, extractiveConfidence)
	}
}

func TestSummarizeTruncatesLongExtractive(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "x"
	}
	doc := &docstore.NormalizedDocument{SourceSample: long}
	summary := Summarize(context.Background(), doc, nil)
	if len(summary.Text) != extractiveChars {
		t.Errorf("text length = %d, want %d", len(summary.Text), extractiveChars)
	}
}
