package intent

import (
	"testing"
	"time"
)

var now = time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

func TestRouteCasual(t *testing.T) {
	if got := Route("merhaba", now).Kind; got != Casual {
		t.Errorf("got %q, want casual", got)
	}
}

func TestRouteMetaCount(t *testing.T) {
	if got := Route("kac belge var", now).Kind; got != MetaCount {
		t.Errorf("got %q, want meta_count", got)
	}
}

func TestRouteMetaList(t *testing.T) {
	if got := Route("hangi belgeler yuklendi", now).Kind; got != MetaList {
		t.Errorf("got %q, want meta_list", got)
	}
}

func TestRouteSummarizeCapturesFilename(t *testing.T) {
	res := Route("ozetle fatura_2024.pdf", now)
	if res.Kind != Summarize {
		t.Fatalf("got %q, want summarize", res.Kind)
	}
	if res.Filename != "fatura_2024.pdf" {
		t.Errorf("expected captured filename, got %q", res.Filename)
	}
}

func TestRouteInvoiceCount(t *testing.T) {
	if got := Route("kac fatura var", now).Kind; got != InvoiceCount {
		t.Errorf("got %q, want invoice_count", got)
	}
}

func TestRouteAggregateParsesPlan(t *testing.T) {
	res := Route("fatura toplam tutari nedir", now)
	if res.Kind != Aggregate {
		t.Fatalf("got %q, want aggregate", res.Kind)
	}
	if res.Plan == nil {
		t.Fatal("expected a parsed plan")
	}
}

func TestRouteDefaultsToDocumentWithLowerConfidence(t *testing.T) {
	res := Route("photobox kurulum kilavuzu nerede", now)
	if res.Kind != Document {
		t.Fatalf("got %q, want document", res.Kind)
	}
	if res.Confidence != defaultConfidence {
		t.Errorf("confidence = %v, want %v", res.Confidence, defaultConfidence)
	}
}
