package convo

import "testing"

func TestRingEvictsOldest(t *testing.T) {
	m := New(2)
	m.Add(Turn{Role: "user", Content: "a"})
	m.Add(Turn{Role: "user", Content: "b"})
	m.Add(Turn{Role: "user", Content: "c"})

	recent := m.Recent(10)
	if len(recent) != 2 {
		t.Fatalf("expected 2 turns retained, got %d", len(recent))
	}
	if recent[0].Content != "c" || recent[1].Content != "b" {
		t.Errorf("expected newest-first [c,b], got %+v", recent)
	}
}

func TestResolveReferenceRewritesPronounToMentionedFilename(t *testing.T) {
	m := New(10)
	m.Add(Turn{Role: "user", Content: "fatura_2024_ocak.pdf dosyasini aciyorum, ne zaman kesildi"})
	m.Add(Turn{Role: "assistant", Content: "fatura_2024_ocak.pdf belgesini buldum, toplam 1200 TL"})

	got, ok := m.ResolveReference("bu ne zaman kesildi", []string{"fatura_2024_ocak.pdf"})
	if !ok {
		t.Fatal("expected a resolved reference")
	}
	if got == "bu ne zaman kesildi" {
		t.Error("expected the pronoun to be replaced")
	}
}

func TestResolveReferenceNoPronounNoRewrite(t *testing.T) {
	m := New(10)
	m.Add(Turn{Role: "assistant", Content: "fatura_2024_ocak.pdf belgesini buldum"})

	_, ok := m.ResolveReference("toplam ne kadar", []string{"fatura_2024_ocak.pdf"})
	if ok {
		t.Error("expected no rewrite without a leading pronoun")
	}
}

func TestResolveReferenceNewSearchTokenBlocksExpansion(t *testing.T) {
	m := New(10)
	m.Add(Turn{Role: "assistant", Content: "fatura_2024_ocak.pdf belgesini buldum"})

	_, ok := m.ResolveReference("o sozlesmeyi bulabilir misin", []string{"fatura_2024_ocak.pdf"})
	if ok {
		t.Error("expected new substantive token to block anaphora expansion")
	}
}

func TestResolveReferenceNoHistoryNoRewrite(t *testing.T) {
	m := New(10)
	_, ok := m.ResolveReference("bu ne zaman kesildi", []string{"fatura_2024_ocak.pdf"})
	if ok {
		t.Error("expected no rewrite with empty history")
	}
}
