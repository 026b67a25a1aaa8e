package normalize

import "testing"

func TestNormalizeTurkishFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"İstanbul Fatura", "istanbul fatura"},
		{"IŞIK Şirketi", "isik sirketi"},
		{"Çamlıca Ürünü", "camlica urunu"},
		{"ÖĞRENCİ", "ogrenci"},
		{"A.B.C-123", "a b c 123"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"İstanbul Fatura No: 123", "photobox360_setup.pdf", ""}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeInvalidUTF8(t *testing.T) {
	bad := "fatura \xff\xfe tutar"
	got := Normalize(bad)
	if got == "" {
		t.Fatal("expected non-empty normalization of invalid UTF-8 input")
	}
}

func TestIndexTokensDropsShort(t *testing.T) {
	tokens := Tokens(Normalize("bu o su fatura no 5"))
	idx := IndexTokens(tokens)
	for _, tok := range idx {
		if len([]rune(tok)) < MinTokenLen {
			t.Errorf("index token %q shorter than MinTokenLen", tok)
		}
	}
	if len(idx) >= len(tokens) {
		t.Errorf("expected IndexTokens to drop some short tokens")
	}
}

func TestTrigrams(t *testing.T) {
	tokens := []string{"a", "b", "c", "d"}
	tri := Trigrams(tokens)
	want := []string{"a b c", "b c d"}
	if len(tri) != len(want) {
		t.Fatalf("got %v, want %v", tri, want)
	}
	for i := range want {
		if tri[i] != want[i] {
			t.Errorf("trigram[%d] = %q, want %q", i, tri[i], want[i])
		}
	}
}

func TestTrigramsShortInput(t *testing.T) {
	if tri := Trigrams([]string{"a", "b"}); tri != nil {
		t.Errorf("expected nil trigrams for <3 tokens, got %v", tri)
	}
}

func TestJaccard(t *testing.T) {
	a := TokenSet([]string{"a", "b", "c"})
	b := TokenSet([]string{"b", "c", "d"})
	got := Jaccard(a, b)
	want := 2.0 / 4.0
	if got != want {
		t.Errorf("Jaccard = %v, want %v", got, want)
	}
}

func TestRewriteQueryStripsExtension(t *testing.T) {
	got := RewriteQuery("Invoice-13TVEI4D-0002.docx")
	if got == "" {
		t.Fatal("expected non-empty rewritten query")
	}
	for _, tok := range Tokens(got) {
		if tok == "docx" {
			t.Errorf("extension token leaked into rewritten query: %q", got)
		}
	}
}

func TestRewriteQueryTypoCorrection(t *testing.T) {
	got := RewriteQuery("potobox nerede")
	found := false
	for _, tok := range Tokens(got) {
		if tok == "photobox" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected typo correction to 'photobox', got %q", got)
	}
}

func TestRewriteQueryAbbreviation(t *testing.T) {
	got := RewriteQuery("fat bdl nedir")
	want := map[string]bool{"fatura": false, "bedel": false}
	for _, tok := range Tokens(got) {
		if _, ok := want[tok]; ok {
			want[tok] = true
		}
	}
	for k, v := range want {
		if !v {
			t.Errorf("expected abbreviation expansion to contain %q, got %q", k, got)
		}
	}
}
