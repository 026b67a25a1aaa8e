package index

import (
	"testing"

	"docqa/docstore"
	"docqa/normalize"
)

func sectionOf(id, docID, content string, ordinal int) docstore.Section {
	norm := normalize.Normalize(content)
	tokens := normalize.Tokens(norm)
	return docstore.Section{
		ID:          id,
		DocumentID:  docID,
		Ordinal:     ordinal,
		Content:     content,
		Normalized:  norm,
		Tokens:      tokens,
		IndexTokens: normalize.IndexTokens(tokens),
		Trigrams:    normalize.Trigrams(tokens),
	}
}

func TestRebuildAndCandidates(t *testing.T) {
	doc := &docstore.NormalizedDocument{
		ID:       "doc-1",
		Filename: "fatura_001.pdf",
		Sections: []docstore.Section{
			sectionOf("doc-1#0", "doc-1", "toplam tutar bin iki yuz otuz dort lira", 0),
			sectionOf("doc-1#1", "doc-1", "tedarikci bilgileri burada", 1),
		},
	}
	ix := New()
	ix.Rebuild([]*docstore.NormalizedDocument{doc})

	cands := ix.Candidates([]string{"toplam"})
	if _, ok := cands["doc-1#0"]; !ok {
		t.Error("expected doc-1#0 in candidates for token 'toplam'")
	}
	if _, ok := cands["doc-1#1"]; ok {
		t.Error("doc-1#1 should not match 'toplam'")
	}
}

func TestFilenameTokensSplitOnUnderscore(t *testing.T) {
	doc := &docstore.NormalizedDocument{
		ID:       "doc-2",
		Filename: "fatura_001.pdf",
		Sections: []docstore.Section{sectionOf("doc-2#0", "doc-2", "x", 0)},
	}
	ix := New()
	ix.Rebuild([]*docstore.NormalizedDocument{doc})
	toks := ix.FilenameTokens("doc-2")
	found := false
	for _, tok := range toks {
		if tok == "fatura" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected 'fatura' among filename tokens, got %v", toks)
	}
}

func TestSectionsOfPreservesOrdinalOrder(t *testing.T) {
	doc := &docstore.NormalizedDocument{
		ID:       "doc-3",
		Filename: "a.pdf",
		Sections: []docstore.Section{
			sectionOf("doc-3#1", "doc-3", "second", 1),
			sectionOf("doc-3#0", "doc-3", "first", 0),
		},
	}
	ix := New()
	ix.Rebuild([]*docstore.NormalizedDocument{doc})
	ids := ix.SectionsOf("doc-3")
	if len(ids) != 2 || ids[0] != "doc-3#0" || ids[1] != "doc-3#1" {
		t.Errorf("expected ordinal order [doc-3#0 doc-3#1], got %v", ids)
	}
}

func TestRebuildReplacesOldGeneration(t *testing.T) {
	ix := New()
	ix.Rebuild([]*docstore.NormalizedDocument{{
		ID: "old", Filename: "old.pdf",
		Sections: []docstore.Section{sectionOf("old#0", "old", "stale content here", 0)},
	}})
	ix.Rebuild([]*docstore.NormalizedDocument{{
		ID: "new", Filename: "new.pdf",
		Sections: []docstore.Section{sectionOf("new#0", "new", "fresh content here", 0)},
	}})
	if _, ok := ix.Section("old#0"); ok {
		t.Error("expected old generation to be gone after rebuild")
	}
	if _, ok := ix.Section("new#0"); !ok {
		t.Error("expected new generation section to be present")
	}
}
