package retrieval

import (
	"testing"

	"docqa/docstore"
	"docqa/index"
	"docqa/normalize"
)

func buildDoc(id, filename string, contents ...string) *docstore.NormalizedDocument {
	sections := make([]docstore.Section, 0, len(contents))
	for i, c := range contents {
		norm := normalize.Normalize(c)
		tokens := normalize.Tokens(norm)
		sections = append(sections, docstore.Section{
			ID:          id + "#" + string(rune('0'+i)),
			DocumentID:  id,
			Ordinal:     i,
			Content:     c,
			Normalized:  norm,
			Tokens:      tokens,
			IndexTokens: normalize.IndexTokens(tokens),
			Trigrams:    normalize.Trigrams(tokens),
		})
	}
	return &docstore.NormalizedDocument{ID: id, Filename: filename, Sections: sections}
}

func TestRetrieveFilenameOnlyHit(t *testing.T) {
	docs := []*docstore.NormalizedDocument{
		buildDoc("doc-1", "photobox_kurulum_kilavuzu.pdf", "Bu belge kurulum adimlarini anlatir ama photobox kelimesini icermez."),
	}
	ix := index.New()
	ix.Rebuild(docs)

	results := Retrieve("photobox kurulum kilavuzu", docs, ix, DefaultOptions())
	if len(results) == 0 {
		t.Fatal("expected at least one result for a filename-only hit")
	}
	if !results[0].FilenameMatched {
		t.Error("expected top result to be filename_matched")
	}
}

func TestRetrieveEmptyQueryReturnsEmpty(t *testing.T) {
	docs := []*docstore.NormalizedDocument{buildDoc("doc-1", "a.pdf", "some content")}
	ix := index.New()
	ix.Rebuild(docs)
	if got := Retrieve("   ", docs, ix, DefaultOptions()); got != nil {
		t.Errorf("expected nil for empty query, got %v", got)
	}
}

func TestRetrieveGeneralQueryBypassesScoring(t *testing.T) {
	docs := []*docstore.NormalizedDocument{
		buildDoc("doc-1", "a.pdf", "first section content here", "second section content here", "third section content here", "fourth section content here"),
	}
	ix := index.New()
	ix.Rebuild(docs)

	results := Retrieve("ne var", docs, ix, DefaultOptions())
	if len(results) == 0 {
		t.Fatal("expected general-query results")
	}
	for _, r := range results {
		if r.Score != 0.9 {
			t.Errorf("expected general query score 0.9, got %f", r.Score)
		}
	}
	if len(results) > 3 {
		t.Errorf("expected at most 3 sections from the single document, got %d", len(results))
	}
}

func TestRetrieveMaxRefsCapAndMinScoreThreshold(t *testing.T) {
	docs := []*docstore.NormalizedDocument{
		buildDoc("doc-1", "a.pdf", "toplam tutar bin iki yuz lira fatura detaylari burada"),
		buildDoc("doc-2", "b.pdf", "toplam tutar bin iki yuz lira fatura aciklamalari burada"),
		buildDoc("doc-3", "c.pdf", "alakasiz tamamen farkli bir konu hakkinda metin"),
	}
	ix := index.New()
	ix.Rebuild(docs)

	opts := Options{MaxRefs: 1, MinScore: 0.15}
	results := Retrieve("toplam tutar fatura", docs, ix, opts)
	if len(results) > 1 {
		t.Errorf("expected at most 1 result (max_refs), got %d", len(results))
	}
	for _, r := range results {
		if r.DocumentID == "doc-3" {
			t.Error("unrelated document should not pass min_score threshold")
		}
	}
}

func TestRerankCapsSectionsPerDocument(t *testing.T) {
	candidates := []Result{
		{SectionID: "s0", DocumentID: "d", Score: 0.9, Trigrams: map[string]struct{}{"a": {}}},
		{SectionID: "s1", DocumentID: "d", Score: 0.8, Trigrams: map[string]struct{}{"b": {}}},
		{SectionID: "s2", DocumentID: "d", Score: 0.7, Trigrams: map[string]struct{}{"c": {}}},
		{SectionID: "s3", DocumentID: "d", Score: 0.6, Trigrams: map[string]struct{}{"d": {}}},
	}
	kept := Rerank(candidates, map[string]struct{}{}, 10)
	if len(kept) != maxPerDocument {
		t.Errorf("expected at most %d sections per document, got %d", maxPerDocument, len(kept))
	}
}

func TestRerankDropsNearDuplicates(t *testing.T) {
	sharedTrigrams := map[string]struct{}{"a b c": {}, "b c d": {}}
	candidates := []Result{
		{SectionID: "s0", DocumentID: "d1", Score: 0.9, Trigrams: sharedTrigrams},
		{SectionID: "s1", DocumentID: "d2", Score: 0.85, Trigrams: sharedTrigrams},
	}
	kept := Rerank(candidates, map[string]struct{}{}, 10)
	if len(kept) != 1 {
		t.Errorf("expected near-duplicate to be dropped, kept %d", len(kept))
	}
}
