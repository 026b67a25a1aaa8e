// Package index implements the Inverted Index (spec §4.8): token to
// section-id postings over normalized content and filename tokens,
// rebuilt eagerly on every structural store change and swapped
// atomically so readers always see a consistent snapshot.
package index

import (
	"strings"
	"sync"

	"docqa/docstore"
	"docqa/normalize"
)

// SectionCache is the per-section side-table kept alongside the
// postings (spec §4.8).
type SectionCache struct {
	DocumentID     string
	Filename       string
	OriginalText   string
	NormalizedText string
	TokenSet       map[string]struct{}
	TrigramSet     map[string]struct{}
	Ordinal        int
	SectionCount   int // sections in the owning document, for position scoring
}

// snapshot is the immutable index generation swapped in on rebuild.
type snapshot struct {
	postings map[string]map[string]struct{} // token -> section ids
	sections map[string]SectionCache        // section id -> cache entry
	filename map[string][]string            // document id -> normalized filename tokens
}

// Index is the thread-safe, swap-on-write inverted index.
type Index struct {
	mu  sync.RWMutex
	cur *snapshot
}

// New returns an empty Index.
func New() *Index {
	return &Index{cur: emptySnapshot()}
}

func emptySnapshot() *snapshot {
	return &snapshot{
		postings: make(map[string]map[string]struct{}),
		sections: make(map[string]SectionCache),
		filename: make(map[string][]string),
	}
}

// Rebuild replaces the index contents from scratch given the store's
// current (non-archived) documents. Called eagerly at ingest and on
// every structural change (spec §4.8).
func (ix *Index) Rebuild(docs []*docstore.NormalizedDocument) {
	next := emptySnapshot()
	for _, doc := range docs {
		filenameTokens := filenameTokensOf(doc.Filename)
		next.filename[doc.ID] = filenameTokens
		sectionCount := len(doc.Sections)
		for _, sec := range doc.Sections {
			tokenSet := normalize.TokenSet(sec.IndexTokens)
			trigramSet := normalize.TrigramSet(sec.Trigrams)
			next.sections[sec.ID] = SectionCache{
				DocumentID:     doc.ID,
				Filename:       doc.Filename,
				OriginalText:   sec.Content,
				NormalizedText: sec.Normalized,
				TokenSet:       tokenSet,
				TrigramSet:     trigramSet,
				Ordinal:        sec.Ordinal,
				SectionCount:   sectionCount,
			}
			for tok := range tokenSet {
				postSection(next, tok, sec.ID)
			}
		}
		for _, tok := range filenameTokens {
			for _, sec := range doc.Sections {
				postSection(next, tok, sec.ID)
			}
		}
	}

	ix.mu.Lock()
	ix.cur = next
	ix.mu.Unlock()
}

func postSection(snap *snapshot, token, sectionID string) {
	set, ok := snap.postings[token]
	if !ok {
		set = make(map[string]struct{})
		snap.postings[token] = set
	}
	set[sectionID] = struct{}{}
}

// filenameTokensOf splits a filename into normalized tokens, with
// underscores/dashes treated as additional separators before the
// generic normalizer runs (spec §4.8).
func filenameTokensOf(filename string) []string {
	replaced := strings.NewReplacer("_", " ", "-", " ").Replace(filename)
	norm := normalize.Normalize(replaced)
	return normalize.Tokens(norm)
}

// Candidates unions the posting lists of every query token.
func (ix *Index) Candidates(queryTokens []string) map[string]struct{} {
	ix.mu.RLock()
	snap := ix.cur
	ix.mu.RUnlock()

	out := make(map[string]struct{})
	for _, tok := range queryTokens {
		for id := range snap.postings[tok] {
			out[id] = struct{}{}
		}
	}
	return out
}

// Section returns the cached entry for a section id.
func (ix *Index) Section(id string) (SectionCache, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	sc, ok := ix.cur.sections[id]
	return sc, ok
}

// FilenameTokens returns the normalized filename tokens for a document.
func (ix *Index) FilenameTokens(documentID string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.cur.filename[documentID]
}

// SectionsOf returns every cached section id belonging to documentID,
// in ordinal order — used for the filename_matched candidate pass
// (spec §4.9 step 3).
func (ix *Index) SectionsOf(documentID string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	type pair struct {
		id      string
		ordinal int
	}
	var pairs []pair
	for id, sc := range ix.cur.sections {
		if sc.DocumentID == documentID {
			pairs = append(pairs, pair{id, sc.Ordinal})
		}
	}
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j].ordinal < pairs[j-1].ordinal; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.id
	}
	return out
}
