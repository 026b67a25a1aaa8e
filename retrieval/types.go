// Package retrieval implements the Retriever (spec §4.9) and
// Re-ranker (spec §4.10): cascading keyword + filename + n-gram
// scoring over the Inverted Index, followed by signal-weighted
// re-ranking, near-duplicate suppression, and a per-document cap.
package retrieval

// Options configures one retrieval call (spec §4.9).
type Options struct {
	MaxRefs  int     // default 3
	MinScore float64 // default 0.15
	Intent   string  // hint from the Intent Router, e.g. "aggregate", "document"
}

// DefaultOptions returns the spec's default Retriever options.
func DefaultOptions() Options {
	return Options{MaxRefs: 3, MinScore: 0.15}
}

// Result is one ranked retrieval hit (spec §4.9/§4.10).
type Result struct {
	SectionID       string
	DocumentID      string
	Filename        string
	Content         string
	Excerpt         string
	Score           float64
	FilenameScore   float64
	FilenameMatched bool
	Ordinal         int
	SectionCount    int
	Trigrams        map[string]struct{} // carried through for dedup in Rerank
}
