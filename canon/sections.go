package canon

import (
	"fmt"

	"docqa/docstore"
	"docqa/normalize"
)

// sectionFrom builds an indexable Section from one raw section,
// precomputing the normalized text, token set, and trigram set the
// Inverted Index and Re-ranker consume (spec §3, §4.1).
func sectionFrom(docID string, ordinal int, raw docstore.RawSection) docstore.Section {
	id := raw.ID
	if id == "" {
		id = fmt.Sprintf("%s#%d", docID, ordinal)
	}
	norm := normalize.Normalize(raw.Content)
	tokens := normalize.Tokens(norm)
	return docstore.Section{
		ID:          id,
		DocumentID:  docID,
		Ordinal:     ordinal,
		Content:     raw.Content,
		Normalized:  norm,
		Tokens:      tokens,
		IndexTokens: normalize.IndexTokens(tokens),
		Trigrams:    normalize.Trigrams(tokens),
		Page:        raw.Page,
		Sheet:       raw.Sheet,
	}
}
