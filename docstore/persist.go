package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// persistedState is the on-disk shape described in spec §6: a single
// JSON artifact with top-level schema_v, corpus_version, documents.
type persistedState struct {
	SchemaV       int                   `json:"schema_v"`
	CorpusVersion int64                 `json:"corpus_version"`
	Documents     []*NormalizedDocument `json:"documents"`
}

// SaveSnapshot writes the store's entire history (including archived
// records) to path using write-temp-then-rename for atomicity.
func (s *Store) SaveSnapshot(path string) error {
	docs := s.ListAll()
	state := persistedState{
		SchemaV:       CurrentSchemaVersion,
		CorpusVersion: s.Version(),
		Documents:     docs,
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("docstore: marshal snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".docqa-snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("docstore: create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("docstore: write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("docstore: close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("docstore: rename temp snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a store previously written by SaveSnapshot. A
// missing file is not an error; it returns an empty store so a fresh
// deployment can start clean.
func LoadSnapshot(path string) (*Store, error) {
	s := New()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: read snapshot: %w", err)
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("docstore: unmarshal snapshot: %w", err)
	}
	s.replaceAll(state.Documents, state.CorpusVersion)
	return s, nil
}
