package docstore

import (
	"os"
	"path/filepath"
	"testing"
)

func mustDoc(id string) *NormalizedDocument {
	return &NormalizedDocument{
		SchemaV:    CurrentSchemaVersion,
		ID:         id,
		Filename:   id + ".pdf",
		Type:       TypeOther,
		Confidence: Confidence{Classification: 0.9, Heuristic: 0.9, Semantic: -1},
	}
}

func TestInsertSupersedesAndBumpsVersion(t *testing.T) {
	s := New()
	if _, err := s.Insert(mustDoc("a")); err != nil {
		t.Fatal(err)
	}
	if s.Version() != 1 {
		t.Fatalf("version = %d, want 1", s.Version())
	}
	if _, err := s.Insert(mustDoc("a")); err != nil {
		t.Fatal(err)
	}
	if s.Version() != 2 {
		t.Fatalf("version = %d, want 2", s.Version())
	}
	all := s.ListAll()
	if len(all) != 2 {
		t.Fatalf("expected 2 records in history, got %d", len(all))
	}
	if !all[0].Archived {
		t.Error("expected predecessor to be archived")
	}
	if all[1].Archived {
		t.Error("expected latest record to be non-archived")
	}
	current := s.List()
	if len(current) != 1 {
		t.Fatalf("List() should exclude archived, got %d", len(current))
	}
}

func TestDoubleIngestIdempotenceInvariant(t *testing.T) {
	// Ingesting the same RawDocument twice yields one non-archived
	// record and one archived predecessor; CorpusVersion increased by 2.
	s := New()
	startVersion := s.Version()
	if _, err := s.Insert(mustDoc("dup")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Insert(mustDoc("dup")); err != nil {
		t.Fatal(err)
	}
	if s.Version()-startVersion != 2 {
		t.Fatalf("expected version delta 2, got %d", s.Version()-startVersion)
	}
	hist := s.history["dup"]
	archivedCount, currentCount := 0, 0
	for _, d := range hist {
		if d.Archived {
			archivedCount++
		} else {
			currentCount++
		}
	}
	if archivedCount != 1 || currentCount != 1 {
		t.Fatalf("expected 1 archived + 1 current, got %d archived, %d current", archivedCount, currentCount)
	}
}

func TestPurgeRemovesHistory(t *testing.T) {
	s := New()
	s.Insert(mustDoc("a"))
	s.Insert(mustDoc("a"))
	before := s.Version()
	s.Purge("a")
	if s.Version() != before+1 {
		t.Errorf("purge should bump version by 1, got delta %d", s.Version()-before)
	}
	if _, ok := s.Get("a"); ok {
		t.Error("expected purged document to be gone")
	}
	if len(s.ListAll()) != 0 {
		t.Error("expected purge to remove archived predecessors too")
	}
}

func TestEmptyCorpusBoundary(t *testing.T) {
	s := New()
	if len(s.List()) != 0 {
		t.Error("expected empty list on empty corpus")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New()
	s.Insert(mustDoc("a"))
	s.Insert(mustDoc("b"))

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := s.SaveSnapshot(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected snapshot file to exist: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Version() != s.Version() {
		t.Errorf("loaded version = %d, want %d", loaded.Version(), s.Version())
	}
	if len(loaded.List()) != 2 {
		t.Errorf("loaded %d documents, want 2", len(loaded.List()))
	}
}

func TestLoadSnapshotMissingFileIsEmpty(t *testing.T) {
	s, err := LoadSnapshot(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.List()) != 0 {
		t.Error("expected empty store for missing snapshot file")
	}
}

func TestValidateRejectsMissingSchemaVersion(t *testing.T) {
	d := mustDoc("x")
	d.SchemaV = 0
	if err := Validate(d); err == nil {
		t.Error("expected schema validation error for missing schema_v")
	}
}

func TestValidateRequiresHumanReviewWhenInvoiceTotalMissing(t *testing.T) {
	d := mustDoc("inv")
	d.Type = TypeInvoice
	d.Total = nil
	d.DeriveReviewFlag()
	if !d.NeedsHumanReview {
		t.Error("expected needs_human_review=true for invoice with no total")
	}
}
