package docstore

import (
	"fmt"
	"sync"
	"time"
)

// Store is the process-lifetime, append-only document collection
// (spec §4.7). At most one non-archived record exists per document
// id; CorpusVersion increases on every insert or purge.
type Store struct {
	mu      sync.RWMutex
	history map[string][]*NormalizedDocument // insertion order, oldest first
	order   []string                         // id insertion order, for stable List()
	version int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{history: make(map[string][]*NormalizedDocument)}
}

// Version returns the current CorpusVersion.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Insert appends doc. If a non-archived record with the same id
// already exists, it is archived first. CorpusVersion increases by
// exactly one regardless of whether a predecessor was archived.
func (s *Store) Insert(doc *NormalizedDocument) (int64, error) {
	if doc == nil || doc.ID == "" {
		return 0, fmt.Errorf("docstore: cannot insert document with empty id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.history[doc.ID]
	if len(existing) > 0 {
		last := existing[len(existing)-1]
		if !last.Archived {
			now := time.Now().UTC()
			last.Archived = true
			last.ArchivedAt = &now
		}
	} else {
		s.order = append(s.order, doc.ID)
	}
	doc.Archived = false
	doc.ArchivedAt = nil
	s.history[doc.ID] = append(existing, doc)
	s.version++
	return s.version, nil
}

// Get returns the current non-archived record for id, if any.
func (s *Store) Get(id string) (*NormalizedDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hist := s.history[id]
	if len(hist) == 0 {
		return nil, false
	}
	last := hist[len(hist)-1]
	if last.Archived {
		return nil, false
	}
	return last, true
}

// List returns every current non-archived record, in insertion order
// of first appearance. Archived records are excluded (spec §9 open
// question: archived records are not searchable).
func (s *Store) List() []*NormalizedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*NormalizedDocument, 0, len(s.order))
	for _, id := range s.order {
		hist := s.history[id]
		if len(hist) == 0 {
			continue
		}
		last := hist[len(hist)-1]
		if !last.Archived {
			out = append(out, last)
		}
	}
	return out
}

// ListAll returns every record, including archived predecessors, in
// (id, then insertion order) groupings — used only for persistence.
func (s *Store) ListAll() []*NormalizedDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*NormalizedDocument
	for _, id := range s.order {
		out = append(out, s.history[id]...)
	}
	return out
}

// Purge physically removes id's entire history (current record plus
// all archived predecessors) and bumps CorpusVersion. Purging an
// unknown id is a no-op that still bumps the version, matching the
// spec's "deleted only via explicit purge" lifecycle.
func (s *Store) Purge(id string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.history[id]; ok {
		delete(s.history, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.version++
	return s.version
}

// replaceAll atomically resets the store contents, used by snapshot
// loading. Not part of the public append-only API.
func (s *Store) replaceAll(docs []*NormalizedDocument, version int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = make(map[string][]*NormalizedDocument)
	s.order = nil
	for _, d := range docs {
		if _, ok := s.history[d.ID]; !ok {
			s.order = append(s.order, d.ID)
		}
		s.history[d.ID] = append(s.history[d.ID], d)
	}
	s.version = version
}
