package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/artpar/mailcraft/domain/export"
	"github.com/artpar/mailcraft/ports"
)

// ExportStore is an in-memory implementation of ports.ExportArchive.
type ExportStore struct {
	mu      sync.RWMutex
	records []export.Record // insertion order
	byID    map[string]int
}

// NewExportStore creates a new in-memory export store.
func NewExportStore() *ExportStore {
	return &ExportStore{byID: make(map[string]int)}
}

// Save stores a new export record.
func (s *ExportStore) Save(ctx context.Context, rec export.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[rec.ID]; exists {
		return errors.New("export already exists")
	}
	s.byID[rec.ID] = len(s.records)
	s.records = append(s.records, copyRecord(rec))
	return nil
}

// Get retrieves an export by ID.
func (s *ExportStore) Get(ctx context.Context, id string) (export.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return export.Record{}, ErrNotFound
	}
	return copyRecord(s.records[i]), nil
}

// ListByDocument returns a document's exports, newest first.
func (s *ExportStore) ListByDocument(ctx context.Context, documentID string, limit int) ([]export.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.newestFirst(documentID)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Latest returns the newest export of a document.
func (s *ExportStore) Latest(ctx context.Context, documentID string) (export.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.newestFirst(documentID)
	if len(out) == 0 {
		return export.Record{}, ErrNotFound
	}
	return out[0], nil
}

// Count returns the number of exports archived for a document.
func (s *ExportStore) Count(ctx context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.records {
		if r.DocumentID == documentID {
			n++
		}
	}
	return n, nil
}

// newestFirst orders by CreatedAt descending, later inserts first on ties.
func (s *ExportStore) newestFirst(documentID string) []export.Record {
	var out []export.Record
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].DocumentID == documentID {
			out = append(out, copyRecord(s.records[i]))
		}
	}
	slices.SortStableFunc(out, func(a, b export.Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func copyRecord(r export.Record) export.Record {
	r.MalformedColors = slices.Clone(r.MalformedColors)
	r.Skipped = slices.Clone(r.Skipped)
	return r
}

// Ensure interface compliance.
var _ ports.ExportArchive = (*ExportStore)(nil)
