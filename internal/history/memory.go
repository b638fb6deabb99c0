package history

import (
	"sort"
	"sync"

	"github.com/Iron-Ham/adaptui/internal/errors"
)

// MemoryStore is an in-process Store used when no journal file is
// configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	closed  bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Put stores r, replacing any record with the same ID.
func (s *MemoryStore) Put(r Record) error {
	if r.ID == "" {
		return errors.NewValidationError("record id is required").WithField("id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrHistoryClosed
	}
	s.records[r.ID] = r
	return nil
}

// Get returns the record with id.
func (s *MemoryStore) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Record{}, errors.ErrHistoryClosed
	}
	r, ok := s.records[id]
	if !ok {
		return Record{}, errors.NewNotFoundError("adaptation", id).WithCause(errors.ErrRecordNotFound)
	}
	return r, nil
}

// List returns up to limit records, newest first.
func (s *MemoryStore) List(limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.ErrHistoryClosed
	}

	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].AppliedAt.After(out[j].AppliedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, errors.ErrHistoryClosed
	}
	return len(s.records), nil
}

// Close marks the store closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
