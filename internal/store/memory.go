package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"weathersuggest/internal/suggest"
)

// MemoryStore is a concurrency-safe in-memory implementation of
// suggest.Store, used by tests. The sqlite store is the durable one.
type MemoryStore struct {
	mu           sync.RWMutex
	records      []suggest.SuggestionRecord
	nextID       int64
	defaultLimit int
	maxLimit     int
}

// NewMemoryStore creates a MemoryStore with the same limit semantics as
// the sqlite store.
func NewMemoryStore(defaultLimit, maxLimit int) *MemoryStore {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit <= 0 {
		maxLimit = 200
	}
	return &MemoryStore{nextID: 1, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

func (s *MemoryStore) Append(_ context.Context, rec suggest.SuggestionRecord) (suggest.SuggestionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	s.nextID++
	rec.CreatedAt = time.Now().UTC()
	rec.OrderID = ""
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *MemoryStore) ListRecent(_ context.Context, limit int) ([]suggest.SuggestionRecord, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]suggest.SuggestionRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *MemoryStore) FindLatestByCity(_ context.Context, city string) (suggest.SuggestionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].City == city {
			return s.records[i], nil
		}
	}
	return suggest.SuggestionRecord{}, fmt.Errorf("%w: no records for city %q", suggest.ErrNotFound, city)
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (suggest.SuggestionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.findLocked(id); ok {
		return rec, nil
	}
	return suggest.SuggestionRecord{}, fmt.Errorf("%w: record %d", suggest.ErrNotFound, id)
}

func (s *MemoryStore) AttachOrder(_ context.Context, id int64, orderID string) (suggest.SuggestionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].OrderID = orderID
			return s.records[i], nil
		}
	}
	return suggest.SuggestionRecord{}, fmt.Errorf("%w: record %d", suggest.ErrNotFound, id)
}

func (s *MemoryStore) findLocked(id int64) (suggest.SuggestionRecord, bool) {
	for i := range s.records {
		if s.records[i].ID == id {
			return s.records[i], true
		}
	}
	return suggest.SuggestionRecord{}, false
}
