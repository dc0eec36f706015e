package store

import (
	"context"
	"sort"
	"sync"

	"github.com/dkeye/flightrelay/internal/domain"
)

// MemoryStore keeps records for the process lifetime only.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[domain.SessionKey]domain.Credentials
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[domain.SessionKey]domain.Credentials)}
}

func (s *MemoryStore) Put(_ context.Context, c domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[c.UniqueID] = c
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key domain.SessionKey) (domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.records[key]
	if !ok {
		return domain.Credentials{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) List(_ context.Context) ([]domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRecords(s.records), nil
}

func (s *MemoryStore) Close() error { return nil }

func sortedRecords(m map[domain.SessionKey]domain.Credentials) []domain.Credentials {
	out := make([]domain.Credentials, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UniqueID < out[j].UniqueID })
	return out
}
