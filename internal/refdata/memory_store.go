package refdata

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]BlacklistEntry
	trusted map[string]struct{}
}

// NewMemoryStore creates an in-memory reference data store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]BlacklistEntry),
		trusted: make(map[string]struct{}),
	}
}

func (s *MemoryStore) UpsertEntry(ctx context.Context, e *BlacklistEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[strings.ToLower(e.Identifier)] = *e
	return nil
}

func (s *MemoryStore) GetEntry(ctx context.Context, identifier string) (*BlacklistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[strings.ToLower(identifier)]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return &e, nil
}

func (s *MemoryStore) ListEntries(ctx context.Context) ([]BlacklistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BlacklistEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

func (s *MemoryStore) AddTrusted(ctx context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trusted[strings.ToLower(strings.TrimSpace(identifier))] = struct{}{}
	return nil
}

func (s *MemoryStore) ListTrusted(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.trusted))
	for t := range s.trusted {
		out = append(out, t)
	}
	return out, nil
}
