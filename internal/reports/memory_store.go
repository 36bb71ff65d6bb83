package reports

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]Report // by ID
}

// NewMemoryStore creates an in-memory report store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]Report)}
}

func (s *MemoryStore) Create(ctx context.Context, r *Report) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = *r
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return &r, nil
}

func (s *MemoryStore) ListByIdentifier(ctx context.Context, identifier string) ([]Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identifier = strings.ToLower(identifier)
	var out []Report
	for _, r := range s.reports {
		if r.Identifier == identifier {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkVerified(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	r.Verified = true
	s.reports[id] = r
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports), nil
}
