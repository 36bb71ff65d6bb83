package risk

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu       sync.RWMutex
	verdicts map[string][]*Verdict // lowercased identifier → verdicts
}

// NewMemoryStore creates an in-memory verdict store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{verdicts: make(map[string][]*Verdict)}
}

func (s *MemoryStore) Record(ctx context.Context, v *Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *v
	stored.Reasons = append([]string(nil), v.Reasons...)
	key := strings.ToLower(v.Identifier)
	s.verdicts[key] = append(s.verdicts[key], &stored)
	return nil
}

func (s *MemoryStore) ListByIdentifier(ctx context.Context, identifier string, limit int, opts ...ListOption) ([]*Verdict, error) {
	o := applyListOpts(opts)

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.verdicts[strings.ToLower(identifier)]
	if len(all) == 0 {
		return nil, nil
	}

	// Most recent first, resuming after the cursor when one is set.
	var out []*Verdict
	for i := len(all) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if o.cursor != nil && !all[i].EvaluatedAt.Before(o.cursor.CreatedAt) {
			continue
		}
		v := *all[i]
		v.Reasons = append([]string(nil), all[i].Reasons...)
		out = append(out, &v)
	}
	return out, nil
}

func (s *MemoryStore) CountByLevel(ctx context.Context) (map[Level]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Level]int)
	for _, vs := range s.verdicts {
		for _, v := range vs {
			counts[v.Level]++
		}
	}
	return counts, nil
}
