package history

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/glorin2500/Sentinel-sub000/internal/idgen"
)

var timeNow = time.Now

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu  sync.RWMutex
	txs []Transaction
}

// NewMemoryStore creates an in-memory scan history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(ctx context.Context, tx *Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *tx
	if stored.ID == "" {
		stored.ID = idgen.WithPrefix("hist_")
	}
	stored.Identifier = strings.ToLower(stored.Identifier)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = timeNow()
	}
	s.txs = append(s.txs, stored)
	tx.ID = stored.ID
	return nil
}

func (s *MemoryStore) ListForScan(ctx context.Context, userID, identifier string, limit int) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identifier = strings.ToLower(identifier)

	var out []Transaction
	for _, tx := range s.txs {
		if (userID != "" && tx.UserID == userID) ||
			(identifier != "" && tx.Identifier == identifier) {
			out = append(out, tx)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TimestampMillis > out[j].TimestampMillis
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs), nil
}
