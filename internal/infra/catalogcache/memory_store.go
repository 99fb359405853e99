package catalogcache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/ai-tarot/internal/domain/reading"
)

// MemoryStore keeps the catalog in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	cards     []reading.Card
	expiresAt time.Time
	present   bool
}

// NewMemoryStore constructs an empty cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetCatalog implements reading.CatalogCache.
func (s *MemoryStore) GetCatalog(_ context.Context) ([]reading.Card, bool, error) {
	s.mu.RLock()
	cards, present, exp := s.cards, s.present, s.expiresAt
	s.mu.RUnlock()
	if !present {
		return nil, false, nil
	}
	if hasExpired(exp) {
		s.mu.Lock()
		s.cards, s.present = nil, false
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]reading.Card(nil), cards...), true, nil
}

// SaveCatalog stores cards with an optional TTL.
func (s *MemoryStore) SaveCatalog(_ context.Context, cards []reading.Card, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.cards = append([]reading.Card(nil), cards...)
	s.expiresAt = exp
	s.present = true
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ reading.CatalogCache = (*MemoryStore)(nil)
