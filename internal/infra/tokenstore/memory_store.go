package tokenstore

import (
	"context"
	"sync"

	"github.com/yanqian/ai-tarot/internal/domain/account"
)

// MemoryStore forgets the token when the process exits.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != "", nil
}

func (s *MemoryStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

var _ account.TokenStore = (*MemoryStore)(nil)
