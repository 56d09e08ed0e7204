package session

import (
	"context"
	"sync"

	"github.com/nkiryanov/streamcat/internal/client/models"
)

// MemoryStore is an in-memory Store with the same semantics as BoltStore.
// Used by tests and for sessions that should not survive the process
// (remember-me declined on platforms without protected storage).
type MemoryStore struct {
	mu   sync.RWMutex
	data *Data
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Write(ctx context.Context, data Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *data.User
	s.data = &Data{Token: data.Token, User: &u, RememberMe: data.RememberMe}
	return nil
}

func (s *MemoryStore) Read(ctx context.Context) (*Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, nil
	}
	u := *s.data.User
	return &Data{Token: s.data.Token, User: &u, RememberMe: s.data.RememberMe}, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return ErrNoSession
	}
	u := *user
	s.data.User = &u
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

func (s *MemoryStore) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return "", nil
	}
	return s.data.Token, nil
}
