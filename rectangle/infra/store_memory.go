package infra

import (
	"context"
	"sync"

	"rectangle-service/rectangle/domain"
)

// MemoryStore guarda o retângulo apenas em memória.
// O valor some quando o processo termina.
type MemoryStore struct {
	mu  sync.RWMutex
	cur domain.Dimensions
}

func NewMemoryStore(initial domain.Dimensions) *MemoryStore {
	return &MemoryStore{cur: initial}
}

func (s *MemoryStore) Get(context.Context) (domain.Dimensions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur, nil
}

func (s *MemoryStore) Set(_ context.Context, d domain.Dimensions) error {
	s.mu.Lock()
	s.cur = d
	s.mu.Unlock()
	return nil
}
