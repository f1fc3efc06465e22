package catalog

import (
	"context"
	"sort"
	"sync"

	"storefront/pkg/platform/sentinel"
)

// InMemoryStore keeps the development and test setup lightweight. It
// intentionally favors clarity over performance.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[int64]Product
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{products: make(map[int64]Product)}
}

func (s *InMemoryStore) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) Create(_ context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[p.ID]; exists {
		return sentinel.ErrConflict
	}
	s.products[p.ID] = p
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[p.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.products[p.ID] = p
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[id]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.products, id)
	return nil
}
