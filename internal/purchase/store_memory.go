package purchase

import (
	"context"
	"sort"
	"sync"

	"storefront/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	purchases map[string]Purchase
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{purchases: make(map[string]Purchase)}
}

func (s *InMemoryStore) List(_ context.Context) ([]Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseID < out[j].PurchaseID })
	return out, nil
}

func (s *InMemoryStore) Create(_ context.Context, purchases []Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range purchases {
		if _, exists := s.purchases[p.PurchaseID]; exists {
			return sentinel.ErrConflict
		}
	}
	for _, p := range purchases {
		s.purchases[p.PurchaseID] = p
	}
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, p Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.purchases[p.PurchaseID]; !exists {
		return sentinel.ErrNotFound
	}
	s.purchases[p.PurchaseID] = p
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, purchaseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.purchases[purchaseID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.purchases, purchaseID)
	return nil
}
