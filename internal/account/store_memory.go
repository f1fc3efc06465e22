package account

import (
	"context"
	"sort"
	"sync"

	"storefront/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	users  map[string]User
	emails map[string]string // email → user id
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:  make(map[string]User),
		emails: make(map[string]string),
	}
}

func (s *InMemoryStore) List(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryStore) Create(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emails[u.Email]; taken {
		return sentinel.ErrConflict
	}
	if _, exists := s.users[u.ID]; exists {
		return sentinel.ErrConflict
	}
	s.users[u.ID] = u
	s.emails[u.Email] = u.ID
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, exists := s.users[u.ID]
	if !exists {
		return sentinel.ErrNotFound
	}
	if u.Email != prev.Email {
		if _, taken := s.emails[u.Email]; taken {
			return sentinel.ErrConflict
		}
		delete(s.emails, prev.Email)
		s.emails[u.Email] = u.ID
	}
	if u.PasswordHash == "" {
		u.PasswordHash = prev.PasswordHash
	}
	s.users[u.ID] = u
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.users[id]
	if !exists {
		return sentinel.ErrNotFound
	}
	delete(s.users, id)
	delete(s.emails, u.Email)
	return nil
}
