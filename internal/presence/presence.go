// Package presence tracks which shoppers currently have a live session. It
// feeds the admin dashboard's active-user count and is deliberately lossy:
// entries expire on TTL rather than requiring explicit sign-off.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "presence:"

// Status represents shopper online/offline state.
type Status struct {
	IsOnline   bool
	LastSeenAt string
}

// Service stores presence in Redis when a client is provided, otherwise in
// process memory. Constructed once at startup and passed by handle; no
// package-level state.
type Service struct {
	redis *redis.Client
	ttl   time.Duration

	mu    sync.RWMutex
	store map[string]entry
}

type entry struct {
	lastSeen time.Time
}

// New builds a presence service. client may be nil for the in-memory backend.
func New(client *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Service{
		redis: client,
		ttl:   ttl,
		store: make(map[string]entry),
	}
}

// Set marks a shopper online or offline and returns the stored status.
func (s *Service) Set(ctx context.Context, shopperID string, online bool, at time.Time) Status {
	if s.redis != nil {
		key := keyPrefix + shopperID
		if !online {
			_ = s.redis.Del(ctx, key).Err()
			return Status{}
		}
		ts := at.UTC().Format(time.RFC3339)
		_ = s.redis.Set(ctx, key, ts, s.ttl).Err()
		return Status{IsOnline: true, LastSeenAt: ts}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !online {
		delete(s.store, shopperID)
		return Status{}
	}
	s.store[shopperID] = entry{lastSeen: at}
	return Status{IsOnline: true, LastSeenAt: at.UTC().Format(time.RFC3339)}
}

// Get returns the stored status for a shopper.
func (s *Service) Get(ctx context.Context, shopperID string) (Status, bool) {
	if s.redis != nil {
		val, err := s.redis.Get(ctx, keyPrefix+shopperID).Result()
		if err != nil {
			return Status{}, false
		}
		return Status{IsOnline: true, LastSeenAt: val}, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.store[shopperID]
	if !ok || time.Since(e.lastSeen) > s.ttl {
		return Status{}, false
	}
	return Status{IsOnline: true, LastSeenAt: e.lastSeen.UTC().Format(time.RFC3339)}, true
}

// Count returns the number of shoppers currently considered online.
func (s *Service) Count(ctx context.Context) int {
	if s.redis != nil {
		var total int
		var cursor uint64
		for {
			keys, next, err := s.redis.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
			if err != nil {
				return total
			}
			total += len(keys)
			if next == 0 {
				return total
			}
			cursor = next
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.store {
		if time.Since(e.lastSeen) <= s.ttl {
			n++
		}
	}
	return n
}
