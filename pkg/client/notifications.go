package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Severity classifies a notification for rendering.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDefault Severity = "default"
)

// NotificationTTL is the fixed display lifetime of a notification.
const NotificationTTL = 5 * time.Second

// Notification is the client-local projection of a received event. Seq is
// assigned at insertion and is the eviction key: removing by identity rather
// than value equality keeps two structurally identical events from evicting
// each other.
type Notification struct {
	Seq        uint64
	Severity   Severity
	Message    string
	ReceivedAt time.Time
}

// NotificationStore is a per-client queue of inbound notifications with timed
// expiry. Each entry schedules its own removal; ClearAll is the only (soft)
// cancellation, and a stale timer firing later is a no-op.
type NotificationStore struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	seq   uint64
	items []Notification
}

// StoreOption configures a NotificationStore.
type StoreOption func(*NotificationStore)

// WithTTL overrides the display lifetime. Used by tests; production keeps the
// 5 second default.
func WithTTL(d time.Duration) StoreOption {
	return func(s *NotificationStore) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *NotificationStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewNotificationStore(opts ...StoreOption) *NotificationStore {
	s := &NotificationStore{
		ttl: NotificationTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnEvent ingests one inbound frame, mapping the wire event to a message and
// severity. Unknown events still surface, with default severity.
func (s *NotificationStore) OnEvent(event string, data json.RawMessage) {
	severity, message := describe(event, data)
	s.Add(severity, message)
}

// Add appends a notification and schedules its removal after the TTL.
func (s *NotificationStore) Add(severity Severity, message string) Notification {
	s.mu.Lock()
	s.seq++
	n := Notification{
		Seq:        s.seq,
		Severity:   severity,
		Message:    message,
		ReceivedAt: s.now(),
	}
	s.items = append(s.items, n)
	s.mu.Unlock()

	time.AfterFunc(s.ttl, func() { s.evict(n.Seq) })
	return n
}

// evict removes the notification with the given sequence number. Idempotent:
// evicting an entry that was already cleared is silently a no-op and can never
// touch a different entry.
func (s *NotificationStore) evict(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.items {
		if n.Seq == seq {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// ClearAll empties the queue immediately. Timers already scheduled for the
// cleared entries fire against sequence numbers that no longer exist.
func (s *NotificationStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Notifications returns the currently visible queue contents. Entries past
// their TTL are filtered out even if their removal timer has not fired yet,
// so nothing outside the display window is ever observably rendered.
func (s *NotificationStore) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make([]Notification, 0, len(s.items))
	for _, n := range s.items {
		if !n.ReceivedAt.After(now) && now.Before(n.ReceivedAt.Add(s.ttl)) {
			out = append(out, n)
		}
	}
	return out
}

// Len reports the visible queue length.
func (s *NotificationStore) Len() int {
	return len(s.Notifications())
}

// describe maps a server event to its rendered message and severity. Payloads
// arrive unvalidated; missing fields degrade to generic wording rather than
// failing.
func describe(event string, data json.RawMessage) (Severity, string) {
	switch event {
	case "new-product":
		return SeveritySuccess, fmt.Sprintf("New product added: %s", field(data, "title"))
	case "product-updated":
		return SeverityInfo, fmt.Sprintf("Product updated: %s", field(data, "title"))
	case "product-deleted":
		var id any
		_ = json.Unmarshal(data, &id)
		return SeverityWarning, fmt.Sprintf("Product deleted: ID %v", id)
	case "new-purchase":
		return SeveritySuccess, fmt.Sprintf("New purchase: %s", field(data, "purchaseId"))
	case "cart-updated":
		return SeverityInfo, "Your cart has been updated"
	case "user-activity":
		return SeverityInfo, fmt.Sprintf("User activity: %s", field(data, "type"))
	default:
		return SeverityDefault, fmt.Sprintf("Event received: %s", event)
	}
}

func field(data json.RawMessage, name string) string {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return "(unknown)"
	}
	v, ok := obj[name]
	if !ok {
		return "(unknown)"
	}
	return fmt.Sprintf("%v", v)
}
