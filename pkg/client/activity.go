package client

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	defaultActivityInterval = 3 * time.Second
	recentActivityLimit     = 10
)

var activityKinds = []string{
	"browse_products",
	"view_cart",
	"add_to_cart",
	"checkout",
	"login",
	"logout",
}

// Activity is one simulated shopper action.
type Activity struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
}

// ActivityEmitter periodically emits simulated shopper activity over a live
// client connection and keeps a short local history of what it sent. It is
// entirely opt-in: construct one only when activity simulation is enabled.
type ActivityEmitter struct {
	client   *Client
	log      *slog.Logger
	interval time.Duration
	pick     func() string

	mu     sync.Mutex
	recent []Activity
}

// EmitterOption configures an ActivityEmitter.
type EmitterOption func(*ActivityEmitter)

// WithInterval overrides the emission cadence. Defaults to 3 seconds.
func WithInterval(d time.Duration) EmitterOption {
	return func(e *ActivityEmitter) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithPicker overrides activity kind selection. Used by tests.
func WithPicker(pick func() string) EmitterOption {
	return func(e *ActivityEmitter) {
		if pick != nil {
			e.pick = pick
		}
	}
}

func NewActivityEmitter(client *Client, log *slog.Logger, opts ...EmitterOption) *ActivityEmitter {
	if log == nil {
		log = slog.Default()
	}
	e := &ActivityEmitter{
		client:   client,
		log:      log,
		interval: defaultActivityInterval,
		pick: func() string {
			return activityKinds[rand.IntN(len(activityKinds))]
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run emits on every tick until the context is cancelled. Ticks that land
// while the connection is down are skipped, not queued.
func (e *ActivityEmitter) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.emitOnce()
		}
	}
}

func (e *ActivityEmitter) emitOnce() {
	if !e.client.IsConnected() {
		return
	}
	kind := e.pick()
	act := Activity{
		Type:      kind,
		Timestamp: time.Now(),
		Details:   "User performed: " + strings.ReplaceAll(kind, "_", " "),
	}
	if err := e.client.Emit("user-activity", act); err != nil {
		e.log.Debug("activity emit failed", "type", kind, "error", err)
		return
	}
	e.record(act)
}

func (e *ActivityEmitter) record(act Activity) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recent = append([]Activity{act}, e.recent...)
	if len(e.recent) > recentActivityLimit {
		e.recent = e.recent[:recentActivityLimit]
	}
}

// Recent returns the most recently emitted activities, newest first.
func (e *ActivityEmitter) Recent() []Activity {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Activity, len(e.recent))
	copy(out, e.recent)
	return out
}
