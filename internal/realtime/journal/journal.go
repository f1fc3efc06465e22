// Package journal provides an optional, best-effort Kafka egress of published
// envelopes for downstream consumers (analytics, audit). It is never a
// delivery path back to clients: the in-process hub remains the only fan-out.
package journal

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"storefront/internal/platform/metrics"
	"storefront/internal/realtime"
)

// Producer is the outbound Kafka seam. done is invoked once the record is
// acked or failed.
type Producer interface {
	Produce(ctx context.Context, key, value []byte, done func(error))
}

// record is the JSON structure appended to the journal topic.
type record struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Scope     string          `json:"scope"`
	Payload   json.RawMessage `json:"payload"`
	EmittedAt string          `json:"emittedAt"`
}

// Journal buffers envelopes and writes them to Kafka from its own goroutine,
// so the hub loop never waits on a broker. A full buffer drops the envelope:
// the journal inherits the bus's best-effort semantics.
type Journal struct {
	log      *slog.Logger
	metrics  *metrics.Metrics
	producer Producer
	buffer   chan realtime.Envelope
}

// New builds a journal with the given buffer capacity.
func New(log *slog.Logger, m *metrics.Metrics, producer Producer, buffer int) *Journal {
	if buffer <= 0 {
		buffer = 256
	}
	return &Journal{
		log:      log,
		metrics:  m,
		producer: producer,
		buffer:   make(chan realtime.Envelope, buffer),
	}
}

// Append enqueues an envelope without blocking. Called from the hub loop.
func (j *Journal) Append(env realtime.Envelope) {
	select {
	case j.buffer <- env:
	default:
		if j.metrics != nil {
			j.metrics.JournalDrops.Inc()
		}
	}
}

// Run consumes the buffer until ctx is cancelled, then drains whatever is
// already enqueued before returning.
func (j *Journal) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			j.drain()
			return ctx.Err()
		case env := <-j.buffer:
			j.append(ctx, env)
		}
	}
}

func (j *Journal) drain() {
	// Detached context: the run context is already cancelled but buffered
	// envelopes should still reach the broker during shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case env := <-j.buffer:
			j.append(ctx, env)
		default:
			return
		}
	}
}

func (j *Journal) append(ctx context.Context, env realtime.Envelope) {
	value, err := json.Marshal(record{
		ID:        uuid.NewString(),
		Type:      string(env.Kind),
		Scope:     env.Scope.String(),
		Payload:   env.Payload,
		EmittedAt: env.EmittedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		j.log.Warn("journal: drop unencodable envelope", "kind", env.Kind, "error", err)
		return
	}
	j.producer.Produce(ctx, []byte(env.Kind), value, func(err error) {
		if err != nil {
			j.log.Warn("journal: append failed", "kind", env.Kind, "error", err)
			return
		}
		if j.metrics != nil {
			j.metrics.JournalAppends.Inc()
		}
	})
}
