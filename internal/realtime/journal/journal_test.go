package journal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/realtime"
)

type fakeProducer struct {
	records chan []byte
	err     error
}

func (f *fakeProducer) Produce(_ context.Context, _, value []byte, done func(error)) {
	f.records <- value
	done(f.err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJournalAppendsEnvelopeAsRecord(t *testing.T) {
	producer := &fakeProducer{records: make(chan []byte, 1)}
	j := New(discardLogger(), nil, producer, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = j.Run(ctx)
		close(done)
	}()

	emitted := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	j.Append(realtime.Envelope{
		Kind:      realtime.KindPurchaseCreated,
		Payload:   json.RawMessage(`{"purchaseId":"p-1"}`),
		Scope:     realtime.ToAdmins(),
		EmittedAt: emitted,
	})

	select {
	case raw := <-producer.records:
		var rec struct {
			ID        string          `json:"id"`
			Type      string          `json:"type"`
			Scope     string          `json:"scope"`
			Payload   json.RawMessage `json:"payload"`
			EmittedAt string          `json:"emittedAt"`
		}
		require.NoError(t, json.Unmarshal(raw, &rec))
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, "purchase-created", rec.Type)
		assert.Equal(t, "admin-room", rec.Scope)
		assert.JSONEq(t, `{"purchaseId":"p-1"}`, string(rec.Payload))
		assert.Equal(t, emitted.Format(time.RFC3339Nano), rec.EmittedAt)
	case <-time.After(2 * time.Second):
		t.Fatal("no record produced")
	}

	cancel()
	<-done
}

func TestJournalDrainsBufferOnShutdown(t *testing.T) {
	producer := &fakeProducer{records: make(chan []byte, 8)}
	j := New(discardLogger(), nil, producer, 8)

	for i := 0; i < 3; i++ {
		j.Append(realtime.Envelope{
			Kind:      realtime.KindUserActivity,
			Payload:   json.RawMessage(`{"type":"login"}`),
			Scope:     realtime.ToAdmins(),
			EmittedAt: time.Now(),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := j.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, producer.records, 3)
}

func TestJournalDropsWhenBufferFull(t *testing.T) {
	// no consumer running, capacity 1
	producer := &fakeProducer{records: make(chan []byte, 1)}
	j := New(discardLogger(), nil, producer, 1)

	env := realtime.Envelope{Kind: realtime.KindCartUpdated, Payload: json.RawMessage(`{}`), EmittedAt: time.Now()}
	j.Append(env)
	j.Append(env) // exceeds capacity, silently dropped

	assert.Len(t, j.buffer, 1)
}
