//go:build integration

package journal_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"storefront/internal/platform/config"
	"storefront/internal/platform/kafka"
	"storefront/internal/realtime"
	"storefront/internal/realtime/journal"
	"storefront/pkg/testutil/containers"
)

func TestJournalWritesToRedpanda(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	broker := containers.NewRedpandaContainer(t)
	topic := "storefront.events"

	producer, err := kafka.New(ctx, config.Kafka{Brokers: []string{broker.Broker}, Topic: topic})
	require.NoError(t, err)
	t.Cleanup(producer.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	j := journal.New(log, nil, producer, 16)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		_ = j.Run(runCtx)
		close(done)
	}()

	j.Append(realtime.Envelope{
		Kind:      realtime.KindPurchaseCreated,
		Payload:   json.RawMessage(`{"purchaseId":"p-1"}`),
		Scope:     realtime.ToAdmins(),
		EmittedAt: time.Now(),
	})

	flushCtx, flushCancel := context.WithTimeout(ctx, 10*time.Second)
	defer flushCancel()
	require.Eventually(t, func() bool {
		return producer.Flush(flushCtx) == nil
	}, 10*time.Second, 200*time.Millisecond)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	pollCtx, pollCancel := context.WithTimeout(ctx, 15*time.Second)
	defer pollCancel()
	fetches := consumer.PollFetches(pollCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.NotEmpty(t, records)
	require.Equal(t, "purchase-created", string(records[0].Key))

	var rec struct {
		Type  string `json:"type"`
		Scope string `json:"scope"`
	}
	require.NoError(t, json.Unmarshal(records[0].Value, &rec))
	require.Equal(t, "purchase-created", rec.Type)
	require.Equal(t, "admin-room", rec.Scope)

	cancel()
	<-done
}
