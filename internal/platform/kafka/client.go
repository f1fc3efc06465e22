package kafka

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"storefront/internal/platform/config"
)

// Client wraps a franz-go producer used by the event journal.
// Returns nil if no brokers are configured (journal disabled).
type Client struct {
	kgo *kgo.Client
}

// New connects to the configured brokers and ensures the journal topic exists.
func New(ctx context.Context, cfg config.Kafka) (*Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, cfg.Topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Client{kgo: client}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	topics, err := adm.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	if topics.Has(topic) {
		return nil
	}
	// Defaults (-1) inherit the broker's partition and replication settings.
	if _, err := adm.CreateTopic(ctx, -1, -1, nil, topic); err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}

// Produce sends one record and invokes done when the broker acks or fails it.
func (c *Client) Produce(ctx context.Context, key, value []byte, done func(error)) {
	record := &kgo.Record{Key: key, Value: value}
	c.kgo.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if done != nil {
			done(err)
		}
	})
}

// Flush drains in-flight records. Used during shutdown.
func (c *Client) Flush(ctx context.Context) error {
	return c.kgo.Flush(ctx)
}

// Close releases the underlying client.
func (c *Client) Close() {
	c.kgo.Close()
}
