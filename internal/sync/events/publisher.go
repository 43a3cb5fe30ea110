// Package events publishes synchronization outcomes to Kafka so that
// downstream screening systems can react to list updates.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"sanctionwatch/internal/sync/models"
)

// Publisher emits one record per completed synchronization run.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// New connects to the given brokers and ensures the outcome topic
// exists. A single partition keeps outcomes totally ordered.
func New(ctx context.Context, brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("ensure topic %q: %w", topic, err)
	}

	return &Publisher{client: client, topic: topic}, nil
}

// PublishOutcome emits a sync outcome keyed by source, so consumers
// can compact per list.
func (p *Publisher) PublishOutcome(ctx context.Context, entry models.HistoryEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal sync outcome: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(entry.Source),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce sync outcome: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}
