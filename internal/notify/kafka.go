package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher ships notification events to a broker topic so delivery can
// run in a separate consumer. Produce is asynchronous; errors land in the
// promise and are logged, keeping the publish path fire-and-forget.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	log    *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopics(context.Background(), 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure topic %s: %w", topic, err)
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, fmt.Errorf("ensure topic %s: %w", topic, res.Err)
		}
	}

	return &KafkaPublisher{client: client, topic: topic, log: log}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	record := &kgo.Record{Topic: p.topic, Key: []byte(ev.OrgID), Value: value}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.log.Warn("notification publish failed", "org", ev.OrgID, "error", err)
		}
	})
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.client.Close()
	return nil
}
