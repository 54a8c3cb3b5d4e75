// Package kafka publishes domain events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"kycore/internal/platform/config"
	"kycore/pkg/ddd"
	"kycore/pkg/requestcontext"
)

// recordProducer is the part of *kgo.Client the sink needs.
type recordProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Envelope is the JSON value of every published record.
type Envelope struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	AggregateID string          `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	ContextID   string          `json:"context_id,omitempty"`
	Payload     json.RawMessage `json:"payload"`
}

// EventSink is an events.Handler that writes each event to one topic, keyed by
// aggregate id so that the events of an aggregate stay ordered.
type EventSink struct {
	producer recordProducer
	topic    string
}

func NewEventSink(producer recordProducer, topic string) *EventSink {
	return &EventSink{producer: producer, topic: topic}
}

// NewClient creates a franz-go client for cfg. Returns nil when no brokers are
// configured.
func NewClient(cfg config.KafkaConfig) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// Handle publishes event and waits for the broker acknowledgement.
func (s *EventSink) Handle(ctx context.Context, event ddd.Event) error {
	record, err := s.record(ctx, event)
	if err != nil {
		return err
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s: %w", event.Kind(), err)
	}
	return nil
}

func (s *EventSink) record(ctx context.Context, event ddd.Event) (*kgo.Record, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event.Kind(), err)
	}
	contextID, _ := requestcontext.ID(ctx)
	envelope := Envelope{
		ID:          uuid.NewString(),
		Kind:        event.Kind().String(),
		AggregateID: event.AggregateID().String(),
		OccurredAt:  event.OccurredAt().Time(),
		ContextID:   contextID,
		Payload:     payload,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return &kgo.Record{
		Topic: s.topic,
		Key:   []byte(envelope.AggregateID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(envelope.Kind)},
		},
	}, nil
}
