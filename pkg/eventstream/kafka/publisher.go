// Package kafka publishes pipeline events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/eventstream"
)

// DefaultTopic is the topic events are written to when none is configured.
const DefaultTopic = "folio.events"

// Publisher writes events to Kafka. Messages are keyed by document id
// so events for one document stay ordered within a partition.
type Publisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string

	// Topic is the destination topic. Defaults to DefaultTopic if empty.
	Topic string
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(cfg Config, logger *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(cfg.Brokers...),
		Topic:    topic,
		Balancer: &kafkago.Hash{},
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}, nil
}

// Publish writes the event to the configured topic.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.Event) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event %s: %w", event.EventID, err)
	}

	msg := kafkago.Message{
		Key:   []byte(messageKey(event)),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing event %s: %w", event.EventID, err)
	}

	p.logger.Debug("published event",
		zap.String("event_type", event.EventType),
		zap.String("event_id", event.EventID),
	)

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func messageKey(event *eventstream.Event) string {
	switch {
	case event.DocumentIndexed != nil:
		return event.DocumentIndexed.DocumentID
	case event.QuestionAnswered != nil:
		return event.QuestionAnswered.DocumentID
	default:
		return event.EventID
	}
}

// Ensure Publisher implements eventstream.Publisher
var _ eventstream.Publisher = (*Publisher)(nil)
