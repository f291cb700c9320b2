// Package kafka provides a Kafka-backed eventstream publisher.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/mnemo/pkg/eventstream"
)

const (
	// DefaultTopic is the default Kafka topic for document events.
	DefaultTopic = "mnemo.documents"
)

// Publisher publishes document events to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// Config holds configuration for the Kafka publisher.
type Config struct {
	// Brokers is the list of Kafka broker addresses. Required.
	Brokers []string

	// Topic is the topic to publish to. Defaults to DefaultTopic.
	Topic string
}

// NewPublisher creates a Kafka publisher for document events.
func NewPublisher(c Config, logger *slog.Logger) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	if c.Topic == "" {
		c.Topic = DefaultTopic
	}

	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(c.Brokers...),
		Topic:    c.Topic,
		Balancer: &kafkago.Hash{},
	}

	logger.Info("kafka publisher initialized",
		"brokers", c.Brokers,
		"topic", c.Topic,
	)

	return &Publisher{
		writer: writer,
		logger: logger,
	}, nil
}

// PublishDocument writes the event to the topic, keyed by document ID so
// events for one document stay ordered within a partition.
func (p *Publisher) PublishDocument(ctx context.Context, event *eventstream.DocumentEvent) error {
	if event == nil {
		return eventstream.ErrNilDocumentEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling document event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.DocumentID),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing document event: %w", err)
	}

	p.logger.Debug("published document event",
		"event_type", event.EventType,
		"document_id", event.DocumentID,
	)

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Ensure Publisher implements eventstream.Publisher
var _ eventstream.Publisher = (*Publisher)(nil)
