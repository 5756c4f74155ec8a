package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"himachal-market/internal/domain"

	"github.com/segmentio/kafka-go"
)

// Publisher announces committed orders to downstream consumers
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, traceID string, order *domain.Order) error
	Close() error
}

// messageWriter is the slice of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a single topic keyed by order id, so all
// events of one order land on the same partition
type KafkaPublisher struct {
	w        messageWriter
	producer string
}

// NewKafkaPublisher creates a publisher writing to topic on the given brokers
func NewKafkaPublisher(brokers []string, topic, producer string) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}, producer)
}

func newKafkaPublisher(w messageWriter, producer string) *KafkaPublisher {
	return &KafkaPublisher{w: w, producer: producer}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, traceID string, order *domain.Order) error {
	ev, err := NewOrderPlaced(p.producer, traceID, order)
	if err != nil {
		return err
	}

	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(ev.EventType)},
			{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
		},
	}

	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", ev.EventType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, string, *domain.Order) error { return nil }

func (NopPublisher) Close() error { return nil }
