package hooks

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaDispatcher implements Dispatcher using segmentio/kafka-go.
type KafkaDispatcher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaDispatcher creates a dispatcher that publishes hook events to the given topic.
// Returns (nil, nil) when brokers or topic are unset so hook publishing is simply disabled.
// Call Close when shutting down.
func NewKafkaDispatcher(brokers []string, topic string) (*KafkaDispatcher, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaDispatcher{writer: writer, topic: topic}, nil
}

// Fire serializes the event as JSON and writes it to the Kafka topic.
// Uses the given context with a short timeout so a slow broker does not block callers indefinitely.
func (d *KafkaDispatcher) Fire(ctx context.Context, event Event) error {
	if d == nil || d.writer == nil {
		return nil
	}
	value, err := Marshal(event)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return d.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.Name),
		Value: value,
	})
}

// Close flushes and closes the underlying Kafka writer.
func (d *KafkaDispatcher) Close() error {
	if d == nil || d.writer == nil {
		return nil
	}
	return d.writer.Close()
}
