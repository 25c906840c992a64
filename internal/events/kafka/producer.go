package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/SatuKas/api/internal/events/models"
)

// Publisher emits auth events. The noop implementation backs deployments
// without Kafka.
type Publisher interface {
	Publish(ctx context.Context, event models.AuthEvent) error
	Close() error
}

// Producer publishes auth events to a single Kafka topic, keyed by user id.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer creates a Kafka producer for the given brokers and topic.
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return &Producer{
		writer: writer,
		logger: logger.Named("kafka_producer"),
	}
}

func (p *Producer) Publish(ctx context.Context, event models.AuthEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: value,
		Time:  event.OccurredAt,
	})
	if err != nil {
		p.logger.Error("Failed to write message to Kafka",
			zap.String("type", string(event.Type)),
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops events; used when Kafka is disabled by config.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event models.AuthEvent) error { return nil }
func (NoopPublisher) Close() error                                              { return nil }
