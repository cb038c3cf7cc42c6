package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig holds consumer parameters for the market-data topics.
type KafkaConfig struct {
	Brokers   []string
	BookTopic string
	TickTopic string
	GroupID   string
	MinBytes  int
	MaxBytes  int
}

// KafkaConsumer reads raw book and tick events from Kafka and routes them
// through the dispatcher. One reader per topic; both run until the context is
// cancelled.
type KafkaConsumer struct {
	cfg        KafkaConfig
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewKafkaConsumer creates a KafkaConsumer over the given dispatcher.
func NewKafkaConsumer(cfg KafkaConfig, dispatcher *Dispatcher, logger *slog.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "kafka_consumer")),
	}
}

func (k *KafkaConsumer) newReader(topic string) *kafka.Reader {
	minBytes := k.cfg.MinBytes
	if minBytes <= 0 {
		minBytes = 1
	}
	maxBytes := k.cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20 // 10 MiB
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.cfg.Brokers,
		Topic:    topic,
		GroupID:  k.cfg.GroupID,
		MinBytes: minBytes,
		MaxBytes: maxBytes,
	})
}

// ConsumeBooks reads the book topic until the context is cancelled.
func (k *KafkaConsumer) ConsumeBooks(ctx context.Context) error {
	return k.consume(ctx, k.cfg.BookTopic, k.dispatcher.HandleBook)
}

// ConsumeTicks reads the tick topic until the context is cancelled.
func (k *KafkaConsumer) ConsumeTicks(ctx context.Context) error {
	return k.consume(ctx, k.cfg.TickTopic, k.dispatcher.HandleTick)
}

func (k *KafkaConsumer) consume(ctx context.Context, topic string, handle func(context.Context, []byte) error) error {
	reader := k.newReader(topic)
	defer reader.Close()

	k.logger.InfoContext(ctx, "kafka consumer started", slog.String("topic", topic))
	defer k.logger.Info("kafka consumer stopped", slog.String("topic", topic))

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return fmt.Errorf("feed: read %s: %w", topic, err)
		}
		if err := handle(ctx, msg.Value); err != nil {
			k.logger.ErrorContext(ctx, "event handling failed",
				slog.String("topic", topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}
