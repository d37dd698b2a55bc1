package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/cypherlabdev/data-reconciler-service/internal/models"
)

// messageWriter is the subset of kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes canonical games to Kafka for downstream consumers
type KafkaPublisher struct {
	writer messageWriter
	logger zerolog.Logger
}

// KafkaPublisherConfig holds Kafka publisher configuration
type KafkaPublisherConfig struct {
	Brokers []string // e.g., ["localhost:9092"]
	Topic   string   // e.g., "canonical_games"
}

// NewKafkaPublisher creates a new Kafka publisher
func NewKafkaPublisher(config KafkaPublisherConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 100 * time.Millisecond,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "kafka_publisher").Logger(),
	}
}

// PublishBatch publishes a batch of canonical games as one message keyed by
// league. Returns the batch ID assigned to the message.
func (p *KafkaPublisher) PublishBatch(ctx context.Context, league models.League, games []*models.Game) (string, error) {
	if len(games) == 0 {
		return "", nil
	}

	msg := models.KafkaCanonicalGamesMessage{
		Games:     make([]models.Game, len(games)),
		Timestamp: time.Now().UTC(),
		BatchID:   uuid.NewString(),
	}
	for i, game := range games {
		msg.Games[i] = *game
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal batch: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(league),
		Value: data,
	}); err != nil {
		return "", fmt.Errorf("failed to publish batch: %w", err)
	}

	p.logger.Info().
		Str("league", string(league)).
		Int("game_count", len(games)).
		Str("batch_id", msg.BatchID).
		Msg("published canonical games batch")

	return msg.BatchID, nil
}

// Close closes the Kafka writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
