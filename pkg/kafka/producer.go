package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/dfcarvalho/miolo/pkg/tracing"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// BackfillEvent reports backfill progress to downstream observers
type BackfillEvent struct {
	EventType          string    `json:"event_type"` // backfill.batch, backfill.completed
	LastProcessedRowID int64     `json:"last_processed_row_id"`
	RowsProcessedCount int64     `json:"rows_processed_count"`
	BatchRows          int       `json:"batch_rows,omitempty"`
	Status             string    `json:"status"`
	Timestamp          time.Time `json:"timestamp"`
}

// ResolutionEvent reports the outcome of one partner lookup
type ResolutionEvent struct {
	EventType  string          `json:"event_type"` // partner.resolved
	EventID    string          `json:"event_id"`
	Identifier string          `json:"identifier"`
	Status     string          `json:"status"`
	Score      float64         `json:"score,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// PublishBackfillEvent publishes a backfill progress event to Kafka.
// Keyed by a constant so progress events stay ordered on one partition.
func (p *Producer) PublishBackfillEvent(ctx context.Context, event *BackfillEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishBackfillEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte("backfill"),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "status", Value: []byte(event.Status)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish backfill event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type":            event.EventType,
		"last_processed_row_id": event.LastProcessedRowID,
	}).Debug("Published backfill event")

	return nil
}

// PublishResolutionEvent publishes a resolution outcome event to Kafka
func (p *Producer) PublishResolutionEvent(ctx context.Context, event *ResolutionEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishResolutionEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.EventID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "status", Value: []byte(event.Status)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish resolution event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type": event.EventType,
		"status":     event.Status,
	}).Debug("Published resolution event")

	return nil
}
