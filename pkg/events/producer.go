// Package events publishes job lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// EventJobIngested is emitted once for each newly persisted job.
const EventJobIngested = "job.ingested"

// JobEvent is the wire schema for job lifecycle events.
type JobEvent struct {
	EventType  string    `json:"event_type"`
	JobID      int64     `json:"job_id"`
	ExternalID string    `json:"external_id"`
	Title      string    `json:"title"`
	Remote     bool      `json:"remote"`
	PostedDate time.Time `json:"posted_date"`
	Timestamp  time.Time `json:"timestamp"`
}

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
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		Compression:            kafka.Snappy,
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

// JobIngested publishes a job.ingested event keyed by external id.
func (p *Producer) JobIngested(ctx context.Context, job models.Job) error {
	ctx, span := tracing.StartSpan(ctx, "events.Producer.JobIngested")
	defer span.End()

	event := JobEvent{
		EventType:  EventJobIngested,
		JobID:      job.ID,
		ExternalID: job.ExternalID,
		Title:      job.Title,
		Remote:     job.Remote,
		PostedDate: job.PostedDate,
		Timestamp:  time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.ExternalID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish job event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type":  event.EventType,
		"external_id": event.ExternalID,
	}).Debug("Published job event")

	return nil
}
