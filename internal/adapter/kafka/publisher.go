package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/ccal-led/internal/config"
	"github.com/couchcryptid/ccal-led/internal/domain"
)

// writeTimeout bounds a publish so an unreachable broker cannot stall the
// display loop past its tracker slice.
const writeTimeout = 5 * time.Second

// Publisher produces activity reports to a Kafka topic.
// It implements scheduler.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured activity topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		WriteTimeout: writeTimeout,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes one report keyed by tracker name, so a tracker's
// reports stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, report domain.ActivityReport) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s report: %w", report.Tracker, err)
	}
	p.logger.Debug("activity report published", "tracker", report.Tracker, "total", report.Total)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an ActivityReport into a Kafka message.
func serializeToMessage(report domain.ActivityReport) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize activity report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.Tracker),
		Value: data,
		Time:  report.PolledAt,
		Headers: []kafkago.Header{
			{Key: "tracker", Value: []byte(report.Tracker)},
			{Key: "cycle_id", Value: []byte(report.CycleID)},
			{Key: "polled_at", Value: []byte(report.PolledAt.Format(time.RFC3339))},
		},
	}, nil
}
