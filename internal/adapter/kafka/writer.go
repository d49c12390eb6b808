// Package kafka publishes visitor activity events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/task-trek/internal/config"
	"github.com/couchcryptid/task-trek/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces activity events to the configured topic.
// It implements activity.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the activity topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaActivityTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes events in a single WriteMessages call. Events for the
// same visitor share a partition and stay ordered.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, len(events))
	for _, evt := range events {
		msg, err := serializeToMessage(evt)
		if err != nil {
			w.logger.Warn("skipping unserializable activity event", "id", evt.ID, "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write activity batch: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(evt domain.ActivityEvent) (kafkago.Message, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize activity event: %w", err)
	}
	key := evt.VisitorID
	if key == "" {
		key = evt.ID
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Time:  evt.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
			{Key: "occurred_at", Value: []byte(evt.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}
