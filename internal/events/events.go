// Package events publishes domain events to a Kafka topic so other tooling
// can follow task and war-room activity. Publishing is best-effort: a
// broker outage costs the event, never the request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event kinds.
const (
	TaskCreated    = "task.created"
	TaskDispatched = "task.dispatched"
	TaskDone       = "task.done"
	TaskFailed     = "task.failed"
	WarRoomPosted  = "warroom.posted"
)

// Event is the JSON envelope written to the topic.
type Event struct {
	Kind      string            `json:"kind"`
	Timestamp time.Time         `json:"timestamp"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, kind string, fields map[string]string) error
	Close() error
}

// Noop is the Publisher used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, map[string]string) error { return nil }
func (Noop) Close() error                                             { return nil }

// KafkaPublisher writes events with a kafka-go Writer.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafka creates a publisher for the given comma-separated broker list
// and topic.
func NewKafka(brokers, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{
		logger: logger,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(brokers, ",")...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

// Publish writes one event with a short per-write timeout.
func (p *KafkaPublisher) Publish(ctx context.Context, kind string, fields map[string]string) error {
	payload, err := json.Marshal(Event{Kind: kind, Timestamp: time.Now(), Fields: fields})
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", kind, err)
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(kind),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", kind, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// Emit publishes and logs instead of returning; call sites treat events as
// fire-and-forget.
func Emit(ctx context.Context, p Publisher, logger *slog.Logger, kind string, fields map[string]string) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, kind, fields); err != nil && logger != nil {
		logger.Debug("event publish failed", "kind", kind, "error", err)
	}
}
