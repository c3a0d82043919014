// Package audit publishes client-side session and order events to Kafka.
// Everything here is best-effort: a broker outage must never fail a user
// action, so errors are logged and dropped.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicSessionEvents = "session_events"
	TopicOrderEvents   = "order_events"
)

type Producer struct {
	writer *kafka.Writer
	log    *slog.Logger
}

// New returns nil when no brokers are configured; a nil Producer is safe to
// publish to.
func New(brokers []string, log *slog.Logger) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		log: log,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("audit event marshal failed", "topic", topic, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	})
	if err != nil {
		p.log.Warn("audit event publish failed", "topic", topic, "error", err)
	}
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
