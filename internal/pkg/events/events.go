// Package events publishes post lifecycle events for downstream consumers
// (search indexing, newsletters). Publishing is best effort.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	PostCreated = "post.created"
	PostUpdated = "post.updated"
	PostDeleted = "post.deleted"
)

// PostEvent is the JSON payload of every post event.
type PostEvent struct {
	Type       string    `json:"type"`
	PostID     string    `json:"post_id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title,omitempty"`
	Status     string    `json:"status,omitempty"`
	AuthorID   string    `json:"author_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event PostEvent) error
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, PostEvent) error { return nil }
func (Nop) Close() error                             { return nil }

// KafkaPublisher writes events keyed by post ID so one post's events stay
// ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event PostEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.PostID),
		Value: payload,
		Time:  event.OccurredAt,
	})
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// New returns a Kafka publisher when brokers are configured, otherwise Nop.
func New(brokers []string, topic string) Publisher {
	clean := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			clean = append(clean, b)
		}
	}
	if len(clean) == 0 || strings.TrimSpace(topic) == "" {
		return Nop{}
	}
	return NewKafkaPublisher(clean, topic)
}

// Recorder keeps published events in memory; tests use it to assert on
// what a service emitted.
type Recorder struct {
	mu     sync.Mutex
	Events []PostEvent
}

func (r *Recorder) Publish(_ context.Context, event PostEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the recorded event types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}
