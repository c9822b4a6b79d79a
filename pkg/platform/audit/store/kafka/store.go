// Package kafka publishes audit events to a Kafka topic with franz-go.
//
// The sink sits behind a circuit breaker: while Kafka keeps failing, events go
// to the fallback store (if any) instead of being lost.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "proofregistry/pkg/platform/audit"
	"proofregistry/pkg/platform/circuit"
)

const defaultProduceTimeout = 5 * time.Second

// Producer is the subset of *kgo.Client used by the store.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Store implements audit.Store on top of a Kafka topic.
type Store struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	fallback audit.Store
	logger   *slog.Logger
	timeout  time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithFallback sets the store used while the circuit is open.
func WithFallback(fallback audit.Store) Option {
	return func(s *Store) {
		s.fallback = fallback
	}
}

// WithLogger sets the logger for breaker transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithBreaker replaces the default breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Store) {
		s.breaker = b
	}
}

// New connects a franz-go client to brokers and returns a store producing to topic.
func New(brokers []string, topic string, opts ...Option) (*Store, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return NewWithProducer(client, topic, opts...), nil
}

// NewWithProducer builds a store around an existing producer.
func NewWithProducer(producer Producer, topic string, opts ...Option) *Store {
	s := &Store{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New("audit-kafka"),
		logger:   slog.Default(),
		timeout:  defaultProduceTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// message is the JSON value written to the topic.
type message struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Timestamp  string `json:"timestamp"`
	Principal  string `json:"principal,omitempty"`
	Action     string `json:"action"`
	ProofID    string `json:"proof_id,omitempty"`
	Commitment string `json:"commitment,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Height     uint64 `json:"height"`
}

func encode(event audit.Event) ([]byte, error) {
	m := message{
		ID:         event.ID.String(),
		Category:   string(event.Category),
		Timestamp:  event.Timestamp.UTC().Format(time.RFC3339Nano),
		Principal:  event.Principal.String(),
		Action:     event.Action,
		Commitment: event.Commitment,
		Reason:     event.Reason,
		Detail:     event.Detail,
		RequestID:  event.RequestID,
		Height:     event.Height,
	}
	if event.ProofID != nil {
		m.ProofID = strconv.FormatUint(*event.ProofID, 10)
	}
	return json.Marshal(m)
}

// Append produces the event synchronously. Records are keyed by principal so
// one principal's events stay ordered within a partition.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := encode(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Principal),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "category", Value: []byte(event.Category)},
			{Key: "action", Value: []byte(event.Action)},
		},
	}

	produceCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.producer.ProduceSync(produceCtx, record).FirstErr(); err != nil {
		useFallback, change := s.breaker.RecordFailure()
		if change.Opened {
			s.logger.WarnContext(ctx, "audit kafka circuit opened", "error", err)
		}
		if useFallback && s.fallback != nil {
			return s.fallback.Append(ctx, event)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "audit kafka circuit closed")
	}
	return nil
}

// Close flushes and closes the underlying client.
func (s *Store) Close() {
	s.producer.Close()
}
