package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"proofregistry/internal/registry/models"
	"proofregistry/pkg/domain"
)

// DefaultStream is the Redis stream transfers are appended to.
const DefaultStream = "registry:fee-transfers"

// RedisLedger appends transfers to a Redis stream. Redis does not join the
// registry's store transaction: a transfer recorded here survives a later
// store commit failure.
type RedisLedger struct {
	client redis.Cmdable
	stream string
}

// RedisOption configures a RedisLedger.
type RedisOption func(*RedisLedger)

// WithStream overrides the stream key.
func WithStream(stream string) RedisOption {
	return func(l *RedisLedger) {
		l.stream = stream
	}
}

func NewRedis(client redis.Cmdable, opts ...RedisOption) *RedisLedger {
	l := &RedisLedger{client: client, stream: DefaultStream}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

func (l *RedisLedger) Transfer(ctx context.Context, t models.FeeTransfer) error {
	err := l.client.XAdd(ctx, &redis.XAddArgs{
		Stream: l.stream,
		Values: map[string]any{
			"amount":   strconv.FormatUint(t.Amount, 10),
			"from":     t.From.String(),
			"to":       t.To.String(),
			"proof_id": strconv.FormatUint(t.ProofID, 10),
			"height":   strconv.FormatUint(t.Height, 10),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("append fee transfer: %w", err)
	}
	return nil
}

// Transfers reads the whole stream back in insertion order.
func (l *RedisLedger) Transfers(ctx context.Context) ([]models.FeeTransfer, error) {
	msgs, err := l.client.XRange(ctx, l.stream, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("read fee transfers: %w", err)
	}
	out := make([]models.FeeTransfer, 0, len(msgs))
	for _, msg := range msgs {
		t, err := decodeTransfer(msg.Values)
		if err != nil {
			return nil, fmt.Errorf("decode fee transfer %s: %w", msg.ID, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func decodeTransfer(values map[string]any) (models.FeeTransfer, error) {
	field := func(name string) string {
		s, _ := values[name].(string)
		return s
	}
	var (
		t   models.FeeTransfer
		err error
	)
	if t.Amount, err = strconv.ParseUint(field("amount"), 10, 64); err != nil {
		return t, err
	}
	if t.ProofID, err = strconv.ParseUint(field("proof_id"), 10, 64); err != nil {
		return t, err
	}
	if t.Height, err = strconv.ParseUint(field("height"), 10, 64); err != nil {
		return t, err
	}
	t.From = domain.Principal(field("from"))
	t.To = domain.Principal(field("to"))
	return t, nil
}
