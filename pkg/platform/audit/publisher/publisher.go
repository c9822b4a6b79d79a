// Package publisher emits registry audit events to an audit.Store, either
// synchronously or through a bounded buffer drained by a background worker.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"proofregistry/pkg/domain"
	audit "proofregistry/pkg/platform/audit"
	"proofregistry/pkg/platform/audit/worker"
)

var (
	errBufferFull  = errors.New("audit buffer full")
	errNotListable = errors.New("audit store does not support listing")
)

// Publisher fans audit events out to a store.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	bufferSize int
	inbox      chan audit.Event
	done       chan struct{}
	closeOnce  sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with a buffer of
// size n. Events emitted while the buffer is full are dropped.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

// WithLogger sets a logger for drop and persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher. In async mode it starts its worker
// immediately; call Close to drain it.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit records an event, filling in its id, timestamp and category when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.WarnContext(ctx, "audit buffer full, dropping event",
		"action", event.Action,
		"request_id", event.RequestID,
	)
	return errBufferFull
}

// List returns the events recorded for principal when the store supports it.
func (p *Publisher) List(ctx context.Context, principal domain.Principal) ([]audit.Event, error) {
	lister, ok := p.store.(audit.Lister)
	if !ok {
		return nil, errNotListable
	}
	return lister.ListByPrincipal(ctx, principal)
}

// Close stops accepting events and waits for buffered events to be persisted.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.closeOnce.Do(func() {
		close(p.inbox)
		<-p.done
	})
}
