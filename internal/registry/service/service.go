// Package service implements the commitment-proof registry. Every operation
// runs as one store transaction: either all of its writes (configuration,
// proof record, commitment index, update record, fee transfer) apply or none
// do.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"proofregistry/internal/registry/metrics"
	"proofregistry/internal/registry/store"
	"proofregistry/internal/registry/verifier"
	"proofregistry/pkg/domain"
	dErrors "proofregistry/pkg/domain-errors"
	"proofregistry/pkg/platform/audit"
	"proofregistry/pkg/requestcontext"
)

const tracerName = "proofregistry/internal/registry/service"

// Service orchestrates registry operations over a transactional store.
type Service struct {
	repo           store.Repository
	ledger         Ledger
	clock          Clock
	verifier       Verifier
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithVerifier replaces the zero-challenge verifier.
func WithVerifier(v Verifier) Option {
	return func(s *Service) {
		s.verifier = v
	}
}

// WithTracerProvider sets the provider spans are created from. Defaults to
// the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// New constructs a Service. repo, ledger and clock are required.
func New(repo store.Repository, ledger Ledger, clock Clock, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("registry store is required")
	}
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	s := &Service{
		repo:     repo,
		ledger:   ledger,
		clock:    clock,
		verifier: verifier.ZeroChallenge{},
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// requireCaller returns the invoking principal or an unauthorized error.
func requireCaller(ctx context.Context) (domain.Principal, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		return "", dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	return caller, nil
}

func (s *Service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "registry."+name)
}

func proofIDAttr(id uint64) attribute.KeyValue {
	return attribute.String("registry.proof_id", strconv.FormatUint(id, 10))
}

func configFieldAttr(field string) attribute.KeyValue {
	return attribute.String("registry.config_field", field)
}

// endSpan marks the span failed when err is set. The status description is
// the registry reason or error category.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, resultLabel(err))
	}
	span.End()
}

// emit publishes an audit event. Audit failures are logged only.
func (s *Service) emit(ctx context.Context, action audit.AuditEvent, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.Action = string(action)
	event.RequestID = requestcontext.RequestID(ctx)
	event.Timestamp = requestcontext.Now(ctx)
	if event.Principal.IsNil() {
		event.Principal = requestcontext.Caller(ctx)
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
			"request_id", event.RequestID,
		)
	}
}

// logFailure logs rejections at warn and everything else at error.
func (s *Service) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
		"caller", requestcontext.Caller(ctx).String(),
	)
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable, dErrors.CodeTimeout:
		s.logger.ErrorContext(ctx, msg, attrs...)
	default:
		s.logger.WarnContext(ctx, msg, attrs...)
	}
}
