package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"proofregistry/internal/registry/models"
	"proofregistry/pkg/platform/audit"
)

// Ledger moves verification fees. Transfer is the last step of a submission
// transaction; an error aborts the submission.
type Ledger interface {
	Transfer(ctx context.Context, transfer models.FeeTransfer) error
}

// Clock supplies the current logical block height.
type Clock interface {
	Height(ctx context.Context) uint64
}

// Verifier decides whether a stored proof verifies.
type Verifier interface {
	Verify(proof *models.Proof) bool
}

// AuditPublisher records registry events. Failures are logged and never fail
// the operation that emitted them.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
