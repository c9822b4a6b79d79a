// Package ledger records verification-fee transfers. The registry calls
// Transfer last inside a submission transaction; an error aborts the
// submission.
package ledger

import (
	"context"
	"sync"

	"proofregistry/internal/registry/models"
	"proofregistry/pkg/domain"
)

// InMemoryLedger appends transfers to a slice.
type InMemoryLedger struct {
	mu        sync.Mutex
	transfers []models.FeeTransfer
	failWith  error
}

func NewInMemory() *InMemoryLedger {
	return &InMemoryLedger{}
}

// Transfer records t, or returns the injected failure.
func (l *InMemoryLedger) Transfer(_ context.Context, t models.FeeTransfer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return l.failWith
	}
	l.transfers = append(l.transfers, t)
	return nil
}

// FailWith makes subsequent transfers fail with err. Pass nil to recover.
func (l *InMemoryLedger) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failWith = err
}

// Transfers returns a copy of the recorded transfers in order.
func (l *InMemoryLedger) Transfers() []models.FeeTransfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.FeeTransfer, len(l.transfers))
	copy(out, l.transfers)
	return out
}

// Balance returns received minus paid for p across recorded transfers.
func (l *InMemoryLedger) Balance(p domain.Principal) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var bal int64
	for _, t := range l.transfers {
		if t.To == p {
			bal += int64(t.Amount)
		}
		if t.From == p {
			bal -= int64(t.Amount)
		}
	}
	return bal
}
