// Package store persists registry state: the configuration row, proof
// records, the commitment index and the latest update per proof.
package store

import (
	"context"

	"proofregistry/internal/registry/models"
)

// Store is the registry state surface. Implementations return
// sentinel.ErrNotFound for missing keys and sentinel.ErrConflict when an
// insert or move would index a commitment twice.
type Store interface {
	LoadConfig(ctx context.Context) (*models.Config, error)
	SaveConfig(ctx context.Context, cfg *models.Config) error
	FindProof(ctx context.Context, id uint64) (*models.Proof, error)
	FindProofIDByCommitment(ctx context.Context, commitment models.Bytes32) (uint64, error)
	InsertProof(ctx context.Context, proof *models.Proof) error
	// UpdateProof overwrites a stored proof and moves its index entry when the
	// commitment changed.
	UpdateProof(ctx context.Context, proof *models.Proof) error
	FindProofUpdate(ctx context.Context, id uint64) (*models.ProofUpdate, error)
	SaveProofUpdate(ctx context.Context, id uint64, update *models.ProofUpdate) error
}

// Repository is a Store that can run a group of operations atomically. The
// callback receives a context to pass to collaborators that join the
// transaction, and a Store bound to it. Nothing fn writes is visible unless fn
// returns nil.
type Repository interface {
	Store
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
