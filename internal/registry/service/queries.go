package service

import (
	"context"
	"errors"

	"proofregistry/internal/registry/models"
	dErrors "proofregistry/pkg/domain-errors"
	"proofregistry/pkg/platform/sentinel"
)

// GetProof returns the proof stored under id. A miss is reported through
// found, not as an error.
func (s *Service) GetProof(ctx context.Context, id uint64) (proof *models.Proof, found bool, err error) {
	proof, err = s.repo.FindProof(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proof")
	}
	return proof, true, nil
}

// GetProofUpdate returns the latest accepted update of a proof.
func (s *Service) GetProofUpdate(ctx context.Context, id uint64) (*models.ProofUpdate, bool, error) {
	update, err := s.repo.FindProofUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proof update")
	}
	return update, true, nil
}

// GetProofCount returns the number of ids allocated so far.
func (s *Service) GetProofCount(ctx context.Context) (uint64, error) {
	cfg, err := s.repo.LoadConfig(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry config")
	}
	return cfg.NextProofID, nil
}

// CheckProofExistence reports whether commitment is currently indexed. Values
// that are not 32 bytes long are never indexed.
func (s *Service) CheckProofExistence(ctx context.Context, commitment []byte) (bool, error) {
	var key models.Bytes32
	if len(commitment) != len(key) {
		return false, nil
	}
	copy(key[:], commitment)
	_, err := s.repo.FindProofIDByCommitment(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check commitment index")
	}
	return true, nil
}

// GetConfig returns the current registry configuration.
func (s *Service) GetConfig(ctx context.Context) (*models.Config, error) {
	cfg, err := s.repo.LoadConfig(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry config")
	}
	return cfg, nil
}
