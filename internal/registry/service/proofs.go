package service

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"proofregistry/internal/registry/models"
	"proofregistry/internal/registry/store"
	dErrors "proofregistry/pkg/domain-errors"
	"proofregistry/pkg/platform/audit"
	"proofregistry/pkg/platform/sentinel"
	"proofregistry/pkg/requestcontext"
)

// SubmitProof validates and stores a proof, charging the verification fee
// from the caller to the authority. Checks run in a fixed order and the first
// failure wins: capacity, proof type, field lengths, commitment uniqueness,
// authority. The fee transfer runs last, so no rejected submission is ever
// charged.
func (s *Service) SubmitProof(ctx context.Context, req models.SubmitRequest) (uint64, error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "SubmitProof")
	var err error
	defer func() {
		endSpan(span, err)
		s.metrics.ObserveOperation("submit_proof", start)
	}()

	caller, err := requireCaller(ctx)
	if err != nil {
		return 0, err
	}

	var (
		accepted *models.Proof
		fee      uint64
		nextID   uint64
	)
	err = s.repo.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		cfg, err := tx.LoadConfig(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry config")
		}
		if cfg.AtCapacity() {
			return reject(models.ReasonMaxProofsExceeded)
		}
		proof, err := req.Draft()
		if err != nil {
			return rejectErr(err, "invalid proof submission")
		}
		if _, err := tx.FindProofIDByCommitment(ctx, proof.Commitment); err == nil {
			return reject(models.ReasonProofAlreadyExists)
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check commitment index")
		}
		if !cfg.HasAuthority() {
			return reject(models.ReasonAuthorityNotVerified)
		}

		height := s.clock.Height(ctx)
		proof.ID = cfg.NextProofID
		proof.Timestamp = height
		proof.Submitter = caller
		proof.Verified = false
		if err := tx.InsertProof(ctx, proof); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return reject(models.ReasonProofAlreadyExists)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store proof")
		}
		cfg.NextProofID++
		if err := tx.SaveConfig(ctx, cfg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registry config")
		}

		transfer := models.FeeTransfer{
			Amount:  cfg.VerificationFee,
			From:    caller,
			To:      *cfg.Authority,
			ProofID: proof.ID,
			Height:  height,
		}
		if err := s.ledger.Transfer(ctx, transfer); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "verification fee transfer failed")
		}
		accepted, fee, nextID = proof, cfg.VerificationFee, cfg.NextProofID
		return nil
	})
	if err != nil {
		err = asDomain(err, "failed to submit proof")
		s.metrics.RecordSubmission(resultLabel(err))
		s.logFailure(ctx, "proof submission rejected", err)
		reason, _ := models.ReasonOf(err)
		s.emit(ctx, audit.EventSubmissionRejected, audit.Event{
			Commitment: hex.EncodeToString(req.Commitment),
			Reason:     string(reason),
		})
		return 0, err
	}

	span.SetAttributes(proofIDAttr(accepted.ID))
	s.metrics.RecordSubmission(resultLabel(nil))
	s.metrics.RecordFee(fee, nextID)
	s.logger.InfoContext(ctx, "proof submitted",
		"proof_id", accepted.ID,
		"proof_type", string(accepted.Type),
		"height", accepted.Timestamp,
		"fee", fee,
		"caller", caller.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	id := accepted.ID
	s.emit(ctx, audit.EventProofSubmitted, audit.Event{
		ProofID:    &id,
		Commitment: accepted.Commitment.String(),
		Height:     accepted.Timestamp,
	})
	return accepted.ID, nil
}

// VerifyProof marks a proof verified when its challenge passes the verifier.
// Verifying an already-verified proof is always rejected. A failed check
// leaves the proof untouched.
func (s *Service) VerifyProof(ctx context.Context, id uint64) error {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "VerifyProof")
	span.SetAttributes(proofIDAttr(id))
	var err error
	defer func() {
		endSpan(span, err)
		s.metrics.ObserveOperation("verify_proof", start)
	}()

	err = s.repo.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		proof, err := tx.FindProof(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return reject(models.ReasonProofNotFound)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proof")
		}
		if proof.Verified {
			return reject(models.ReasonInvalidProofStatus)
		}
		if !s.verifier.Verify(proof) {
			return reject(models.ReasonVerificationFailed)
		}
		proof.Verified = true
		if err := tx.UpdateProof(ctx, proof); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store proof")
		}
		return nil
	})
	s.metrics.RecordVerification(resultLabel(err))
	if err != nil {
		err = asDomain(err, "failed to verify proof")
		s.logFailure(ctx, "proof verification rejected", err, "proof_id", id)
		return err
	}

	s.logger.InfoContext(ctx, "proof verified",
		"proof_id", id,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.EventProofVerified, audit.Event{ProofID: &id})
	return nil
}

// UpdateProof replaces the commitment triple of a proof owned by the caller,
// moves its index entry and overwrites the proof's update record. The
// verification status is kept. Checks run in order: existence, ownership,
// field lengths, commitment collision with a different proof.
func (s *Service) UpdateProof(ctx context.Context, id uint64, commitment, challenge, response []byte) error {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "UpdateProof")
	span.SetAttributes(proofIDAttr(id))
	var err error
	defer func() {
		endSpan(span, err)
		s.metrics.ObserveOperation("update_proof", start)
	}()

	caller, err := requireCaller(ctx)
	if err != nil {
		return err
	}

	req := models.UpdateRequest{Commitment: commitment, Challenge: challenge, Response: response}
	var height uint64
	err = s.repo.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		proof, err := tx.FindProof(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return reject(models.ReasonProofNotFound)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proof")
		}
		if proof.Submitter != caller {
			return reject(models.ReasonUnauthorized)
		}
		newCommitment, newChallenge, newResponse, err := req.Triple()
		if err != nil {
			return rejectErr(err, "invalid proof update")
		}
		owner, err := tx.FindProofIDByCommitment(ctx, newCommitment)
		switch {
		case err == nil && owner != id:
			return reject(models.ReasonProofAlreadyExists)
		case err != nil && !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check commitment index")
		}

		height = s.clock.Height(ctx)
		proof.Commitment = newCommitment
		proof.Challenge = newChallenge
		proof.Response = newResponse
		proof.Timestamp = height
		if err := tx.UpdateProof(ctx, proof); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return reject(models.ReasonProofAlreadyExists)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store proof")
		}
		update := &models.ProofUpdate{
			Commitment: newCommitment,
			Challenge:  newChallenge,
			Response:   newResponse,
			Timestamp:  height,
			Updater:    caller,
		}
		if err := tx.SaveProofUpdate(ctx, id, update); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store proof update")
		}
		return nil
	})
	s.metrics.RecordUpdate(resultLabel(err))
	if err != nil {
		err = asDomain(err, "failed to update proof")
		s.logFailure(ctx, "proof update rejected", err, "proof_id", id)
		reason, _ := models.ReasonOf(err)
		s.emit(ctx, audit.EventUpdateRejected, audit.Event{
			ProofID:    &id,
			Commitment: hex.EncodeToString(commitment),
			Reason:     string(reason),
		})
		return err
	}

	s.logger.InfoContext(ctx, "proof updated",
		"proof_id", id,
		"height", height,
		"caller", caller.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.EventProofUpdated, audit.Event{
		ProofID:    &id,
		Commitment: hex.EncodeToString(commitment),
		Height:     height,
	})
	return nil
}
