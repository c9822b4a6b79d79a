package service

import (
	"errors"

	"proofregistry/internal/registry/metrics"
	"proofregistry/internal/registry/models"
	dErrors "proofregistry/pkg/domain-errors"
)

var reasonCategories = map[models.Reason]dErrors.Code{
	models.ReasonProofNotFound:        dErrors.CodeNotFound,
	models.ReasonUnauthorized:         dErrors.CodeForbidden,
	models.ReasonProofAlreadyExists:   dErrors.CodeConflict,
	models.ReasonMaxProofsExceeded:    dErrors.CodeConflict,
	models.ReasonAuthorityNotVerified: dErrors.CodeConflict,
	models.ReasonAuthorityAlreadySet:  dErrors.CodeConflict,
	models.ReasonInvalidProofStatus:   dErrors.CodeConflict,
	models.ReasonVerificationFailed:   dErrors.CodeInvariantViolation,
}

var reasonMessages = map[models.Reason]string{
	models.ReasonInvalidCommitment:    "commitment must be 32 bytes",
	models.ReasonInvalidChallenge:     "challenge must be 32 bytes",
	models.ReasonInvalidResponse:      "response must be 32 bytes",
	models.ReasonInvalidVerifierKey:   "verifier key must be 33 bytes",
	models.ReasonInvalidProofType:     "proof type must be encounter, infection or exposure",
	models.ReasonInvalidHash:          "hash must be 32 bytes",
	models.ReasonInvalidSignature:     "infection proof must be 64 bytes",
	models.ReasonInvalidParam:         "value must be greater than zero",
	models.ReasonInvalidGenerator:     "generator must be 33 bytes",
	models.ReasonInvalidBase:          "base must be 33 bytes",
	models.ReasonInvalidOrder:         "order must be 32 bytes",
	models.ReasonInvalidPrincipal:     "principal cannot hold the registry authority",
	models.ReasonProofNotFound:        "proof not found",
	models.ReasonUnauthorized:         "caller is not permitted to perform this operation",
	models.ReasonProofAlreadyExists:   "commitment is already registered",
	models.ReasonMaxProofsExceeded:    "registry is at capacity",
	models.ReasonAuthorityNotVerified: "registry authority is not set",
	models.ReasonAuthorityAlreadySet:  "registry authority is already set",
	models.ReasonInvalidProofStatus:   "proof is already verified",
	models.ReasonVerificationFailed:   "proof verification failed",
}

// reject wraps a registry reason in its domain category.
func reject(reason models.Reason) error {
	code, ok := reasonCategories[reason]
	if !ok {
		code = dErrors.CodeValidation
	}
	msg, ok := reasonMessages[reason]
	if !ok {
		msg = string(reason)
	}
	return dErrors.Wrap(reason, code, msg)
}

// rejectErr turns a bare reason returned by model validation into a domain
// error. Other errors are treated as internal.
func rejectErr(err error, msg string) error {
	if reason, ok := models.ReasonOf(err); ok {
		return reject(reason)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// asDomain leaves categorized errors alone and marks the rest internal.
func asDomain(err error, msg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// resultLabel is the metrics label for an operation outcome.
func resultLabel(err error) string {
	if err == nil {
		return metrics.ResultAccepted
	}
	if reason, ok := models.ReasonOf(err); ok {
		return string(reason)
	}
	return string(dErrors.CodeOf(err))
}
