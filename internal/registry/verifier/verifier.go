// Package verifier decides whether a stored proof verifies.
package verifier

import "proofregistry/internal/registry/models"

// ZeroChallenge accepts a proof iff its challenge is 32 zero bytes. It stands
// in for real zero-knowledge verification and is kept behind the service's
// Verifier interface so it can be replaced.
type ZeroChallenge struct{}

func (ZeroChallenge) Verify(proof *models.Proof) bool {
	var zero models.Bytes32
	return proof.Challenge == zero
}
