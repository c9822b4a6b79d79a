package models

import "errors"

// Reason is a registry failure reason. Reasons are comparable errors so
// callers can test them with errors.Is after the service wraps them.
type Reason string

const (
	ReasonInvalidProof          Reason = "invalid_proof"
	ReasonInvalidCommitment     Reason = "invalid_commitment"
	ReasonInvalidChallenge      Reason = "invalid_challenge"
	ReasonInvalidResponse       Reason = "invalid_response"
	ReasonInvalidVerifierKey    Reason = "invalid_verifier_key"
	ReasonInvalidProofType      Reason = "invalid_proof_type"
	ReasonProofAlreadyExists    Reason = "proof_already_exists"
	ReasonProofNotFound         Reason = "proof_not_found"
	ReasonInvalidTimestamp      Reason = "invalid_timestamp"
	ReasonAuthorityNotVerified  Reason = "authority_not_verified"
	ReasonInvalidParam          Reason = "invalid_proof_param"
	ReasonInvalidECPoint        Reason = "invalid_ec_point"
	ReasonInvalidScalar         Reason = "invalid_scalar"
	ReasonVerificationFailed    Reason = "verification_failed"
	ReasonInvalidProofLength    Reason = "invalid_proof_length"
	ReasonInvalidHash           Reason = "invalid_hash"
	ReasonInvalidSignature      Reason = "invalid_signature"
	ReasonInvalidEncounterHash  Reason = "invalid_encounter_hash"
	ReasonInvalidInfectionProof Reason = "invalid_infection_proof"
	ReasonInvalidExposureQuery  Reason = "invalid_exposure_query"
	ReasonMaxProofsExceeded     Reason = "max_proofs_exceeded"
	ReasonInvalidProofStatus    Reason = "invalid_proof_status"
	ReasonInvalidGenerator      Reason = "invalid_generator"
	ReasonInvalidBase           Reason = "invalid_base"
	ReasonInvalidOrder          Reason = "invalid_order"
	ReasonInvalidFieldElement   Reason = "invalid_field_element"
	ReasonAuthorityAlreadySet   Reason = "authority_already_set"
	ReasonInvalidPrincipal      Reason = "invalid_principal"
	ReasonUnauthorized          Reason = "unauthorized"
)

// reasonCodes is the numeric enumeration exposed to clients. Reasons without
// an entry report code 0.
var reasonCodes = map[Reason]uint32{
	ReasonInvalidProof:          100,
	ReasonInvalidCommitment:     101,
	ReasonInvalidChallenge:      102,
	ReasonInvalidResponse:       103,
	ReasonInvalidVerifierKey:    104,
	ReasonInvalidProofType:      105,
	ReasonProofAlreadyExists:    106,
	ReasonProofNotFound:         107,
	ReasonInvalidTimestamp:      108,
	ReasonAuthorityNotVerified:  109,
	ReasonInvalidParam:          110,
	ReasonInvalidECPoint:        111,
	ReasonInvalidScalar:         112,
	ReasonVerificationFailed:    113,
	ReasonInvalidProofLength:    114,
	ReasonInvalidHash:           115,
	ReasonInvalidSignature:      116,
	ReasonInvalidEncounterHash:  117,
	ReasonInvalidInfectionProof: 118,
	ReasonInvalidExposureQuery:  119,
	ReasonMaxProofsExceeded:     120,
	ReasonInvalidProofStatus:    121,
	ReasonInvalidGenerator:      122,
	ReasonInvalidBase:           123,
	ReasonInvalidOrder:          124,
	ReasonInvalidFieldElement:   125,
}

func (r Reason) Error() string {
	return string(r)
}

// Reason returns the machine-readable reason name.
func (r Reason) Reason() string {
	return string(r)
}

// ReasonCode returns the numeric code in the 100-125 range, or 0 for reasons
// outside the enumeration.
func (r Reason) ReasonCode() uint32 {
	return reasonCodes[r]
}

// ReasonOf extracts the registry reason from err. ok is false when err does
// not carry one.
func ReasonOf(err error) (Reason, bool) {
	var r Reason
	if errors.As(err, &r) {
		return r, true
	}
	return "", false
}
