package models

import dErrors "proofregistry/pkg/domain-errors"

// SubmitRequest carries a proof submission. Byte fields keep their raw length
// so that the registry can report the first failing field in order.
type SubmitRequest struct {
	ProofType      string   `json:"proof_type"`
	Commitment     HexBytes `json:"commitment"`
	Challenge      HexBytes `json:"challenge"`
	Response       HexBytes `json:"response"`
	VerifierKey    HexBytes `json:"verifier_key"`
	EncounterHash  HexBytes `json:"encounter_hash,omitempty"`
	InfectionProof HexBytes `json:"infection_proof,omitempty"`
	ExposureQuery  HexBytes `json:"exposure_query,omitempty"`
}

// Validate only rejects a missing body. Field checks are ordered against
// registry state and run inside the submission transaction.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return nil
}

// Draft checks the proof type and field lengths in registry order and
// returns the proof record to store. ID, Timestamp and Submitter are left for
// the caller.
func (r *SubmitRequest) Draft() (*Proof, error) {
	proofType, err := ParseProofType(r.ProofType)
	if err != nil {
		return nil, err
	}
	commitment, ok := toBytes32(r.Commitment)
	if !ok {
		return nil, ReasonInvalidCommitment
	}
	challenge, ok := toBytes32(r.Challenge)
	if !ok {
		return nil, ReasonInvalidChallenge
	}
	response, ok := toBytes32(r.Response)
	if !ok {
		return nil, ReasonInvalidResponse
	}
	verifierKey, ok := toBytes33(r.VerifierKey)
	if !ok {
		return nil, ReasonInvalidVerifierKey
	}
	proof := &Proof{
		Type:        proofType,
		Commitment:  commitment,
		Challenge:   challenge,
		Response:    response,
		VerifierKey: verifierKey,
	}
	if r.EncounterHash != nil {
		h, ok := toBytes32(r.EncounterHash)
		if !ok {
			return nil, ReasonInvalidHash
		}
		proof.EncounterHash = &h
	}
	if r.InfectionProof != nil {
		ip, ok := toBytes64(r.InfectionProof)
		if !ok {
			return nil, ReasonInvalidSignature
		}
		proof.InfectionProof = &ip
	}
	if r.ExposureQuery != nil {
		q, ok := toBytes32(r.ExposureQuery)
		if !ok {
			return nil, ReasonInvalidHash
		}
		proof.ExposureQuery = &q
	}
	return proof, nil
}

// UpdateRequest replaces the commitment triple of an existing proof.
type UpdateRequest struct {
	Commitment HexBytes `json:"commitment"`
	Challenge  HexBytes `json:"challenge"`
	Response   HexBytes `json:"response"`
}

// Validate only rejects a missing body; the registry checks ownership before
// field lengths.
func (r *UpdateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return nil
}

// Triple checks the three field lengths in order.
func (r *UpdateRequest) Triple() (commitment, challenge, response Bytes32, err error) {
	var ok bool
	if commitment, ok = toBytes32(r.Commitment); !ok {
		return commitment, challenge, response, ReasonInvalidCommitment
	}
	if challenge, ok = toBytes32(r.Challenge); !ok {
		return commitment, challenge, response, ReasonInvalidChallenge
	}
	if response, ok = toBytes32(r.Response); !ok {
		return commitment, challenge, response, ReasonInvalidResponse
	}
	return commitment, challenge, response, nil
}

// CurveRequest replaces all three curve parameters at once.
type CurveRequest struct {
	Generator HexBytes `json:"generator"`
	Base      HexBytes `json:"base"`
	Order     HexBytes `json:"order"`
}

func (r *CurveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return nil
}

// Params checks lengths in generator, base, order order.
func (r *CurveRequest) Params() (CurveParams, error) {
	var (
		params CurveParams
		ok     bool
	)
	if params.Generator, ok = toBytes33(r.Generator); !ok {
		return CurveParams{}, ReasonInvalidGenerator
	}
	if params.Base, ok = toBytes33(r.Base); !ok {
		return CurveParams{}, ReasonInvalidBase
	}
	if params.Order, ok = toBytes32(r.Order); !ok {
		return CurveParams{}, ReasonInvalidOrder
	}
	return params, nil
}

// SetAuthorityRequest names the principal to install as authority.
type SetAuthorityRequest struct {
	Principal string `json:"principal"`
}

func (r *SetAuthorityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Principal == "" {
		return dErrors.New(dErrors.CodeValidation, "principal is required")
	}
	return nil
}

// SetValueRequest carries a single numeric configuration value.
type SetValueRequest struct {
	Value *uint64 `json:"value"`
}

func (r *SetValueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Value == nil {
		return dErrors.New(dErrors.CodeValidation, "value is required")
	}
	return nil
}

// SubmitResponse is returned for an accepted submission.
type SubmitResponse struct {
	ID uint64 `json:"id"`
}

// CountResponse reports the number of allocated proof ids.
type CountResponse struct {
	Count uint64 `json:"count"`
}

// ExistenceResponse reports whether a commitment is indexed.
type ExistenceResponse struct {
	Commitment HexBytes `json:"commitment"`
	Exists     bool     `json:"exists"`
}
