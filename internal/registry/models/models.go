package models

import "proofregistry/pkg/domain"

// Registry defaults applied when the store is first created.
const (
	DefaultMaxProofs       uint64 = 10000
	DefaultVerificationFee uint64 = 100
)

// Default curve constants: the secp256k1 generator and group order, and a
// fixed base point used by the commitment scheme.
var (
	DefaultGenerator = MustBytes33("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	DefaultBase      = MustBytes33("02aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa9884914a")
	DefaultOrder     = MustBytes32("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
)

// ProofType tags the payload a proof carries.
type ProofType string

const (
	ProofTypeEncounter ProofType = "encounter"
	ProofTypeInfection ProofType = "infection"
	ProofTypeExposure  ProofType = "exposure"
)

// ParseProofType matches the three known variants exactly.
func ParseProofType(s string) (ProofType, error) {
	switch t := ProofType(s); t {
	case ProofTypeEncounter, ProofTypeInfection, ProofTypeExposure:
		return t, nil
	default:
		return "", ReasonInvalidProofType
	}
}

// CurveParams are the public curve parameters proofs are expressed against.
type CurveParams struct {
	Generator Bytes33 `json:"generator"`
	Base      Bytes33 `json:"base"`
	Order     Bytes32 `json:"order"`
}

// Config is the registry-wide mutable configuration. Authority transitions
// from nil to set exactly once.
type Config struct {
	NextProofID     uint64            `json:"next_proof_id"`
	MaxProofs       uint64            `json:"max_proofs"`
	VerificationFee uint64            `json:"verification_fee"`
	Authority       *domain.Principal `json:"authority,omitempty"`
	Curve           CurveParams       `json:"curve"`
}

// DefaultConfig returns the configuration of an empty registry.
func DefaultConfig() Config {
	return Config{
		MaxProofs:       DefaultMaxProofs,
		VerificationFee: DefaultVerificationFee,
		Curve: CurveParams{
			Generator: DefaultGenerator,
			Base:      DefaultBase,
			Order:     DefaultOrder,
		},
	}
}

// SetAuthority installs the authority. The burn principal is rejected before
// the already-set check.
func (c *Config) SetAuthority(p domain.Principal) error {
	if p.IsBurn() {
		return ReasonInvalidPrincipal
	}
	if c.Authority != nil {
		return ReasonAuthorityAlreadySet
	}
	c.Authority = &p
	return nil
}

// HasAuthority reports whether the write-once authority has been set.
func (c *Config) HasAuthority() bool {
	return c.Authority != nil
}

// IsAuthority reports whether p is the configured authority.
func (c *Config) IsAuthority(p domain.Principal) bool {
	return c.Authority != nil && *c.Authority == p
}

// AtCapacity reports whether no further proof ids can be allocated.
func (c *Config) AtCapacity() bool {
	return c.NextProofID >= c.MaxProofs
}

// Proof is a stored commitment proof.
type Proof struct {
	ID             uint64           `json:"id"`
	Type           ProofType        `json:"proof_type"`
	Commitment     Bytes32          `json:"commitment"`
	Challenge      Bytes32          `json:"challenge"`
	Response       Bytes32          `json:"response"`
	VerifierKey    Bytes33          `json:"verifier_key"`
	EncounterHash  *Bytes32         `json:"encounter_hash,omitempty"`
	InfectionProof *Bytes64         `json:"infection_proof,omitempty"`
	ExposureQuery  *Bytes32         `json:"exposure_query,omitempty"`
	Timestamp      uint64           `json:"timestamp"`
	Submitter      domain.Principal `json:"submitter"`
	Verified       bool             `json:"status"`
}

// Clone returns a deep copy so stores never share optional payloads.
func (p *Proof) Clone() *Proof {
	if p == nil {
		return nil
	}
	out := *p
	if p.EncounterHash != nil {
		h := *p.EncounterHash
		out.EncounterHash = &h
	}
	if p.InfectionProof != nil {
		ip := *p.InfectionProof
		out.InfectionProof = &ip
	}
	if p.ExposureQuery != nil {
		q := *p.ExposureQuery
		out.ExposureQuery = &q
	}
	return &out
}

// ProofUpdate is the latest accepted update of a proof. Each update
// overwrites it.
type ProofUpdate struct {
	Commitment Bytes32          `json:"new_commitment"`
	Challenge  Bytes32          `json:"new_challenge"`
	Response   Bytes32          `json:"new_response"`
	Timestamp  uint64           `json:"update_timestamp"`
	Updater    domain.Principal `json:"updater"`
}

// FeeTransfer is a verification-fee movement recorded by the ledger.
type FeeTransfer struct {
	Amount  uint64           `json:"amount"`
	From    domain.Principal `json:"from"`
	To      domain.Principal `json:"to"`
	ProofID uint64           `json:"proof_id"`
	Height  uint64           `json:"height"`
}
