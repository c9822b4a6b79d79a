package domain

import (
	"strings"

	dErrors "proofregistry/pkg/domain-errors"
)

// Principal identifies a caller: the submitter of a proof, the registry
// authority, or a fee-transfer party. Principals are opaque account strings
// such as "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM" or contract-qualified
// names such as "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM.registry".
type Principal string

// BurnPrincipal is the reserved null account. It can never hold the
// registry authority.
const BurnPrincipal Principal = "SP000000000000000000002Q6VF78"

const maxPrincipalLength = 149

// ParsePrincipal validates a principal received at a trust boundary.
func ParsePrincipal(s string) (Principal, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal is required")
	}
	if len(s) > maxPrincipalLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal is too long")
	}
	account, contract, qualified := strings.Cut(s, ".")
	if !validSegment(account, false) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal contains invalid characters")
	}
	if qualified && !validSegment(contract, true) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "contract name contains invalid characters")
	}
	return Principal(s), nil
}

func validSegment(s string, contract bool) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case contract && (c >= 'a' && c <= 'z' || c == '-' || c == '_'):
		default:
			return false
		}
	}
	return true
}

// String returns the principal as a string.
func (p Principal) String() string {
	return string(p)
}

// IsNil reports whether the principal is unset.
func (p Principal) IsNil() bool {
	return p == ""
}

// IsBurn reports whether p is the reserved null account.
func (p Principal) IsBurn() bool {
	return p == BurnPrincipal
}
