package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and ledgers return these
// (optionally wrapped) so the registry service can translate them into
// domain errors and registry reasons:
//   - ErrNotFound: no record under the requested key
//   - ErrConflict: a unique key (the commitment index) is already taken
//   - ErrUnavailable: a backend (ledger, audit sink) is temporarily unusable
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
