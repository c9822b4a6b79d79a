package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"proofregistry/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route and retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers registry state changes that must be traceable:
	// authority bootstrap, configuration changes, accepted proofs.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers rejected mutations worth alerting on, such as
	// updates attempted by a non-submitter.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the registry service to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	Principal domain.Principal
	Action    string
	// ProofID is set for proof-scoped actions.
	ProofID *uint64
	// Commitment is the hex-encoded commitment involved, if any.
	Commitment string
	// Reason is the registry failure reason for rejected actions.
	Reason    string
	Detail    string
	RequestID string
	Height    uint64
}

type AuditEvent string

const (
	EventAuthoritySet       AuditEvent = "authority_set"
	EventConfigChanged      AuditEvent = "config_changed"
	EventProofSubmitted     AuditEvent = "proof_submitted"
	EventProofVerified      AuditEvent = "proof_verified"
	EventProofUpdated       AuditEvent = "proof_updated"
	EventSubmissionRejected AuditEvent = "submission_rejected"
	EventUpdateRejected     AuditEvent = "update_rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAuthoritySet:   CategoryCompliance,
	EventConfigChanged:  CategoryCompliance,
	EventProofSubmitted: CategoryCompliance,
	EventProofUpdated:   CategoryCompliance,
	EventProofVerified:  CategoryCompliance,

	EventUpdateRejected: CategorySecurity,

	EventSubmissionRejected: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can be queried back.
type Lister interface {
	ListByPrincipal(ctx context.Context, principal domain.Principal) ([]Event, error)
}
