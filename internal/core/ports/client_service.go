package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// ClientSummary is the list-item view of a client. DVSafe is omitted from
// serialization for roles that must not observe the flag; the handler maps
// accordingly.
type ClientSummary struct {
	ID      string
	Status  domain.ClientStatus
	DVSafe  bool
	Sharing domain.SharingPreference
	// ShowDVSafe reports whether the caller's role may see the flag at all.
	ShowDVSafe bool
	Programs   []string
}

// ListClientsInput carries the caller-facing list parameters.
type ListClientsInput struct {
	Principal domain.Principal
	Status    domain.ClientStatus
	Page      int
	Limit     int
}

// ListClientsResult is returned by List.
type ListClientsResult struct {
	Items      []ClientSummary
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ClientService owns the client listing and fetch paths and the two guarded
// mutations on access-relevant state.
type ClientService interface {
	List(ctx context.Context, input ListClientsInput) (*ListClientsResult, error)
	Get(ctx context.Context, p domain.Principal, clientID string) (*ClientSummary, error)
	// SetSharing changes the cross-program sharing preference
	// (compare-and-set against the expected current value) and audits the
	// change.
	SetSharing(ctx context.Context, p domain.Principal, clientID string, old, new domain.SharingPreference) error
	// SetStatus changes the lifecycle status and publishes
	// ClientStatusChanged to the synchronous event bus within the same
	// operation.
	SetStatus(ctx context.Context, p domain.Principal, clientID string, old, new domain.ClientStatus) error
}
