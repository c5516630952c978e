package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// BlockRepository is the persistence port for negative-access entries.
// Entries are deactivated, never deleted.
type BlockRepository interface {
	// ActiveBlock returns the active block for (principal, client), or
	// domain.ErrNotFound when none exists.
	ActiveBlock(ctx context.Context, principalID, clientID string) (*domain.AccessBlock, error)
	// ActiveClientIDs returns the ids of every client actively blocked for
	// the principal.
	ActiveClientIDs(ctx context.Context, principalID string) ([]string, error)
	Create(ctx context.Context, block *domain.AccessBlock) error
	// Deactivate clears the block only while it is still active
	// (compare-and-set on is_active).
	Deactivate(ctx context.Context, id, deactivatedBy string) error
}

// DvRequestRepository is the persistence port for DV-flag removal requests.
type DvRequestRepository interface {
	FindByID(ctx context.Context, id string) (*domain.DvRemovalRequest, error)
	ListPending(ctx context.Context) ([]*domain.DvRemovalRequest, error)
	Create(ctx context.Context, req *domain.DvRemovalRequest) error
	// Review records the verdict only while the request is still pending
	// (compare-and-set on approved IS NULL), so concurrent reviewers cannot
	// both win. Returns domain.ErrAlreadyReviewed when the row was no
	// longer pending.
	Review(ctx context.Context, id, reviewedBy string, approved bool) error
}
