package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// BlockClientInput creates a negative-access entry.
type BlockClientInput struct {
	Principal          domain.Principal
	BlockedPrincipalID string
	ClientID           string
	Reason             string
}

// SafetyService owns the DV-safety surface: negative-access blocks, the
// DV-safe flag and its two-person removal workflow.
type SafetyService interface {
	// IsBlocked reports whether an active negative-access entry hides the
	// client from the principal. This check precedes and overrides every
	// positive-access computation.
	IsBlocked(ctx context.Context, principalID, clientID string) (bool, error)
	Block(ctx context.Context, input BlockClientInput) (*domain.AccessBlock, error)
	Unblock(ctx context.Context, p domain.Principal, blockID string) error
	// SetDVFlag raises the flag unilaterally: protecting someone needs no
	// approval.
	SetDVFlag(ctx context.Context, p domain.Principal, clientID string) error
	// RequestRemoval opens a removal request for later review.
	RequestRemoval(ctx context.Context, p domain.Principal, clientID, reason string) (*domain.DvRemovalRequest, error)
	// ReviewRemoval approves or rejects a pending request. The reviewer
	// must not be the requester (domain.ErrSelfApproval, regardless of
	// rank) and must out-rank them (domain.ErrReviewerRank). Approval
	// clears the client's flag before the review is audited.
	ReviewRemoval(ctx context.Context, p domain.Principal, requestID string, approve bool) error
	ListPendingRemovals(ctx context.Context, p domain.Principal) ([]*domain.DvRemovalRequest, error)
}
