package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/casefile-io/access-engine/internal/api/metrics"
	"github.com/casefile-io/access-engine/internal/core/access"
	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// SafetyService owns negative-access blocks and the DV-safe flag workflow.
type SafetyService struct {
	clients  ports.ClientRepository
	blocks   ports.BlockRepository
	requests ports.DvRequestRepository
	users    ports.UserRepository
	resolver ports.ResolverService
	toggles  ports.ToggleService
	audit    ports.AuditService
	events   *domain.EventBus
	logger   zerolog.Logger
}

func NewSafetyService(
	clients ports.ClientRepository,
	blocks ports.BlockRepository,
	requests ports.DvRequestRepository,
	users ports.UserRepository,
	resolver ports.ResolverService,
	toggles ports.ToggleService,
	audit ports.AuditService,
	events *domain.EventBus,
	logger zerolog.Logger,
) *SafetyService {
	return &SafetyService{
		clients:  clients,
		blocks:   blocks,
		requests: requests,
		users:    users,
		resolver: resolver,
		toggles:  toggles,
		audit:    audit,
		events:   events,
		logger:   logger,
	}
}

// requireDVWorkflow gates the removal surface on the agency-wide toggle.
// Raising the flag is never gated; only taking protection away is. While
// the workflow is off the surface reads as absent, not forbidden.
func (s *SafetyService) requireDVWorkflow(ctx context.Context) error {
	enabled, err := s.toggles.Enabled(ctx, ports.ToggleDVWorkflow)
	if err != nil {
		return err
	}
	if !enabled {
		return domain.ErrNotFound
	}
	return nil
}

// requireCapability passes when any of the principal's active roles holds a
// non-deny verdict for the capability. The front-desk row denies every
// alert capability, so the whole safety surface stays invisible to it.
func requireCapability(p domain.Principal, cap access.Capability) error {
	for _, g := range p.Grants {
		if g.Active() && access.CanAccess(g.Role, cap) != access.Deny {
			return nil
		}
	}
	return domain.ErrPolicyDenied
}

// IsBlocked reports whether an active negative-access entry exists. This is
// the check that precedes and overrides every positive grant.
func (s *SafetyService) IsBlocked(ctx context.Context, principalID, clientID string) (bool, error) {
	_, err := s.blocks.ActiveBlock(ctx, principalID, clientID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Block creates a negative-access entry shielding the client from the named
// principal.
func (s *SafetyService) Block(ctx context.Context, input ports.BlockClientInput) (*domain.AccessBlock, error) {
	p := input.Principal
	if err := requireCapability(p, access.CapAlertCreate); err != nil {
		return nil, err
	}
	client, err := s.resolver.ResolveOrDeny(ctx, p, input.ClientID)
	if err != nil {
		return nil, err
	}

	block := &domain.AccessBlock{
		ID:          uuid.NewString(),
		PrincipalID: input.BlockedPrincipalID,
		ClientID:    client.ID,
		Reason:      input.Reason,
		IsActive:    true,
		CreatedBy:   p.ID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, ports.AuditEntry{
		Principal:    &p,
		Action:       domain.AuditActionBlockCreated,
		ResourceType: "access_block",
		ResourceID:   block.ID,
		NewValues:    map[string]any{"principal_id": block.PrincipalID, "client_id": block.ClientID},
		IsDemo:       client.IsDemo,
	}); err != nil {
		return nil, err
	}
	return block, nil
}

// Unblock deactivates an entry. The row survives for the audit trail.
func (s *SafetyService) Unblock(ctx context.Context, p domain.Principal, blockID string) error {
	if err := requireCapability(p, access.CapAlertCancel); err != nil {
		return err
	}
	if err := s.blocks.Deactivate(ctx, blockID, p.ID); err != nil {
		return err
	}
	return s.audit.Record(ctx, ports.AuditEntry{
		Principal:    &p,
		Action:       domain.AuditActionBlockCleared,
		ResourceType: "access_block",
		ResourceID:   blockID,
		IsDemo:       p.IsDemo,
	})
}

// SetDVFlag raises the DV-safe flag. No approval is needed to protect
// someone; the compare-and-set makes concurrent raises idempotent-ish (the
// loser sees ErrNotFound and treats the flag as already set).
func (s *SafetyService) SetDVFlag(ctx context.Context, p domain.Principal, clientID string) error {
	if err := requireCapability(p, access.CapAlertCreate); err != nil {
		return err
	}
	client, err := s.resolver.ResolveOrDeny(ctx, p, clientID)
	if err != nil {
		return err
	}
	if client.DVSafe {
		return nil
	}

	if err := s.clients.UpdateDVSafe(ctx, client.ID, false, true); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.events.Publish(domain.DVFlagChanged{ClientID: client.ID, Set: true}); err != nil {
		return err
	}
	metrics.DVRequestsTotal.WithLabelValues("flag_set").Inc()

	// The flag is durably applied above; only then does the audit record
	// reference the new value.
	return s.audit.Record(ctx, ports.AuditEntry{
		Principal:    &p,
		Action:       domain.AuditActionDVFlagSet,
		ResourceType: "client",
		ResourceID:   client.ID,
		OldValues:    map[string]any{"dv_safe": false},
		NewValues:    map[string]any{"dv_safe": true},
		IsDemo:       client.IsDemo,
	})
}

// RequestRemoval opens a two-person removal request for a flagged client.
func (s *SafetyService) RequestRemoval(ctx context.Context, p domain.Principal, clientID, reason string) (*domain.DvRemovalRequest, error) {
	if err := requireCapability(p, access.CapAlertRecommendCancel); err != nil {
		return nil, err
	}
	if err := s.requireDVWorkflow(ctx); err != nil {
		return nil, err
	}
	client, err := s.resolver.ResolveOrDeny(ctx, p, clientID)
	if err != nil {
		return nil, err
	}
	if !client.DVSafe {
		return nil, domain.ErrNotFound
	}

	req := &domain.DvRemovalRequest{
		ID:          uuid.NewString(),
		ClientID:    client.ID,
		RequestedBy: p.ID,
		Reason:      reason,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	metrics.DVRequestsTotal.WithLabelValues("requested").Inc()

	if err := s.audit.Record(ctx, ports.AuditEntry{
		Principal:    &p,
		Action:       domain.AuditActionDVRequested,
		ResourceType: "dv_removal_request",
		ResourceID:   req.ID,
		NewValues:    map[string]any{"client_id": client.ID, "reason": reason},
		IsDemo:       client.IsDemo,
	}); err != nil {
		return nil, err
	}
	return req, nil
}

// ReviewRemoval records the verdict on a pending request. Self-approval is
// rejected before rank is even considered; the reviewer must hold a strictly
// higher rank than the requester held at review time.
func (s *SafetyService) ReviewRemoval(ctx context.Context, p domain.Principal, requestID string, approve bool) error {
	if err := requireCapability(p, access.CapAlertCancel); err != nil {
		return err
	}
	if err := s.requireDVWorkflow(ctx); err != nil {
		return err
	}
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if !req.Pending() {
		return domain.ErrAlreadyReviewed
	}
	if req.RequestedBy == p.ID {
		return domain.ErrSelfApproval
	}

	requester, err := s.users.FindByID(ctx, req.RequestedBy)
	if err != nil {
		return err
	}
	requesterRole, _ := requester.Principal().HighestRole()
	reviewerRole, ok := p.HighestRole()
	if !ok || reviewerRole.Rank() <= requesterRole.Rank() {
		return domain.ErrReviewerRank
	}

	client, err := s.resolver.ResolveOrDeny(ctx, p, req.ClientID)
	if err != nil {
		return err
	}

	if err := s.requests.Review(ctx, requestID, p.ID, approve); err != nil {
		return err
	}

	verdict := "rejected"
	if approve {
		verdict = "approved"
		if err := s.clients.UpdateDVSafe(ctx, client.ID, true, false); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := s.events.Publish(domain.DVFlagChanged{ClientID: client.ID, Set: false}); err != nil {
			return err
		}
	}
	metrics.DVRequestsTotal.WithLabelValues(verdict).Inc()

	return s.audit.Record(ctx, ports.AuditEntry{
		Principal:    &p,
		Action:       domain.AuditActionDVReviewed,
		ResourceType: "dv_removal_request",
		ResourceID:   requestID,
		NewValues:    map[string]any{"approved": approve, "client_id": client.ID},
		IsDemo:       client.IsDemo,
	})
}

// ListPendingRemovals returns pending requests for reviewers. The front-desk
// role cannot reach this surface at all.
func (s *SafetyService) ListPendingRemovals(ctx context.Context, p domain.Principal) ([]*domain.DvRemovalRequest, error) {
	if err := requireCapability(p, access.CapAlertView); err != nil {
		return nil, err
	}
	if err := s.requireDVWorkflow(ctx); err != nil {
		return nil, err
	}
	return s.requests.ListPending(ctx)
}
