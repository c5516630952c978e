package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/casefile-io/access-engine/internal/core/access"
	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ClientService owns the listing and fetch paths for client records and the
// guarded mutations on their access-relevant state.
type ClientService struct {
	clients  ports.ClientRepository
	resolver ports.ResolverService
	audit    ports.AuditService
	events   *domain.EventBus
	logger   zerolog.Logger
}

func NewClientService(clients ports.ClientRepository, resolver ports.ResolverService, audit ports.AuditService, events *domain.EventBus, logger zerolog.Logger) *ClientService {
	return &ClientService{clients: clients, resolver: resolver, audit: audit, events: events, logger: logger}
}

// showDVSafe reports whether any of the principal's roles may observe the
// DV-safe flag at all.
func showDVSafe(p domain.Principal) bool {
	for _, g := range p.Grants {
		if g.Active() && access.CanAccess(g.Role, access.CapAlertView) != access.Deny {
			return true
		}
	}
	return false
}

func (s *ClientService) summarize(p domain.Principal, client *domain.Client) ports.ClientSummary {
	return ports.ClientSummary{
		ID:         client.ID,
		Status:     client.Status,
		DVSafe:     client.DVSafe,
		Sharing:    client.Sharing,
		ShowDVSafe: showDVSafe(p),
		Programs:   client.Programs(),
	}
}

// List returns the clients the principal may see, paginated. Blocked
// clients are absent, not redacted.
func (s *ClientService) List(ctx context.Context, input ports.ListClientsInput) (*ports.ListClientsResult, error) {
	p := input.Principal
	if err := requireCapability(p, access.CapClientView); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	page := input.Page
	if page < 1 {
		page = 1
	}

	accessible, err := s.resolver.AccessibleClientIDs(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(accessible) == 0 {
		return &ports.ListClientsResult{Items: []ports.ClientSummary{}, Page: page, Limit: limit}, nil
	}

	// Pagination is applied over the already-filtered id set so totals
	// never hint at hidden records.
	start := (page - 1) * limit
	if start > len(accessible) {
		start = len(accessible)
	}
	end := start + limit
	if end > len(accessible) {
		end = len(accessible)
	}

	items := make([]ports.ClientSummary, 0, end-start)
	for _, id := range accessible[start:end] {
		client, err := s.clients.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if input.Status != "" && client.Status != input.Status {
			continue
		}
		items = append(items, s.summarize(p, client))
	}

	total := int64(len(accessible))
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListClientsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Get fetches one client through the canonical access check.
func (s *ClientService) Get(ctx context.Context, p domain.Principal, clientID string) (*ports.ClientSummary, error) {
	client, err := s.resolver.ResolveOrDeny(ctx, p, clientID)
	if err != nil {
		return nil, err
	}
	summary := s.summarize(p, client)
	return &summary, nil
}

// SetSharing changes the cross-program sharing preference with a
// compare-and-set against the expected current value.
func (s *ClientService) SetSharing(ctx context.Context, p domain.Principal, clientID string, old, new domain.SharingPreference) error {
	if err := requireCapability(p, access.CapClientEdit); err != nil {
		return err
	}
	client, err := s.resolver.ResolveOrDeny(ctx, p, clientID)
	if err != nil {
		return err
	}
	if err := s.clients.UpdateSharing(ctx, client.ID, old, new); err != nil {
		return err
	}
	return s.audit.Record(ctx, ports.AuditEntry{
		Principal:    &p,
		Action:       domain.AuditActionSharingChange,
		ResourceType: "client",
		ResourceID:   client.ID,
		OldValues:    map[string]any{"cross_program_sharing": string(old)},
		NewValues:    map[string]any{"cross_program_sharing": string(new)},
		IsDemo:       client.IsDemo,
	})
}

// SetStatus changes the lifecycle status and publishes the change to the
// synchronous event bus, so dependent side effects (portal account
// deactivation) run inside the same operation with explicit ordering.
func (s *ClientService) SetStatus(ctx context.Context, p domain.Principal, clientID string, old, new domain.ClientStatus) error {
	if err := requireCapability(p, access.CapClientEdit); err != nil {
		return err
	}
	client, err := s.resolver.ResolveOrDeny(ctx, p, clientID)
	if err != nil {
		return err
	}
	if err := s.clients.UpdateStatus(ctx, client.ID, old, new); err != nil {
		return err
	}
	if err := s.events.Publish(domain.ClientStatusChanged{ClientID: client.ID, Old: old, New: new}); err != nil {
		return err
	}
	return s.audit.Record(ctx, ports.AuditEntry{
		Principal:    &p,
		Action:       domain.AuditActionStatusChange,
		ResourceType: "client",
		ResourceID:   client.ID,
		OldValues:    map[string]any{"status": string(old)},
		NewValues:    map[string]any{"status": string(new)},
		IsDemo:       client.IsDemo,
	})
}
