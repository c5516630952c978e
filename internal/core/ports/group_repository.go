package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// GroupRepository is the persistence port for care groups.
type GroupRepository interface {
	FindByID(ctx context.Context, id string) (*domain.CareGroup, error)
	// ListByClient returns every group that has a member linked to the
	// given client record.
	ListByClient(ctx context.Context, clientID string) ([]*domain.CareGroup, error)
	Create(ctx context.Context, group *domain.CareGroup) error
}

// PortalAccountRepository manages the client-facing portal accounts that
// hang off client records. The engine only ever deactivates them, in
// reaction to a client status change.
type PortalAccountRepository interface {
	DeactivateByClient(ctx context.Context, clientID string) error
}
