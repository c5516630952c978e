package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// ListClientsFilter narrows a client listing. ProgramIDs and IsDemo are
// always set by the resolver; handlers never pass raw caller input here.
type ListClientsFilter struct {
	ProgramIDs []string
	IsDemo     bool
	Status     domain.ClientStatus
	Limit      int
	Offset     int
}

// ClientRepository is the persistence port for client records. FindByID
// returns domain.ErrNotFound when no row exists; access checks are the
// resolver's job, not the repository's.
type ClientRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, filter ListClientsFilter) ([]*domain.Client, int64, error)
	Create(ctx context.Context, client *domain.Client) error
	// UpdateDVSafe flips the DV-safe flag only when the stored value still
	// equals old (row-level compare-and-set). Returns domain.ErrNotFound
	// when no row matched.
	UpdateDVSafe(ctx context.Context, id string, old, new bool) error
	// UpdateSharing changes the sharing preference with the same
	// compare-and-set contract.
	UpdateSharing(ctx context.Context, id string, old, new domain.SharingPreference) error
	UpdateStatus(ctx context.Context, id string, old, new domain.ClientStatus) error
}
