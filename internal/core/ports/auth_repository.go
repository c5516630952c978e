package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// UserRepository is the persistence port for staff accounts, including their
// role grants.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Grant adds an active role grant; Revoke flips an active grant to
	// revoked (compare-and-set on status).
	Grant(ctx context.Context, userID string, grant domain.RoleGrant) error
	Revoke(ctx context.Context, userID, programID string, role domain.Role) error
}
