package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// RegisterInput carries the data needed to create a staff account.
type RegisterInput struct {
	Username     string
	Password     string
	Email        string
	DisplayLabel string
	IsAdmin      bool
	IsDemo       bool
	Grants       []domain.RoleGrant
}

// AuthService issues the signed tokens from which the auth middleware
// reconstructs a Principal on every request.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (token string, user *domain.User, err error)
}
