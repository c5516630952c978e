package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// ToggleService reads agency-wide feature toggles through the short-TTL
// cache and exposes the single admin write path, which invalidates the
// cache entry in the same call.
type ToggleService interface {
	Enabled(ctx context.Context, name string) (bool, error)
	// Set requires the admin flag: toggles are system configuration, the
	// one thing admin status grants.
	Set(ctx context.Context, p domain.Principal, name string, value bool) error
}
