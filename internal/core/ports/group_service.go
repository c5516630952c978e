package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// GroupView is a care group as rendered for one principal. Hidden members
// are never partially rendered: the service returns either the whole group
// or nothing.
type GroupView struct {
	Group *domain.CareGroup
}

// GroupService lists care groups with block-aware visibility. A group is
// visible when at least one member is accessible, unless deactivating a
// blocked member would leave fewer visible resource-backed members than the
// safety threshold, in which case the whole group is hidden.
type GroupService interface {
	ListForClient(ctx context.Context, p domain.Principal, clientID string) ([]GroupView, error)
}
