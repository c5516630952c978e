package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/casefile-io/access-engine/internal/core/access"
	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// minVisibleMembers is the small-group safety threshold: a care group stays
// visible while at least this many resource-backed members remain visible to
// the principal. Below it the whole group is hidden, because in a small
// household rendering one member while silently omitting another reveals the
// blocked person's existence by absence. Free-text members carry no
// protected status and never count.
const minVisibleMembers = 2

// GroupService lists care groups with block-aware, all-or-nothing
// visibility.
type GroupService struct {
	groups   ports.GroupRepository
	resolver ports.ResolverService
	blocks   ports.BlockRepository
	logger   zerolog.Logger
}

func NewGroupService(groups ports.GroupRepository, resolver ports.ResolverService, blocks ports.BlockRepository, logger zerolog.Logger) *GroupService {
	return &GroupService{groups: groups, resolver: resolver, blocks: blocks, logger: logger}
}

// ListForClient returns the groups the principal may see for one client.
func (s *GroupService) ListForClient(ctx context.Context, p domain.Principal, clientID string) ([]ports.GroupView, error) {
	if err := requireCapability(p, access.CapGroupView); err != nil {
		return nil, err
	}
	if _, err := s.resolver.ResolveOrDeny(ctx, p, clientID); err != nil {
		return nil, err
	}

	groups, err := s.groups.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var views []ports.GroupView
	for _, group := range groups {
		if group.IsDemo != p.IsDemo {
			continue
		}
		visible, err := s.groupVisible(ctx, p, group)
		if err != nil {
			return nil, err
		}
		if visible {
			views = append(views, ports.GroupView{Group: group})
		}
	}
	return views, nil
}

// groupVisible decides all-or-nothing visibility for one group. A group with
// no resource-backed members at all has nothing protected to leak and
// remains visible when any member is accessible. Once blocks remove members,
// the visible resource-backed count must stay at or above the threshold or
// the whole group is hidden.
func (s *GroupService) groupVisible(ctx context.Context, p domain.Principal, group *domain.CareGroup) (bool, error) {
	linked := group.LinkedClientIDs()
	if len(linked) == 0 {
		return true, nil
	}

	visibleLinked := 0
	anyBlocked := false
	for _, clientID := range linked {
		_, err := s.blocks.ActiveBlock(ctx, p.ID, clientID)
		switch {
		case err == nil:
			anyBlocked = true
			continue
		case !errors.Is(err, domain.ErrNotFound):
			// Fail closed: an unreadable blocklist hides the group.
			s.logger.Error().Err(err).Str("group_id", group.ID).Msg("block lookup failed, hiding group")
			return false, nil
		}
		if _, err := s.resolver.ResolveOrDeny(ctx, p, clientID); err == nil {
			visibleLinked++
		}
	}

	if visibleLinked == 0 {
		return false, nil
	}
	if anyBlocked && visibleLinked < minVisibleMembers {
		return false, nil
	}
	return true, nil
}
