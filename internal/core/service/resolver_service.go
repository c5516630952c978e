package service

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/casefile-io/access-engine/internal/api/metrics"
	"github.com/casefile-io/access-engine/internal/core/access"
	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// ResolverService computes program-scoped access. Decisions are evaluated
// fresh on every call; nothing here is cached across requests.
type ResolverService struct {
	clients ports.ClientRepository
	blocks  ports.BlockRepository
	logger  zerolog.Logger
}

func NewResolverService(clients ports.ClientRepository, blocks ports.BlockRepository, logger zerolog.Logger) *ResolverService {
	return &ResolverService{clients: clients, blocks: blocks, logger: logger}
}

// AccessiblePrograms returns the programs where the principal holds an
// active grant. Admin status never substitutes for a grant.
func (s *ResolverService) AccessiblePrograms(p domain.Principal) []string {
	return p.Programs()
}

// AccessibleClientIDs returns every client id the principal may list:
// enrolled in an accessible program, in the principal's demo universe, and
// not actively blocked.
func (s *ResolverService) AccessibleClientIDs(ctx context.Context, p domain.Principal) ([]string, error) {
	programs := p.Programs()
	if len(programs) == 0 {
		return nil, nil
	}

	clients, _, err := s.clients.List(ctx, ports.ListClientsFilter{
		ProgramIDs: programs,
		IsDemo:     p.IsDemo,
	})
	if err != nil {
		return nil, err
	}

	blockedIDs, err := s.blocks.ActiveClientIDs(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	blocked := make(map[string]struct{}, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = struct{}{}
	}

	ids := make([]string, 0, len(clients))
	for _, c := range clients {
		if _, hidden := blocked[c.ID]; hidden {
			continue
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// AuthorProgram picks the single program that authors a new record for this
// principal and client. An explicit viewing-program selection by the caller
// always wins; otherwise programs whose roles all deny the capability are
// avoided while an alternative exists, remaining ties break by highest role
// rank and then lexicographic program id for determinism. Returns "" when no
// shared program qualifies.
func (s *ResolverService) AuthorProgram(p domain.Principal, client *domain.Client, cap access.Capability, viewingProgram string) string {
	shared := client.SharedPrograms(p)
	if len(shared) == 0 {
		return ""
	}

	if viewingProgram != "" {
		for _, id := range shared {
			if id == viewingProgram {
				return id
			}
		}
		// An explicit selection of a program the pair does not share
		// resolves nothing rather than falling back to the heuristic.
		return ""
	}

	type candidate struct {
		id   string
		rank int
	}
	var permitted, denied []candidate
	for _, id := range shared {
		bestRank := -1
		for _, role := range p.RolesIn(id) {
			if cap != "" && access.CanAccess(role, cap) == access.Deny {
				continue
			}
			if role.Rank() > bestRank {
				bestRank = role.Rank()
			}
		}
		if bestRank >= 0 {
			permitted = append(permitted, candidate{id: id, rank: bestRank})
			continue
		}
		// Keep capability-denying programs as a last resort so a
		// low-permission role is not shadowed out of a shared program
		// entirely.
		if role, ok := p.HighestRoleIn(id); ok {
			denied = append(denied, candidate{id: id, rank: role.Rank()})
		}
	}

	pool := permitted
	if len(pool) == 0 {
		pool = denied
	}
	if len(pool) == 0 {
		return ""
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].rank != pool[j].rank {
			return pool[i].rank > pool[j].rank
		}
		return pool[i].id < pool[j].id
	})
	return pool[0].id
}

// ResolveOrDeny is the canonical fetch-by-id access check. Order, each step
// short-circuiting: the record exists; no active block for this principal
// (blocks override grants unconditionally); same demo universe; a shared
// active program. The admin flag is never consulted.
func (s *ResolverService) ResolveOrDeny(ctx context.Context, p domain.Principal, clientID string) (*domain.Client, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	_, err = s.blocks.ActiveBlock(ctx, p.ID, clientID)
	switch {
	case err == nil:
		metrics.BlockedLookupsTotal.Inc()
		return nil, domain.ErrPolicyDenied
	case !errors.Is(err, domain.ErrNotFound):
		// Fail closed: an unreadable blocklist denies rather than allows.
		s.logger.Error().Err(err).Str("client_id", clientID).Msg("block lookup failed")
		return nil, err
	}

	if client.IsDemo != p.IsDemo {
		return nil, domain.ErrPolicyDenied
	}

	if len(client.SharedPrograms(p)) == 0 {
		return nil, domain.ErrPolicyDenied
	}

	return client, nil
}

// permissiveness orders levels for reporting a role-global decision when
// several grants answer differently.
var permissiveness = map[access.Level]int{
	access.Deny:     0,
	access.Gated:    1,
	access.PerField: 2,
	access.Program:  3,
	access.Allow:    4,
}

// Decide evaluates one capability question, recording the outcome metric.
func (s *ResolverService) Decide(ctx context.Context, input ports.DecisionInput) (*ports.Decision, error) {
	if !input.Capability.Valid() {
		metrics.DecisionsTotal.WithLabelValues("deny").Inc()
		return &ports.Decision{Allowed: false, Level: access.Deny}, nil
	}
	p := input.Principal

	if input.ClientID == "" {
		level := access.Deny
		for _, g := range p.Grants {
			if !g.Active() {
				continue
			}
			if l := access.CanAccess(g.Role, input.Capability); permissiveness[l] > permissiveness[level] {
				level = l
			}
		}
		decision := &ports.Decision{Allowed: level != access.Deny, Level: level}
		metrics.DecisionsTotal.WithLabelValues(outcome(decision.Allowed)).Inc()
		return decision, nil
	}

	client, err := s.ResolveOrDeny(ctx, p, input.ClientID)
	if err != nil {
		metrics.DecisionsTotal.WithLabelValues("deny").Inc()
		return &ports.Decision{Allowed: false, Level: access.Deny}, err
	}

	programID := s.AuthorProgram(p, client, input.Capability, input.ViewingProgram)
	if programID == "" {
		metrics.DecisionsTotal.WithLabelValues("deny").Inc()
		return &ports.Decision{Allowed: false, Level: access.Deny}, domain.ErrPolicyDenied
	}

	level := access.Deny
	for _, role := range p.RolesIn(programID) {
		if l := access.CanAccess(role, input.Capability); permissiveness[l] > permissiveness[level] {
			level = l
		}
	}
	decision := &ports.Decision{Allowed: level != access.Deny, Level: level, ProgramID: programID}
	if !decision.Allowed {
		decision.ProgramID = ""
		metrics.DecisionsTotal.WithLabelValues("deny").Inc()
		return decision, domain.ErrPolicyDenied
	}
	metrics.DecisionsTotal.WithLabelValues("allow").Inc()
	return decision, nil
}

func outcome(allowed bool) string {
	if allowed {
		return "allow"
	}
	return "deny"
}
