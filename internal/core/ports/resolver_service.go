package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/access"
	"github.com/casefile-io/access-engine/internal/core/domain"
)

// DecisionInput is one access question: may this principal exercise this
// capability, optionally against a specific client?
type DecisionInput struct {
	Principal  domain.Principal
	Capability access.Capability
	ClientID   string
	// ViewingProgram is an explicit narrowing supplied by the caller (a UI
	// context switch). When set it overrides rank-based tie-breaking.
	ViewingProgram string
}

// Decision is the answer handed back to the gating caller.
type Decision struct {
	Allowed bool         `json:"allowed"`
	Level   access.Level `json:"level"`
	// ProgramID is the resolved authoring program for PROGRAM/GATED
	// capabilities, empty otherwise.
	ProgramID string `json:"program_id,omitempty"`
}

// ResolverService computes which programs and clients a principal may touch.
// It is the single canonical access check: every fetch-by-id in the system
// funnels through ResolveOrDeny.
type ResolverService interface {
	// AccessiblePrograms returns the programs where the principal holds an
	// active grant. The admin flag never substitutes for a grant: an admin
	// with no grants gets an empty set.
	AccessiblePrograms(p domain.Principal) []string
	// AccessibleClientIDs returns the clients enrolled in any accessible
	// program, within the principal's demo universe, minus actively
	// blocked clients.
	AccessibleClientIDs(ctx context.Context, p domain.Principal) ([]string, error)
	// AuthorProgram picks the single program that should author a new
	// record for this principal and client. Programs whose role denies the
	// capability are avoided while an alternative exists; remaining ties
	// break by highest role rank. Returns "" when no shared program
	// exists, which callers must treat as no access.
	AuthorProgram(p domain.Principal, client *domain.Client, cap access.Capability, viewingProgram string) string
	// ResolveOrDeny fetches a client iff the principal may see it. Check
	// order, each short-circuiting: existence, active block, demo
	// universe, shared program. Returns domain.ErrNotFound or
	// domain.ErrPolicyDenied.
	ResolveOrDeny(ctx context.Context, p domain.Principal, clientID string) (*domain.Client, error)
	// Decide evaluates a capability for gating a request before it
	// proceeds.
	Decide(ctx context.Context, input DecisionInput) (*Decision, error)
}
