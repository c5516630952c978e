package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// FilteredNotes is the result of running a note collection through the
// consent filter. ViewingProgram is the program the notes were filtered to,
// or "" when sharing was enabled (no narrowing) or nothing was visible.
type FilteredNotes struct {
	Notes          []*domain.CaseNote
	ViewingProgram string
}

// ConsentService is the cross-program visibility filter for clinical notes.
// It is fail-closed by construction: when sharing is disabled and no viewing
// program can be resolved, the answer is the empty set, never the unfiltered
// one.
type ConsentService interface {
	// ShouldShareAcrossPrograms resolves the effective sharing rule for one
	// client: the per-client tri-state wins, SharingDefault defers to the
	// agency-wide toggle.
	ShouldShareAcrossPrograms(ctx context.Context, client *domain.Client) (bool, error)
	// FilterNotes returns the subset of notes the principal may see for
	// this client. Notes with no authoring program are always visible.
	FilterNotes(ctx context.Context, notes []*domain.CaseNote, client *domain.Client, p domain.Principal, viewingProgram string) (*FilteredNotes, error)
	// CheckNoteOrDeny applies the same rule to a single fetched note and
	// returns domain.ErrPolicyDenied instead of silently omitting it.
	CheckNoteOrDeny(ctx context.Context, note *domain.CaseNote, client *domain.Client, p domain.Principal) error
}
