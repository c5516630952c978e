package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// CreateNoteInput carries the data for a new case note.
type CreateNoteInput struct {
	Principal domain.Principal
	ClientID  string
	Body      string
	// ViewingProgram optionally pins the authoring program; otherwise the
	// resolver picks one.
	ViewingProgram string
}

// NoteSearchMatch is one hit from a note content search. Fragment is a short
// excerpt around the match; it is produced only after the note has passed
// the consent filter, so a match is never observable for content the caller
// could not open.
type NoteSearchMatch struct {
	Note     *domain.CaseNote
	Fragment string
}

// NoteService owns note reads and writes, layering the resolver, the
// consent filter and the audit trail over the repository.
type NoteService interface {
	List(ctx context.Context, p domain.Principal, clientID, viewingProgram string) (*FilteredNotes, error)
	Get(ctx context.Context, p domain.Principal, noteID string) (*domain.CaseNote, error)
	Create(ctx context.Context, input CreateNoteInput) (*domain.CaseNote, error)
	// Search scans note content for a term across one client's notes,
	// consent-filtered before any match is reported.
	Search(ctx context.Context, p domain.Principal, clientID, term string) ([]NoteSearchMatch, error)
}
