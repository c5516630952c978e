package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/casefile-io/access-engine/internal/api/metrics"
	"github.com/casefile-io/access-engine/internal/core/access"
	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// ConsentService filters clinical notes across program boundaries. Every
// ambiguous or failing path resolves to "show nothing".
type ConsentService struct {
	resolver ports.ResolverService
	toggles  ports.ToggleService
	logger   zerolog.Logger
}

func NewConsentService(resolver ports.ResolverService, toggles ports.ToggleService, logger zerolog.Logger) *ConsentService {
	return &ConsentService{resolver: resolver, toggles: toggles, logger: logger}
}

// ShouldShareAcrossPrograms resolves the effective sharing rule: the
// client's tri-state wins, SharingDefault defers to the agency toggle. A
// toggle read failure counts as sharing disabled.
func (s *ConsentService) ShouldShareAcrossPrograms(ctx context.Context, client *domain.Client) (bool, error) {
	switch client.Sharing {
	case domain.SharingConsent:
		return true, nil
	case domain.SharingRestrict:
		return false, nil
	}
	enabled, err := s.toggles.Enabled(ctx, ports.ToggleCrossProgramSharing)
	if err != nil {
		s.logger.Error().Err(err).Str("client_id", client.ID).Msg("sharing toggle unavailable, failing closed")
		return false, nil
	}
	return enabled, nil
}

// FilterNotes returns the notes the principal may see for this client. With
// sharing enabled every note is visible. Otherwise notes are narrowed to a
// single viewing program: the caller's explicit selection when given, else
// the resolved authoring program. Notes with no authoring program are
// legacy/neutral data and always visible. No resolvable viewing program
// means the empty set.
func (s *ConsentService) FilterNotes(ctx context.Context, notes []*domain.CaseNote, client *domain.Client, p domain.Principal, viewingProgram string) (*ports.FilteredNotes, error) {
	share, err := s.ShouldShareAcrossPrograms(ctx, client)
	if err != nil {
		return &ports.FilteredNotes{}, nil
	}
	if share {
		return &ports.FilteredNotes{Notes: notes}, nil
	}

	program := s.resolver.AuthorProgram(p, client, access.CapNoteView, viewingProgram)
	if program == "" {
		metrics.NotesFilteredTotal.Add(float64(len(notes)))
		return &ports.FilteredNotes{Notes: []*domain.CaseNote{}}, nil
	}

	visible := make([]*domain.CaseNote, 0, len(notes))
	for _, note := range notes {
		if note.ProgramID == nil || *note.ProgramID == program {
			visible = append(visible, note)
		}
	}
	metrics.NotesFilteredTotal.Add(float64(len(notes) - len(visible)))
	return &ports.FilteredNotes{Notes: visible, ViewingProgram: program}, nil
}

// CheckNoteOrDeny applies the filter to a single fetched note. The caller
// already holds a specific id, so the answer is an explicit denial rather
// than a silent omission.
func (s *ConsentService) CheckNoteOrDeny(ctx context.Context, note *domain.CaseNote, client *domain.Client, p domain.Principal) error {
	filtered, err := s.FilterNotes(ctx, []*domain.CaseNote{note}, client, p, "")
	if err != nil {
		return domain.ErrPolicyDenied
	}
	for _, visible := range filtered.Notes {
		if visible.ID == note.ID {
			return nil
		}
	}
	return domain.ErrPolicyDenied
}
