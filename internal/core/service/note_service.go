package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/casefile-io/access-engine/internal/core/access"
	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// fragmentRadius bounds the excerpt returned around a search match.
const fragmentRadius = 40

// NoteService layers the resolver, consent filter and audit trail over the
// note repository.
type NoteService struct {
	notes    ports.NoteRepository
	resolver ports.ResolverService
	consent  ports.ConsentService
	audit    ports.AuditService
	logger   zerolog.Logger
}

func NewNoteService(notes ports.NoteRepository, resolver ports.ResolverService, consent ports.ConsentService, audit ports.AuditService, logger zerolog.Logger) *NoteService {
	return &NoteService{notes: notes, resolver: resolver, consent: consent, audit: audit, logger: logger}
}

// requireNoteCapability checks the role-global half of a note capability for
// the resolved program.
func requireNoteCapability(p domain.Principal, programID string, cap access.Capability) error {
	for _, role := range p.RolesIn(programID) {
		if access.CanAccess(role, cap) != access.Deny {
			return nil
		}
	}
	return domain.ErrPolicyDenied
}

// List returns the consent-filtered notes for one client.
func (s *NoteService) List(ctx context.Context, p domain.Principal, clientID, viewingProgram string) (*ports.FilteredNotes, error) {
	client, err := s.resolver.ResolveOrDeny(ctx, p, clientID)
	if err != nil {
		return nil, err
	}
	program := s.resolver.AuthorProgram(p, client, access.CapNoteView, viewingProgram)
	if program == "" {
		return nil, domain.ErrPolicyDenied
	}
	if err := requireNoteCapability(p, program, access.CapNoteView); err != nil {
		return nil, err
	}

	notes, err := s.notes.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s.consent.FilterNotes(ctx, notes, client, p, viewingProgram)
}

// Get fetches a single note, denying explicitly where a list would omit.
func (s *NoteService) Get(ctx context.Context, p domain.Principal, noteID string) (*domain.CaseNote, error) {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	client, err := s.resolver.ResolveOrDeny(ctx, p, note.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The note exists but its client is gone; keep the two cases
			// distinguishable for the caller.
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	program := s.resolver.AuthorProgram(p, client, access.CapNoteView, "")
	if program == "" {
		return nil, domain.ErrPolicyDenied
	}
	if err := requireNoteCapability(p, program, access.CapNoteView); err != nil {
		return nil, err
	}
	if err := s.consent.CheckNoteOrDeny(ctx, note, client, p); err != nil {
		return nil, err
	}
	return note, nil
}

// Create authors a new note under the resolved program and audits it before
// reporting success.
func (s *NoteService) Create(ctx context.Context, input ports.CreateNoteInput) (*domain.CaseNote, error) {
	p := input.Principal
	client, err := s.resolver.ResolveOrDeny(ctx, p, input.ClientID)
	if err != nil {
		return nil, err
	}
	program := s.resolver.AuthorProgram(p, client, access.CapNoteCreate, input.ViewingProgram)
	if program == "" {
		return nil, domain.ErrPolicyDenied
	}
	if err := requireNoteCapability(p, program, access.CapNoteCreate); err != nil {
		return nil, err
	}

	note := &domain.CaseNote{
		ID:        uuid.NewString(),
		ClientID:  client.ID,
		ProgramID: &program,
		AuthorID:  p.ID,
		Body:      input.Body,
		IsDemo:    client.IsDemo,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		s.logger.Error().Err(err).Str("client_id", client.ID).Msg("failed to create note")
		return nil, err
	}

	if err := s.audit.Record(ctx, ports.AuditEntry{
		Principal:    &p,
		Action:       domain.AuditActionCreate,
		ResourceType: "case_note",
		ResourceID:   note.ID,
		NewValues:    map[string]any{"client_id": client.ID, "program_id": program},
		IsDemo:       client.IsDemo,
	}); err != nil {
		return nil, err
	}

	s.logger.Info().Str("note_id", note.ID).Str("program_id", program).Msg("note created")
	return note, nil
}

// Search scans one client's notes for a term. The consent filter runs before
// matching, so a hit is never observable for a note the caller could not
// open, and fragments are cut only from already-visible bodies.
func (s *NoteService) Search(ctx context.Context, p domain.Principal, clientID, term string) ([]ports.NoteSearchMatch, error) {
	client, err := s.resolver.ResolveOrDeny(ctx, p, clientID)
	if err != nil {
		return nil, err
	}
	program := s.resolver.AuthorProgram(p, client, access.CapNoteSearch, "")
	if program == "" {
		return nil, domain.ErrPolicyDenied
	}
	if err := requireNoteCapability(p, program, access.CapNoteSearch); err != nil {
		return nil, err
	}

	notes, err := s.notes.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	filtered, err := s.consent.FilterNotes(ctx, notes, client, p, "")
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil, nil
	}
	var matches []ports.NoteSearchMatch
	for _, note := range filtered.Notes {
		idx := strings.Index(strings.ToLower(note.Body), needle)
		if idx < 0 {
			continue
		}
		matches = append(matches, ports.NoteSearchMatch{
			Note:     note,
			Fragment: fragment(note.Body, idx, len(needle)),
		})
	}
	return matches, nil
}

// fragment cuts a short excerpt around a match, respecting rune boundaries
// loosely by trimming to valid byte offsets.
func fragment(body string, idx, matchLen int) string {
	start := idx - fragmentRadius
	if start < 0 {
		start = 0
	}
	end := idx + matchLen + fragmentRadius
	if end > len(body) {
		end = len(body)
	}
	for start > 0 && start < len(body) && (body[start]&0xC0) == 0x80 {
		start--
	}
	for end < len(body) && (body[end]&0xC0) == 0x80 {
		end++
	}
	return body[start:end]
}
