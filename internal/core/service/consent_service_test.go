package service

import (
	"context"
	"errors"
	"testing"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

func newConsentFixture(client *domain.Client, toggleValue, toggleKnown bool) (*ConsentService, *stubToggleRepo) {
	clients := newStubClientRepo(client)
	resolver := newResolver(clients, newStubBlockRepo())
	toggles := newStubToggleRepo()
	if toggleKnown {
		toggles.values[ports.ToggleCrossProgramSharing] = toggleValue
	}
	toggleService := NewToggleService(toggles, nil, NewAuditService(&stubAuditRepo{}, discardLogger), discardLogger)
	return NewConsentService(resolver, toggleService, discardLogger), toggles
}

// ---------------------------------------------------------------------------
// ShouldShareAcrossPrograms
// ---------------------------------------------------------------------------

func TestShouldShare_ClientConsentWinsOverToggle(t *testing.T) {
	client := clientWith("c1", false, "housing")
	client.Sharing = domain.SharingConsent
	s, _ := newConsentFixture(client, false, true)

	share, err := s.ShouldShareAcrossPrograms(context.Background(), client)
	if err != nil || !share {
		t.Fatalf("consent must win over a disabled toggle: %v %v", share, err)
	}
}

func TestShouldShare_ClientRestrictWinsOverToggle(t *testing.T) {
	client := clientWith("c1", false, "housing")
	client.Sharing = domain.SharingRestrict
	s, _ := newConsentFixture(client, true, true)

	share, err := s.ShouldShareAcrossPrograms(context.Background(), client)
	if err != nil || share {
		t.Fatalf("restrict must win over an enabled toggle: %v %v", share, err)
	}
}

func TestShouldShare_DefaultDefersToToggle(t *testing.T) {
	client := clientWith("c1", false, "housing")
	s, _ := newConsentFixture(client, true, true)

	share, err := s.ShouldShareAcrossPrograms(context.Background(), client)
	if err != nil || !share {
		t.Fatalf("default must defer to the toggle: %v %v", share, err)
	}
}

func TestShouldShare_ToggleFailureFailsClosed(t *testing.T) {
	client := clientWith("c1", false, "housing")
	s, toggles := newConsentFixture(client, false, false)
	toggles.getErr = errors.New("store down")

	share, err := s.ShouldShareAcrossPrograms(context.Background(), client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if share {
		t.Fatalf("a failing toggle read must count as sharing disabled")
	}
}

// ---------------------------------------------------------------------------
// FilterNotes
// ---------------------------------------------------------------------------

func notesFor(clientID string) []*domain.CaseNote {
	return []*domain.CaseNote{
		{ID: "n1", ClientID: clientID, ProgramID: strptr("housing"), Body: "housing note"},
		{ID: "n2", ClientID: clientID, ProgramID: strptr("employment"), Body: "employment note"},
		{ID: "n3", ClientID: clientID, ProgramID: nil, Body: "legacy note"},
	}
}

func TestFilterNotes_SharingEnabledShowsAll(t *testing.T) {
	client := clientWith("c1", false, "housing", "employment")
	client.Sharing = domain.SharingConsent
	s, _ := newConsentFixture(client, false, true)
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	filtered, err := s.FilterNotes(context.Background(), notesFor("c1"), client, p, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered.Notes) != 3 {
		t.Fatalf("expected all notes, got %d", len(filtered.Notes))
	}
}

func TestFilterNotes_RestrictNarrowsToViewingProgram(t *testing.T) {
	client := clientWith("c1", false, "housing", "employment")
	client.Sharing = domain.SharingRestrict
	s, _ := newConsentFixture(client, true, true)
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	filtered, err := s.FilterNotes(context.Background(), notesFor("c1"), client, p, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered.Notes) != 2 {
		t.Fatalf("expected housing + legacy notes, got %d", len(filtered.Notes))
	}
	for _, note := range filtered.Notes {
		if note.ProgramID != nil && *note.ProgramID != "housing" {
			t.Fatalf("foreign-program note leaked: %s", note.ID)
		}
	}
	if filtered.ViewingProgram != "housing" {
		t.Fatalf("expected viewing program housing, got %q", filtered.ViewingProgram)
	}
}

func TestFilterNotes_LegacyNotesAlwaysVisible(t *testing.T) {
	client := clientWith("c1", false, "housing")
	client.Sharing = domain.SharingRestrict
	s, _ := newConsentFixture(client, false, true)
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	filtered, err := s.FilterNotes(context.Background(), []*domain.CaseNote{
		{ID: "n1", ClientID: "c1", ProgramID: nil, Body: "legacy"},
	}, client, p, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered.Notes) != 1 {
		t.Fatalf("legacy note must stay visible")
	}
}

func TestFilterNotes_NoResolvableProgramShowsNothing(t *testing.T) {
	client := clientWith("c1", false, "housing")
	client.Sharing = domain.SharingRestrict
	s, _ := newConsentFixture(client, false, true)
	// Grant in a program the client is not enrolled in.
	p := principalWith("u1", false, grant("employment", domain.RoleCaseWorker))

	filtered, err := s.FilterNotes(context.Background(), notesFor("c1"), client, p, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered.Notes) != 0 {
		t.Fatalf("expected empty set, got %d notes", len(filtered.Notes))
	}
}

// ---------------------------------------------------------------------------
// CheckNoteOrDeny
// ---------------------------------------------------------------------------

func TestCheckNoteOrDeny_ForeignProgramNote(t *testing.T) {
	client := clientWith("c1", false, "housing", "employment")
	client.Sharing = domain.SharingRestrict
	s, _ := newConsentFixture(client, false, true)
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	note := &domain.CaseNote{ID: "n2", ClientID: "c1", ProgramID: strptr("employment")}
	if err := s.CheckNoteOrDeny(context.Background(), note, client, p); !errors.Is(err, domain.ErrPolicyDenied) {
		t.Fatalf("expected explicit denial, got %v", err)
	}
}

func TestCheckNoteOrDeny_OwnProgramNote(t *testing.T) {
	client := clientWith("c1", false, "housing")
	client.Sharing = domain.SharingRestrict
	s, _ := newConsentFixture(client, false, true)
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	note := &domain.CaseNote{ID: "n1", ClientID: "c1", ProgramID: strptr("housing")}
	if err := s.CheckNoteOrDeny(context.Background(), note, client, p); err != nil {
		t.Fatalf("expected access, got %v", err)
	}
}
