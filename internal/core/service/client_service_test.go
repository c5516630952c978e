package service

import (
	"context"
	"errors"
	"testing"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

type clientFixture struct {
	service *ClientService
	clients *stubClientRepo
	blocks  *stubBlockRepo
	audit   *stubAuditRepo
	portal  *stubPortalRepo
}

func newClientFixture(clients ...*domain.Client) *clientFixture {
	clientRepo := newStubClientRepo(clients...)
	blocks := newStubBlockRepo()
	resolver := newResolver(clientRepo, blocks)
	auditRepo := &stubAuditRepo{}
	audit := NewAuditService(auditRepo, discardLogger)
	events := domain.NewEventBus()
	portal := &stubPortalRepo{}
	RegisterPortalListeners(events, portal, audit, discardLogger)
	return &clientFixture{
		service: NewClientService(clientRepo, resolver, audit, events, discardLogger),
		clients: clientRepo,
		blocks:  blocks,
		audit:   auditRepo,
		portal:  portal,
	}
}

// ---------------------------------------------------------------------------
// Listing
// ---------------------------------------------------------------------------

func TestClientList_BlockedClientsAbsent(t *testing.T) {
	f := newClientFixture(
		clientWith("c1", false, "housing"),
		clientWith("c2", false, "housing"),
		clientWith("c3", false, "housing"),
	)
	f.blocks.block("u1", "c2")
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	result, err := f.service.List(context.Background(), ports.ListClientsInput{Principal: p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("totals must not hint at hidden records, got %d", result.Total)
	}
	for _, item := range result.Items {
		if item.ID == "c2" {
			t.Fatalf("blocked client must be absent from the list")
		}
	}
}

func TestClientList_PaginationOverFilteredSet(t *testing.T) {
	f := newClientFixture(
		clientWith("c1", false, "housing"),
		clientWith("c2", false, "housing"),
		clientWith("c3", false, "housing"),
	)
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	result, err := f.service.List(context.Background(), ports.ListClientsInput{
		Principal: p, Page: 2, Limit: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 3 || result.TotalPages != 2 {
		t.Fatalf("wrong totals: %d/%d", result.Total, result.TotalPages)
	}
	if len(result.Items) != 1 {
		t.Fatalf("second page of three holds one item, got %d", len(result.Items))
	}
}

func TestClientList_PageBeyondEndIsEmpty(t *testing.T) {
	f := newClientFixture(clientWith("c1", false, "housing"))
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	result, err := f.service.List(context.Background(), ports.ListClientsInput{
		Principal: p, Page: 5, Limit: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 0 {
		t.Fatalf("page past the end is empty, got %d items", len(result.Items))
	}
}

func TestClientList_ExecutiveDenied(t *testing.T) {
	f := newClientFixture(clientWith("c1", false, "housing"))
	p := principalWith("u1", false, grant("housing", domain.RoleExecutive))

	if _, err := f.service.List(context.Background(), ports.ListClientsInput{Principal: p}); !errors.Is(err, domain.ErrPolicyDenied) {
		t.Fatalf("executive has no record access, got %v", err)
	}
}

func TestClientGet_DVFlagVisibilityPerRole(t *testing.T) {
	client := clientWith("c1", false, "housing")
	client.DVSafe = true
	f := newClientFixture(client)

	caseWorker := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))
	summary, err := f.service.Get(context.Background(), caseWorker, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.ShowDVSafe || !summary.DVSafe {
		t.Fatalf("case worker may observe the flag: %+v", summary)
	}

	frontDesk := principalWith("u2", false, grant("housing", domain.RoleFrontDesk))
	summary, err = f.service.Get(context.Background(), frontDesk, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.ShowDVSafe {
		t.Fatalf("front desk must not observe the flag: %+v", summary)
	}
}

// ---------------------------------------------------------------------------
// Guarded mutations
// ---------------------------------------------------------------------------

func TestClientSetSharing_CompareAndSet(t *testing.T) {
	f := newClientFixture(clientWith("c1", false, "housing"))
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))
	ctx := context.Background()

	if err := f.service.SetSharing(ctx, p, "c1", domain.SharingDefault, domain.SharingConsent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.clients.byID["c1"].Sharing != domain.SharingConsent {
		t.Fatalf("sharing not updated")
	}
	if f.audit.lastAction() != domain.AuditActionSharingChange {
		t.Fatalf("sharing change must be audited")
	}

	// A stale expected value loses the compare-and-set.
	if err := f.service.SetSharing(ctx, p, "c1", domain.SharingDefault, domain.SharingRestrict); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("stale CAS must fail, got %v", err)
	}
}

func TestClientSetStatus_ExitDeactivatesPortalAccount(t *testing.T) {
	f := newClientFixture(clientWith("c1", false, "housing"))
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	if err := f.service.SetStatus(context.Background(), p, "c1", domain.ClientActive, domain.ClientExited); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.clients.byID["c1"].Status != domain.ClientExited {
		t.Fatalf("status not updated")
	}
	if len(f.portal.deactivated) != 1 || f.portal.deactivated[0] != "c1" {
		t.Fatalf("portal account must be deactivated on exit, got %v", f.portal.deactivated)
	}
}

func TestClientSetStatus_PortalFailureAbortsOperation(t *testing.T) {
	f := newClientFixture(clientWith("c1", false, "housing"))
	f.portal.err = errors.New("portal store down")
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	err := f.service.SetStatus(context.Background(), p, "c1", domain.ClientActive, domain.ClientExited)
	if err == nil {
		t.Fatalf("listener failure must abort the operation")
	}
	if f.audit.lastAction() == domain.AuditActionStatusChange {
		t.Fatalf("a failed operation must not be audited as a success")
	}
}

func TestClientSetStatus_FrontDeskDenied(t *testing.T) {
	f := newClientFixture(clientWith("c1", false, "housing"))
	p := principalWith("u1", false, grant("housing", domain.RoleFrontDesk))

	if err := f.service.SetStatus(context.Background(), p, "c1", domain.ClientActive, domain.ClientInactive); !errors.Is(err, domain.ErrPolicyDenied) {
		t.Fatalf("front desk cannot change status, got %v", err)
	}
}
