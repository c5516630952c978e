package service

import (
	"context"
	"errors"
	"testing"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

type attrFixture struct {
	service *AttributeService
	attrs   *stubAttrRepo
	audit   *stubAuditRepo
}

var attrTestDefs = []domain.AttributeDefinition{
	{Key: "legal_name", Label: "Legal name", Group: domain.GroupIdentity, Encrypted: true},
	{Key: "pronouns", Label: "Pronouns", Group: domain.GroupIdentity},
	{Key: "home_address", Label: "Home address", Group: domain.GroupContact, Encrypted: true, DVSensitive: true},
	{Key: "diagnosis", Label: "Diagnosis", Group: domain.GroupClinical, Encrypted: true},
}

func newAttrFixture(client *domain.Client) *attrFixture {
	clients := newStubClientRepo(client)
	blocks := newStubBlockRepo()
	resolver := newResolver(clients, blocks)
	attrs := newStubAttrRepo(attrTestDefs)
	auditRepo := &stubAuditRepo{}
	return &attrFixture{
		service: NewAttributeService(attrs, resolver, NewAuditService(auditRepo, discardLogger), discardLogger),
		attrs:   attrs,
		audit:   auditRepo,
	}
}

func (f *attrFixture) seed(clientID string, pairs map[string]string) {
	for key, value := range pairs {
		f.attrs.values[clientID] = append(f.attrs.values[clientID], domain.AttributeValue{
			ClientID: clientID,
			Key:      key,
			Value:    value,
		})
	}
}

func viewKeys(views []ports.AttributeView) map[string]bool {
	keys := make(map[string]bool, len(views))
	for _, v := range views {
		keys[v.Key] = true
	}
	return keys
}

func TestAttributeList_DVSensitiveAbsentForFrontDesk(t *testing.T) {
	client := clientWith("c1", false, "housing")
	client.DVSafe = true
	f := newAttrFixture(client)
	f.seed("c1", map[string]string{
		"legal_name":   "Jo Doe",
		"home_address": "12 Shelter Rd",
	})
	p := principalWith("u1", false, grant("housing", domain.RoleFrontDesk))

	views, err := f.service.ListForClient(context.Background(), p, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keys := viewKeys(views)
	if !keys["legal_name"] {
		t.Fatalf("identity fields stay visible for the front desk")
	}
	if keys["home_address"] {
		t.Fatalf("a protected field must be absent, not blank")
	}
	for _, v := range views {
		if v.Key == "home_address" {
			t.Fatalf("protected field leaked: %+v", v)
		}
	}
}

func TestAttributeList_CaseWorkerUnaffectedByFlag(t *testing.T) {
	client := clientWith("c1", false, "housing")
	client.DVSafe = true
	f := newAttrFixture(client)
	f.seed("c1", map[string]string{"home_address": "12 Shelter Rd"})
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	views, err := f.service.ListForClient(context.Background(), p, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !viewKeys(views)["home_address"] {
		t.Fatalf("the flag restricts only the lowest-privilege role")
	}
}

func TestAttributeList_ClinicalHiddenFromFrontDesk(t *testing.T) {
	client := clientWith("c1", false, "housing")
	f := newAttrFixture(client)
	f.seed("c1", map[string]string{"diagnosis": "confidential"})
	p := principalWith("u1", false, grant("housing", domain.RoleFrontDesk))

	views, err := f.service.ListForClient(context.Background(), p, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if viewKeys(views)["diagnosis"] {
		t.Fatalf("clinical attributes are never shown to the front desk")
	}
}

func TestAttributeWrite_DVSensitiveBlockedForFrontDesk(t *testing.T) {
	client := clientWith("c1", false, "housing")
	client.DVSafe = true
	f := newAttrFixture(client)
	p := principalWith("u1", false, grant("housing", domain.RoleFrontDesk))

	err := f.service.Write(context.Background(), ports.WriteAttributeInput{
		Principal: p, ClientID: "c1", Key: "home_address", Value: "new address",
	})
	if !errors.Is(err, domain.ErrDVWriteBlocked) {
		t.Fatalf("expected ErrDVWriteBlocked, got %v", err)
	}
	if len(f.attrs.values["c1"]) != 0 {
		t.Fatalf("blocked write must not persist")
	}
}

func TestAttributeWrite_FrontDeskIntakeAllowed(t *testing.T) {
	client := clientWith("c1", false, "housing")
	f := newAttrFixture(client)
	p := principalWith("u1", false, grant("housing", domain.RoleFrontDesk))

	err := f.service.Write(context.Background(), ports.WriteAttributeInput{
		Principal: p, ClientID: "c1", Key: "legal_name", Value: "Jo Doe",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.attrs.values["c1"]) != 1 || f.attrs.values["c1"][0].Value != "Jo Doe" {
		t.Fatalf("write did not persist: %+v", f.attrs.values["c1"])
	}
}

func TestAttributeWrite_UnknownKeyIsNotFound(t *testing.T) {
	client := clientWith("c1", false, "housing")
	f := newAttrFixture(client)
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	err := f.service.Write(context.Background(), ports.WriteAttributeInput{
		Principal: p, ClientID: "c1", Key: "no_such_field", Value: "x",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAttributeWrite_EncryptedValueRedactedInAudit(t *testing.T) {
	client := clientWith("c1", false, "housing")
	f := newAttrFixture(client)
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	err := f.service.Write(context.Background(), ports.WriteAttributeInput{
		Principal: p, ClientID: "c1", Key: "legal_name", Value: "Jo Doe",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record := f.audit.records[len(f.audit.records)-1]
	if got := record.NewValues["legal_name"]; got != "[encrypted]" {
		t.Fatalf("audit trail must not hold the plaintext, got %v", got)
	}
}

func TestAttributeWrite_PlainValueAuditedVerbatim(t *testing.T) {
	client := clientWith("c1", false, "housing")
	f := newAttrFixture(client)
	p := principalWith("u1", false, grant("housing", domain.RoleCaseWorker))

	err := f.service.Write(context.Background(), ports.WriteAttributeInput{
		Principal: p, ClientID: "c1", Key: "pronouns", Value: "they/them",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record := f.audit.records[len(f.audit.records)-1]
	if got := record.NewValues["pronouns"]; got != "they/them" {
		t.Fatalf("plain values are audited as written, got %v", got)
	}
}
