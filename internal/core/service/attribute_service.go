package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/casefile-io/access-engine/internal/core/access"
	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// AttributeService applies per-field access rules and DV-safe restrictions
// on top of the attribute repository, which owns the field encryption.
type AttributeService struct {
	attrs    ports.AttributeRepository
	resolver ports.ResolverService
	audit    ports.AuditService
	logger   zerolog.Logger
}

func NewAttributeService(attrs ports.AttributeRepository, resolver ports.ResolverService, audit ports.AuditService, logger zerolog.Logger) *AttributeService {
	return &AttributeService{attrs: attrs, resolver: resolver, audit: audit, logger: logger}
}

// viewingRole resolves the role the per-field rules are evaluated against:
// the principal's highest role in the resolved authoring program.
func (s *AttributeService) viewingRole(p domain.Principal, client *domain.Client, cap access.Capability) (domain.Role, error) {
	program := s.resolver.AuthorProgram(p, client, cap, "")
	if program == "" {
		return "", domain.ErrPolicyDenied
	}
	role, ok := p.HighestRoleIn(program)
	if !ok {
		return "", domain.ErrPolicyDenied
	}
	return role, nil
}

// ListForClient returns the attributes the principal's role may see. For the
// restricted role on a DV-safe record, DV-sensitive attributes are absent
// from the result entirely, not present-but-blank.
func (s *AttributeService) ListForClient(ctx context.Context, p domain.Principal, clientID string) ([]ports.AttributeView, error) {
	client, err := s.resolver.ResolveOrDeny(ctx, p, clientID)
	if err != nil {
		return nil, err
	}
	role, err := s.viewingRole(p, client, access.CapAttributeView)
	if err != nil {
		return nil, err
	}

	defs, err := s.attrs.Definitions(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]domain.AttributeDefinition, len(defs))
	for _, def := range defs {
		byKey[def.Key] = def
	}

	values, err := s.attrs.ValuesByClient(ctx, clientID)
	if err != nil {
		// A fieldcipher.ErrDecryption from the repository propagates here;
		// the handler decides how to render it, the log entry is ours.
		s.logger.Error().Err(err).Str("client_id", clientID).Msg("attribute read failed")
		return nil, err
	}

	var views []ports.AttributeView
	for _, value := range values {
		def, ok := byKey[value.Key]
		if !ok {
			continue
		}
		if !access.FieldVisible(role, def, client.DVSafe) {
			continue
		}
		views = append(views, ports.AttributeView{
			Key:   def.Key,
			Label: def.Label,
			Group: string(def.Group),
			Value: value.Value,
		})
	}
	return views, nil
}

// Write stores one attribute value. DV-sensitive writes from the restricted
// role are rejected while the flag is set, even though the role otherwise
// holds edit rights on the attribute's group.
func (s *AttributeService) Write(ctx context.Context, input ports.WriteAttributeInput) error {
	p := input.Principal
	client, err := s.resolver.ResolveOrDeny(ctx, p, input.ClientID)
	if err != nil {
		return err
	}
	role, err := s.viewingRole(p, client, access.CapAttributeEdit)
	if err != nil {
		return err
	}

	defs, err := s.attrs.Definitions(ctx)
	if err != nil {
		return err
	}
	var def *domain.AttributeDefinition
	for i := range defs {
		if defs[i].Key == input.Key {
			def = &defs[i]
			break
		}
	}
	if def == nil {
		return domain.ErrNotFound
	}

	if client.DVSafe && def.DVSensitive && !access.FieldWritable(role, *def, client.DVSafe) {
		return domain.ErrDVWriteBlocked
	}
	if !access.FieldWritable(role, *def, client.DVSafe) {
		return domain.ErrPolicyDenied
	}

	if err := s.attrs.Upsert(ctx, domain.AttributeValue{
		ClientID:  client.ID,
		Key:       def.Key,
		Value:     input.Value,
		UpdatedBy: p.ID,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	// Audited values for encrypted definitions are redacted: the audit
	// store must not become a plaintext copy of the field it protects.
	audited := input.Value
	if def.Encrypted {
		audited = "[encrypted]"
	}
	return s.audit.Record(ctx, ports.AuditEntry{
		Principal:    &p,
		Action:       domain.AuditActionUpdate,
		ResourceType: "client_attribute",
		ResourceID:   client.ID,
		NewValues:    map[string]any{def.Key: audited},
		IsDemo:       client.IsDemo,
	})
}
