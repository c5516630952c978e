package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// RegisterPortalListeners wires the portal-account side effects onto the
// event bus. When a client exits or is deactivated, the linked portal
// account is deactivated within the same operation; the audit entry for the
// side effect is best-effort.
func RegisterPortalListeners(bus *domain.EventBus, portal ports.PortalAccountRepository, audit ports.AuditService, logger zerolog.Logger) {
	bus.Subscribe(domain.ClientStatusChanged{}.Name(), func(event domain.Event) error {
		change, ok := event.(domain.ClientStatusChanged)
		if !ok {
			return nil
		}
		if change.New == domain.ClientActive {
			return nil
		}

		ctx := context.Background()
		if err := portal.DeactivateByClient(ctx, change.ClientID); err != nil {
			logger.Error().Err(err).Str("client_id", change.ClientID).Msg("portal account deactivation failed")
			return err
		}

		audit.RecordSideActivity(ctx, ports.AuditEntry{
			Action:       domain.AuditActionStatusChange,
			ResourceType: "portal_account",
			ResourceID:   change.ClientID,
			Metadata:     map[string]any{"trigger": change.Name(), "new_status": string(change.New)},
		})
		logger.Info().Str("client_id", change.ClientID).Msg("portal account deactivated after status change")
		return nil
	})
}
