package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// ToggleService reads feature toggles through the short-TTL cache and owns
// the single admin write path. Toggle values are inputs to the engine;
// access decisions built on them are still computed fresh per request.
type ToggleService struct {
	repo   ports.ToggleRepository
	cache  ports.ToggleCache
	audit  ports.AuditService
	logger zerolog.Logger
}

func NewToggleService(repo ports.ToggleRepository, cache ports.ToggleCache, audit ports.AuditService, logger zerolog.Logger) *ToggleService {
	return &ToggleService{repo: repo, cache: cache, audit: audit, logger: logger}
}

// Enabled reads one toggle, cache-aside. A cache failure falls through to
// the store; a store failure propagates so consent code can fail closed.
func (s *ToggleService) Enabled(ctx context.Context, name string) (bool, error) {
	if s.cache != nil {
		value, ok, err := s.cache.Get(ctx, name)
		if err != nil {
			s.logger.Warn().Err(err).Str("toggle", name).Msg("toggle cache read failed")
		} else if ok {
			return value, nil
		}
	}

	value, err := s.repo.Get(ctx, name)
	if err != nil {
		return false, err
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, name, value); err != nil {
			s.logger.Warn().Err(err).Str("toggle", name).Msg("toggle cache write failed")
		}
	}
	return value, nil
}

// Set changes a toggle and invalidates its cache entry in the same call.
// This is system configuration: the admin flag is required, and it is the
// only place in the engine where that flag grants anything.
func (s *ToggleService) Set(ctx context.Context, p domain.Principal, name string, value bool) error {
	if !p.IsAdmin {
		return domain.ErrPolicyDenied
	}

	old, err := s.repo.Get(ctx, name)
	if err != nil {
		return err
	}
	if err := s.repo.Set(ctx, name, value); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, name); err != nil {
			s.logger.Warn().Err(err).Str("toggle", name).Msg("toggle cache invalidation failed")
		}
	}

	return s.audit.Record(ctx, ports.AuditEntry{
		Principal:    &p,
		Action:       domain.AuditActionToggleChange,
		ResourceType: "feature_toggle",
		ResourceID:   name,
		OldValues:    map[string]any{"enabled": old},
		NewValues:    map[string]any{"enabled": value},
		IsDemo:       p.IsDemo,
	})
}
