package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/casefile-io/access-engine/internal/api/metrics"
	"github.com/casefile-io/access-engine/internal/core/access"
	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// AuditService is the single write path into the audit trail and the gated
// read surface over it.
type AuditService struct {
	repo   ports.AuditRepository
	logger zerolog.Logger
}

func NewAuditService(repo ports.AuditRepository, logger zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

func buildRecord(entry ports.AuditEntry) *domain.AuditRecord {
	record := &domain.AuditRecord{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		OldValues:    entry.OldValues,
		NewValues:    entry.NewValues,
		Metadata:     entry.Metadata,
		IsDemo:       entry.IsDemo,
		DisplayLabel: "system",
	}
	if entry.Principal != nil {
		id := entry.Principal.ID
		record.PrincipalID = &id
		record.DisplayLabel = entry.Principal.DisplayLabel
	}
	return record
}

// Record appends an entry for a primary action. Callers treat a non-nil
// return as failure of the action itself: success is never reported before
// the record is durable.
func (s *AuditService) Record(ctx context.Context, entry ports.AuditEntry) error {
	if err := s.repo.Append(ctx, buildRecord(entry)); err != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		s.logger.Error().Err(err).
			Str("action", entry.Action).
			Str("resource_type", entry.ResourceType).
			Str("resource_id", entry.ResourceID).
			Msg("audit append failed")
		return err
	}
	return nil
}

// RecordSideActivity appends an entry for a secondary activity. Failure is
// logged and swallowed so the activity itself proceeds.
func (s *AuditService) RecordSideActivity(ctx context.Context, entry ports.AuditEntry) {
	if err := s.repo.Append(ctx, buildRecord(entry)); err != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		s.logger.Error().Err(err).
			Str("action", entry.Action).
			Str("resource_type", entry.ResourceType).
			Msg("audit append failed for side activity, continuing")
	}
}

// Query is the compliance read surface. It requires the audit.view
// capability and pins the filter to the caller's demo universe regardless of
// what the caller asked for.
func (s *AuditService) Query(ctx context.Context, p domain.Principal, filter ports.AuditQueryFilter) ([]*domain.AuditRecord, int64, error) {
	if err := requireCapability(p, access.CapAuditView); err != nil {
		return nil, 0, err
	}
	filter.IsDemo = p.IsDemo
	return s.repo.Query(ctx, filter)
}
