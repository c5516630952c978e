package ports

import (
	"context"
	"time"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// AuditQueryFilter narrows the compliance read surface. IsDemo is always set
// from the caller's principal, never from request input, so a real-universe
// reviewer cannot read demo history and vice versa.
type AuditQueryFilter struct {
	IsDemo       bool
	PrincipalID  string
	ResourceType string
	ResourceID   string
	Action       string
	From         time.Time
	To           time.Time
	Limit        int
	Offset       int
}

// AuditRepository is the persistence port for the audit trail. Append and
// Query are the only operations: immutability is a property of this
// interface and of the insert-only store behind it, not a convention
// application code is trusted to uphold.
type AuditRepository interface {
	Append(ctx context.Context, record *domain.AuditRecord) error
	Query(ctx context.Context, filter AuditQueryFilter) ([]*domain.AuditRecord, int64, error)
}
