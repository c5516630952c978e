package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// AuditEntry is the write-side input to the audit trail. Timestamp and id
// are assigned at append time.
type AuditEntry struct {
	Principal    *domain.Principal
	Action       string
	ResourceType string
	ResourceID   string
	OldValues    map[string]any
	NewValues    map[string]any
	Metadata     map[string]any
	IsDemo       bool
}

// AuditService is the only write path into the audit trail.
type AuditService interface {
	// Record appends an entry for a primary action. The caller must not
	// report the action successful until Record has returned nil: the
	// record is durably written before success is visible.
	Record(ctx context.Context, entry AuditEntry) error
	// RecordSideActivity appends an entry for a secondary activity (a
	// notification send, a cache refresh). A failure here is logged and
	// swallowed; it never aborts the activity that triggered it.
	RecordSideActivity(ctx context.Context, entry AuditEntry)
	// Query is the read-only compliance surface, gated by the audit.view
	// capability and scoped to the caller's demo universe.
	Query(ctx context.Context, p domain.Principal, filter AuditQueryFilter) ([]*domain.AuditRecord, int64, error)
}
