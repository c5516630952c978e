package domain

import "time"

// Audit actions form a closed vocabulary so the compliance surface can filter
// without string guessing.
const (
	AuditActionCreate        = "create"
	AuditActionUpdate        = "update"
	AuditActionStatusChange  = "status_change"
	AuditActionDVFlagSet     = "dv_flag_set"
	AuditActionDVFlagCleared = "dv_flag_cleared"
	AuditActionDVRequested   = "dv_removal_requested"
	AuditActionDVReviewed    = "dv_removal_reviewed"
	AuditActionBlockCreated  = "block_created"
	AuditActionBlockCleared  = "block_deactivated"
	AuditActionSharingChange = "sharing_changed"
	AuditActionToggleChange  = "toggle_changed"
	AuditActionLogin         = "login"
)

// AuditRecord is one immutable entry in the audit trail. It carries enough
// context to answer "who did what, to what, when, and in which universe"
// without joining back to rows that may have changed since. Records are only
// ever appended; the storage layer exposes no update or delete.
type AuditRecord struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	// PrincipalID is nil for system-initiated actions.
	PrincipalID *string `json:"principal_id,omitempty" bson:"principal_id,omitempty"`
	// DisplayLabel preserves how the actor was named at the time of the
	// action, independent of later renames.
	DisplayLabel string         `json:"display_label" bson:"display_label"`
	Action       string         `json:"action" bson:"action"`
	ResourceType string         `json:"resource_type" bson:"resource_type"`
	ResourceID   string         `json:"resource_id" bson:"resource_id"`
	OldValues    map[string]any `json:"old_values,omitempty" bson:"old_values,omitempty"`
	NewValues    map[string]any `json:"new_values,omitempty" bson:"new_values,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	IsDemo       bool           `json:"is_demo" bson:"is_demo"`
}
