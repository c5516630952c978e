package ports

import "context"

// Feature toggle names form a closed set. The engine reads toggles as
// inputs; the only write path is the admin configuration endpoint.
const (
	ToggleCrossProgramSharing = "cross_program_sharing_enabled"
	ToggleDVWorkflow          = "dv_workflow_enabled"
)

// ToggleRepository is the persistence port for agency-wide feature toggles.
type ToggleRepository interface {
	Get(ctx context.Context, name string) (bool, error)
	Set(ctx context.Context, name string, value bool) error
}

// ToggleCache is a read-mostly cache in front of ToggleRepository. Entries
// expire on a short TTL and are explicitly invalidated whenever a toggle
// changes; access decisions themselves are never cached.
type ToggleCache interface {
	Get(ctx context.Context, name string) (value, ok bool, err error)
	Put(ctx context.Context, name string, value bool) error
	Invalidate(ctx context.Context, name string) error
}
