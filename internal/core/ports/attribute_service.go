package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// AttributeView is one attribute as rendered for a specific principal.
type AttributeView struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Group string `json:"group"`
	Value string `json:"value"`
}

// WriteAttributeInput carries one attribute write.
type WriteAttributeInput struct {
	Principal domain.Principal
	ClientID  string
	Key       string
	Value     string
}

// AttributeService reads and writes client attributes, applying per-field
// access rules, DV-safe restrictions and field encryption.
type AttributeService interface {
	// ListForClient returns the attributes the principal's role may see,
	// decrypted. DV-sensitive attributes are absent, not blanked, for the
	// restricted role.
	ListForClient(ctx context.Context, p domain.Principal, clientID string) ([]AttributeView, error)
	// Write rejects writes the role may not make, including DV-sensitive
	// writes from the restricted role while the flag is set
	// (domain.ErrDVWriteBlocked), and audits accepted ones.
	Write(ctx context.Context, input WriteAttributeInput) error
}
