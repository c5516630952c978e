package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// AttributeRepository is the persistence port for attribute definitions and
// values. Values for encrypted definitions are plaintext on both sides of
// this interface; implementations seal and open them with the field cipher,
// and a fieldcipher.ErrDecryption from a read propagates.
type AttributeRepository interface {
	Definitions(ctx context.Context) ([]domain.AttributeDefinition, error)
	ValuesByClient(ctx context.Context, clientID string) ([]domain.AttributeValue, error)
	// Upsert writes one value, replacing any existing value for the same
	// (client, key).
	Upsert(ctx context.Context, value domain.AttributeValue) error
}
