package ports

import (
	"context"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// NoteRepository is the persistence port for case notes. Note bodies are
// plaintext on both sides of this interface; implementations seal them with
// the field cipher before the row is written and open them on read, so a
// fieldcipher.ErrDecryption from a read path propagates to the caller
// instead of being coerced into an empty body. FindByID returns
// domain.ErrNotFound when no row exists.
type NoteRepository interface {
	FindByID(ctx context.Context, id string) (*domain.CaseNote, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.CaseNote, error)
	Create(ctx context.Context, note *domain.CaseNote) error
}
