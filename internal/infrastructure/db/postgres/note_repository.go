package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/pkg/fieldcipher"
)

// NoteRepository implements ports.NoteRepository on GORM. Note bodies cross
// the port as plaintext; this repository seals them before the row is written
// and opens them on read. A decryption failure propagates rather than
// flattening to an empty body.
type NoteRepository struct {
	db     *gorm.DB
	cipher *fieldcipher.Cipher
}

func NewNoteRepository(db *gorm.DB, cipher *fieldcipher.Cipher) *NoteRepository {
	return &NoteRepository{db: db, cipher: cipher}
}

func (r *NoteRepository) FindByID(ctx context.Context, id string) (*domain.CaseNote, error) {
	var row caseNoteRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(row)
}

func (r *NoteRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.CaseNote, error) {
	var rows []caseNoteRow
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	notes := make([]*domain.CaseNote, 0, len(rows))
	for _, row := range rows {
		note, err := r.toDomain(row)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func (r *NoteRepository) Create(ctx context.Context, note *domain.CaseNote) error {
	sealed, err := r.cipher.Encrypt(note.Body)
	if err != nil {
		return err
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	row := caseNoteRow{
		ID:        note.ID,
		ClientID:  note.ClientID,
		ProgramID: note.ProgramID,
		AuthorID:  note.AuthorID,
		Body:      sealed,
		IsDemo:    note.IsDemo,
		CreatedAt: note.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *NoteRepository) toDomain(row caseNoteRow) (*domain.CaseNote, error) {
	body, err := r.cipher.Decrypt(row.Body)
	if err != nil {
		return nil, err
	}
	return &domain.CaseNote{
		ID:        row.ID,
		ClientID:  row.ClientID,
		ProgramID: row.ProgramID,
		AuthorID:  row.AuthorID,
		Body:      body,
		IsDemo:    row.IsDemo,
		CreatedAt: row.CreatedAt,
	}, nil
}
