package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
)

// ClientRepository implements ports.ClientRepository on GORM.
type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	var row clientRow
	err := r.db.WithContext(ctx).Preload("Enrolments").First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *ClientRepository) List(ctx context.Context, filter ports.ListClientsFilter) ([]*domain.Client, int64, error) {
	query := r.db.WithContext(ctx).Model(&clientRow{}).Where("is_demo = ?", filter.IsDemo)
	if len(filter.ProgramIDs) > 0 {
		query = query.Where(
			"id IN (?)",
			r.db.Model(&enrolmentRow{}).
				Select("client_id").
				Where("program_id IN ? AND status = ?", filter.ProgramIDs, string(domain.EnrolmentActive)),
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []clientRow
	err := query.Preload("Enrolments").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	clients := make([]*domain.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, row.toDomain())
	}
	return clients, total, nil
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	row := clientRow{
		ID:        client.ID,
		IsDemo:    client.IsDemo,
		Status:    string(client.Status),
		DVSafe:    client.DVSafe,
		Sharing:   string(client.Sharing),
		CreatedAt: client.CreatedAt,
		UpdatedAt: now,
	}
	for _, e := range client.Enrolments {
		row.Enrolments = append(row.Enrolments, enrolmentRow{
			ClientID:   client.ID,
			ProgramID:  e.ProgramID,
			Status:     string(e.Status),
			EnrolledAt: e.EnrolledAt,
			ClosedAt:   e.ClosedAt,
		})
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *ClientRepository) UpdateDVSafe(ctx context.Context, id string, old, new bool) error {
	return r.compareAndSet(ctx, id, "dv_safe", old, new)
}

func (r *ClientRepository) UpdateSharing(ctx context.Context, id string, old, new domain.SharingPreference) error {
	return r.compareAndSet(ctx, id, "cross_program_sharing", string(old), string(new))
}

func (r *ClientRepository) UpdateStatus(ctx context.Context, id string, old, new domain.ClientStatus) error {
	return r.compareAndSet(ctx, id, "status", string(old), string(new))
}

// compareAndSet updates a single column only while its stored value still
// equals old, so two concurrent writers cannot both win.
func (r *ClientRepository) compareAndSet(ctx context.Context, id, column string, old, new any) error {
	result := r.db.WithContext(ctx).Model(&clientRow{}).
		Where("id = ? AND "+column+" = ?", id, old).
		Updates(map[string]any{column: new, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
