package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// GroupRepository implements ports.GroupRepository on GORM.
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) FindByID(ctx context.Context, id string) (*domain.CareGroup, error) {
	var row careGroupRow
	err := r.db.WithContext(ctx).Preload("Members").First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *GroupRepository) ListByClient(ctx context.Context, clientID string) ([]*domain.CareGroup, error) {
	var rows []careGroupRow
	err := r.db.WithContext(ctx).Preload("Members").
		Where(
			"id IN (?)",
			r.db.Model(&groupMemberRow{}).Select("group_id").Where("client_id = ?", clientID),
		).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	groups := make([]*domain.CareGroup, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, row.toDomain())
	}
	return groups, nil
}

func (r *GroupRepository) Create(ctx context.Context, group *domain.CareGroup) error {
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}
	row := careGroupRow{
		ID:        group.ID,
		Name:      group.Name,
		IsDemo:    group.IsDemo,
		CreatedAt: group.CreatedAt,
	}
	for _, m := range group.Members {
		row.Members = append(row.Members, groupMemberRow{
			ID:           m.ID,
			GroupID:      group.ID,
			ClientID:     m.ClientID,
			Name:         m.Name,
			Relationship: m.Relationship,
		})
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// PortalAccountRepository implements ports.PortalAccountRepository on GORM.
type PortalAccountRepository struct {
	db *gorm.DB
}

func NewPortalAccountRepository(db *gorm.DB) *PortalAccountRepository {
	return &PortalAccountRepository{db: db}
}

func (r *PortalAccountRepository) DeactivateByClient(ctx context.Context, clientID string) error {
	return r.db.WithContext(ctx).Model(&portalAccountRow{}).
		Where("client_id = ? AND is_active = ?", clientID, true).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()}).Error
}
