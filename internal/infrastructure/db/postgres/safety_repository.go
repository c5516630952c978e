package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// BlockRepository implements ports.BlockRepository on GORM. Blocks are rows
// that get deactivated, never deleted.
type BlockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

func (r *BlockRepository) ActiveBlock(ctx context.Context, principalID, clientID string) (*domain.AccessBlock, error) {
	var row accessBlockRow
	err := r.db.WithContext(ctx).
		Where("principal_id = ? AND client_id = ? AND is_active = ?", principalID, clientID, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *BlockRepository) ActiveClientIDs(ctx context.Context, principalID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&accessBlockRow{}).
		Where("principal_id = ? AND is_active = ?", principalID, true).
		Pluck("client_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *BlockRepository) Create(ctx context.Context, block *domain.AccessBlock) error {
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now().UTC()
	}
	row := accessBlockRow{
		ID:          block.ID,
		PrincipalID: block.PrincipalID,
		ClientID:    block.ClientID,
		Reason:      block.Reason,
		IsActive:    block.IsActive,
		CreatedBy:   block.CreatedBy,
		CreatedAt:   block.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *BlockRepository) Deactivate(ctx context.Context, id, deactivatedBy string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&accessBlockRow{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{
			"is_active":      false,
			"deactivated_by": deactivatedBy,
			"deactivated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DvRequestRepository implements ports.DvRequestRepository on GORM.
type DvRequestRepository struct {
	db *gorm.DB
}

func NewDvRequestRepository(db *gorm.DB) *DvRequestRepository {
	return &DvRequestRepository{db: db}
}

func (r *DvRequestRepository) FindByID(ctx context.Context, id string) (*domain.DvRemovalRequest, error) {
	var row dvRemovalRequestRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *DvRequestRepository) ListPending(ctx context.Context) ([]*domain.DvRemovalRequest, error) {
	var rows []dvRemovalRequestRow
	err := r.db.WithContext(ctx).
		Where("approved IS NULL").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	reqs := make([]*domain.DvRemovalRequest, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, row.toDomain())
	}
	return reqs, nil
}

func (r *DvRequestRepository) Create(ctx context.Context, req *domain.DvRemovalRequest) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	row := dvRemovalRequestRow{
		ID:          req.ID,
		ClientID:    req.ClientID,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
		CreatedAt:   req.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// Review stores the verdict only while the row is still pending, so two
// concurrent reviewers cannot both record one.
func (r *DvRequestRepository) Review(ctx context.Context, id, reviewedBy string, approved bool) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&dvRemovalRequestRow{}).
		Where("id = ? AND approved IS NULL", id).
		Updates(map[string]any{
			"approved":    approved,
			"reviewed_by": reviewedBy,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&dvRemovalRequestRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrAlreadyReviewed
	}
	return nil
}
