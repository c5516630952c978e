package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// ToggleRepository implements ports.ToggleRepository on GORM. An unknown
// toggle name reads as not found rather than defaulting, so a typo in a
// caller fails loudly instead of silently disabling a feature.
type ToggleRepository struct {
	db *gorm.DB
}

func NewToggleRepository(db *gorm.DB) *ToggleRepository {
	return &ToggleRepository{db: db}
}

func (r *ToggleRepository) Get(ctx context.Context, name string) (bool, error) {
	var row featureToggleRow
	err := r.db.WithContext(ctx).First(&row, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return row.Enabled, nil
}

func (r *ToggleRepository) Set(ctx context.Context, name string, value bool) error {
	row := featureToggleRow{Name: name, Enabled: value, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
	}).Create(&row).Error
}
