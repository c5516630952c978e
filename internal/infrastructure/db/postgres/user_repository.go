package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/casefile-io/access-engine/internal/core/domain"
)

// UserRepository implements ports.UserRepository on GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).Preload("Grants").First(&row, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).Preload("Grants").First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	var existing int64
	err := r.db.WithContext(ctx).Model(&userRow{}).
		Where("username = ?", user.Username).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, domain.ErrUserExists
	}

	now := time.Now().UTC()
	row := userRow{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		DisplayLabel: user.DisplayLabel,
		IsAdmin:      user.IsAdmin,
		IsDemo:       user.IsDemo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, g := range user.Grants {
		row.Grants = append(row.Grants, roleGrantRow{
			UserID:    user.ID,
			ProgramID: g.ProgramID,
			Role:      string(g.Role),
			Status:    string(domain.GrantActive),
			GrantedAt: now,
		})
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *UserRepository) Grant(ctx context.Context, userID string, grant domain.RoleGrant) error {
	if grant.GrantedAt.IsZero() {
		grant.GrantedAt = time.Now().UTC()
	}
	row := roleGrantRow{
		UserID:    userID,
		ProgramID: grant.ProgramID,
		Role:      string(grant.Role),
		Status:    string(domain.GrantActive),
		GrantedAt: grant.GrantedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *UserRepository) Revoke(ctx context.Context, userID, programID string, role domain.Role) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&roleGrantRow{}).
		Where("user_id = ? AND program_id = ? AND role = ? AND status = ?",
			userID, programID, string(role), string(domain.GrantActive)).
		Updates(map[string]any{"status": string(domain.GrantRevoked), "revoked_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
