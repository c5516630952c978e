package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/pkg/fieldcipher"
)

// AttributeRepository implements ports.AttributeRepository on GORM. Values
// for encrypted definitions are sealed with the field cipher at rest and
// opened on read; plaintext never reaches a row.
type AttributeRepository struct {
	db     *gorm.DB
	cipher *fieldcipher.Cipher
}

func NewAttributeRepository(db *gorm.DB, cipher *fieldcipher.Cipher) *AttributeRepository {
	return &AttributeRepository{db: db, cipher: cipher}
}

func (r *AttributeRepository) Definitions(ctx context.Context) ([]domain.AttributeDefinition, error) {
	var rows []attributeDefinitionRow
	if err := r.db.WithContext(ctx).Order("attr_group, key").Find(&rows).Error; err != nil {
		return nil, err
	}
	defs := make([]domain.AttributeDefinition, 0, len(rows))
	for _, row := range rows {
		defs = append(defs, domain.AttributeDefinition{
			Key:         row.Key,
			Label:       row.Label,
			Group:       domain.AttributeGroup(row.Group),
			Encrypted:   row.Encrypted,
			DVSensitive: row.DVSensitive,
		})
	}
	return defs, nil
}

func (r *AttributeRepository) ValuesByClient(ctx context.Context, clientID string) ([]domain.AttributeValue, error) {
	var rows []attributeValueRow
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Find(&rows).Error; err != nil {
		return nil, err
	}

	values := make([]domain.AttributeValue, 0, len(rows))
	for _, row := range rows {
		value := string(row.Value)
		if row.Encrypted {
			opened, err := r.cipher.Decrypt(row.Value)
			if err != nil {
				return nil, err
			}
			value = opened
		}
		values = append(values, domain.AttributeValue{
			ClientID:  row.ClientID,
			Key:       row.Key,
			Value:     value,
			UpdatedBy: row.UpdatedBy,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return values, nil
}

func (r *AttributeRepository) Upsert(ctx context.Context, value domain.AttributeValue) error {
	var def attributeDefinitionRow
	if err := r.db.WithContext(ctx).First(&def, "key = ?", value.Key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ErrNotFound
		}
		return err
	}

	stored := []byte(value.Value)
	if def.Encrypted {
		sealed, err := r.cipher.Encrypt(value.Value)
		if err != nil {
			return err
		}
		stored = sealed
	}

	row := attributeValueRow{
		ClientID:  value.ClientID,
		Key:       value.Key,
		Value:     stored,
		Encrypted: def.Encrypted,
		UpdatedBy: value.UpdatedBy,
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "encrypted", "updated_by", "updated_at"}),
	}).Create(&row).Error
}

// SeedDefinitions writes the attribute catalogue at startup, leaving existing
// rows untouched so a redeploy never flips an Encrypted flag under stored
// ciphertext.
func (r *AttributeRepository) SeedDefinitions(ctx context.Context, defs []domain.AttributeDefinition) error {
	for _, def := range defs {
		row := attributeDefinitionRow{
			Key:         def.Key,
			Label:       def.Label,
			Group:       string(def.Group),
			Encrypted:   def.Encrypted,
			DVSensitive: def.DVSensitive,
		}
		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}
