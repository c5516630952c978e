// Package postgres implements the primary transactional store behind the
// repository ports, using GORM. Role grants, negative-access entries, DV
// flags and requests, notes, attributes and toggles all live here; the
// audit trail deliberately does not (see db/mongo).
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the primary store and migrates the schema.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the engine owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userRow{},
		&roleGrantRow{},
		&clientRow{},
		&enrolmentRow{},
		&caseNoteRow{},
		&attributeDefinitionRow{},
		&attributeValueRow{},
		&accessBlockRow{},
		&dvRemovalRequestRow{},
		&careGroupRow{},
		&groupMemberRow{},
		&featureToggleRow{},
		&portalAccountRow{},
	); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}
