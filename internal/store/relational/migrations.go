package relational

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type migration struct {
	Version int64
	Name    string
	Up      func(tx *gorm.DB) error
}

// Versões no formato yyyymmddhhmm; só crescem.
var migrations = []migration{
	{
		Version: 202110102337,
		Name:    "add_device_table",
		Up: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&deviceRecord{})
		},
	},
}

// Migrate applies pending migrations in order, each in its own transaction.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	m := db.Migrator()
	if !m.HasTable(&schemaMigration{}) {
		if err := m.CreateTable(&schemaMigration{}); err != nil {
			return fmt.Errorf("create table schema_migrations: %w", err)
		}
	}

	for _, mig := range migrations {
		var count int64
		if err := db.Model(&schemaMigration{}).Where("version = ?", mig.Version).Count(&count).Error; err != nil {
			return fmt.Errorf("check migration %d: %w", mig.Version, err)
		}
		if count > 0 {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := mig.Up(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{
				Version:   mig.Version,
				Name:      mig.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d %s: %w", mig.Version, mig.Name, err)
		}
	}
	return nil
}

// AppliedVersions lists recorded migrations, oldest first.
func AppliedVersions(ctx context.Context, db *gorm.DB) ([]int64, error) {
	var versions []int64
	err := db.WithContext(ctx).Model(&schemaMigration{}).Order("version ASC").Pluck("version", &versions).Error
	return versions, err
}
