package db

import (
	"fmt"

	"gorm.io/gorm"

	"catalog/internal/model"
)

// Migrate creates or updates the catalog tables. It is safe to run repeatedly.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Product{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops the catalog tables, products first because they reference users.
func Reset(db *gorm.DB) error {
	for _, table := range []interface{}{&model.Product{}, &model.User{}} {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
