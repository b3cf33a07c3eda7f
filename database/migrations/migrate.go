package migrations

import (
	"gorm.io/gorm"

	"inari-web/internal/models"
)

// Migrate creates or updates the tables owned by the web front-end
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Session{},
	)
}
