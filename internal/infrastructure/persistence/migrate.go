package persistence

import (
	"fmt"

	"github.com/docgen/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for every persistence
// model. Intended for development and sqlite deployments; production
// postgres schemas are managed externally.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.CompanyModel{},
		&models.PersonnelModel{},
		&models.ClientModel{},
		&models.ContactModel{},
		&models.ClientContactModel{},
		&models.CountryModel{},
		&models.CityModel{},
		&models.ProjectModel{},
		&models.ProductModel{},
		&models.ProductTranslationModel{},
		&models.ClientProjectProductModel{},
		&models.MediaLinkModel{},
		&models.ClientDocumentNoteModel{},
		&models.AppSettingModel{},
		&models.GeneratedDocumentModel{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}
