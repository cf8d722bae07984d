package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/docgen/backend/internal/domain/document"
	"github.com/docgen/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDataPort implements document.DataPort backed by GORM.
// Missing records are reported as (nil, nil), not as errors; the
// context builder decides how to degrade.
type GormDataPort struct {
	db *gorm.DB
}

// NewGormDataPort creates a new GORM-based data port
func NewGormDataPort(db *gorm.DB) *GormDataPort {
	return &GormDataPort{db: db}
}

// GetCompany retrieves a seller company by ID
func (p *GormDataPort) GetCompany(ctx context.Context, companyID uuid.UUID) (*document.Company, error) {
	var model models.CompanyModel
	err := p.db.WithContext(ctx).First(&model, "id = ?", companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return model.ToDomain(), nil
}

// GetPersonnelForCompany retrieves all personnel of a company,
// representatives first
func (p *GormDataPort) GetPersonnelForCompany(ctx context.Context, companyID uuid.UUID) ([]document.Personnel, error) {
	var rows []models.PersonnelModel
	err := p.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("is_representative DESC, last_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get personnel: %w", err)
	}
	result := make([]document.Personnel, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].ToDomain())
	}
	return result, nil
}

// GetClient retrieves a client by ID
func (p *GormDataPort) GetClient(ctx context.Context, clientID uuid.UUID) (*document.Client, error) {
	var model models.ClientModel
	err := p.db.WithContext(ctx).First(&model, "id = ?", clientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return model.ToDomain(), nil
}

// GetContactsForClient retrieves contacts linked to a client. When
// primaryOnly is non-nil the primary flag is filtered on.
func (p *GormDataPort) GetContactsForClient(ctx context.Context, clientID uuid.UUID, primaryOnly *bool) ([]document.Contact, error) {
	query := p.db.WithContext(ctx).
		Table("contacts").
		Select("contacts.*, client_contacts.is_primary").
		Joins("JOIN client_contacts ON client_contacts.contact_id = contacts.id").
		Where("client_contacts.client_id = ?", clientID).
		Order("client_contacts.is_primary DESC, contacts.last_name ASC")
	if primaryOnly != nil {
		query = query.Where("client_contacts.is_primary = ?", *primaryOnly)
	}

	var rows []struct {
		models.ContactModel
		IsPrimary bool
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get contacts: %w", err)
	}

	result := make([]document.Contact, 0, len(rows))
	for _, row := range rows {
		result = append(result, document.Contact{
			ID:                 row.ID,
			FirstName:          row.FirstName,
			LastName:           row.LastName,
			Email:              row.Email,
			Phone:              row.Phone,
			AddressLine1:       row.AddressLine1,
			PostalCode:         row.PostalCode,
			IsPrimaryForClient: row.IsPrimary,
		})
	}
	return result, nil
}

// GetCountry retrieves a country by ID
func (p *GormDataPort) GetCountry(ctx context.Context, countryID uuid.UUID) (*document.Country, error) {
	var model models.CountryModel
	err := p.db.WithContext(ctx).First(&model, "id = ?", countryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}
	return &document.Country{ID: model.ID, Name: model.Name}, nil
}

// GetCity retrieves a city by ID
func (p *GormDataPort) GetCity(ctx context.Context, cityID uuid.UUID) (*document.City, error) {
	var model models.CityModel
	err := p.db.WithContext(ctx).First(&model, "id = ?", cityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	return &document.City{ID: model.ID, Name: model.Name}, nil
}

// GetProject retrieves a project by ID
func (p *GormDataPort) GetProject(ctx context.Context, projectID uuid.UUID) (*document.Project, error) {
	var model models.ProjectModel
	err := p.db.WithContext(ctx).First(&model, "id = ?", projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return model.ToDomain(), nil
}

// GetProduct retrieves a product by ID, including soft-deleted rows.
// Callers inspect the Deleted flag themselves.
func (p *GormDataPort) GetProduct(ctx context.Context, productID uuid.UUID) (*document.Product, error) {
	var model models.ProductModel
	err := p.db.WithContext(ctx).First(&model, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return model.ToDomain(), nil
}

// GetProductsForClientOrProject retrieves product links for a client,
// narrowed to a project when projectID is non-nil
func (p *GormDataPort) GetProductsForClientOrProject(ctx context.Context, clientID uuid.UUID, projectID *uuid.UUID) ([]document.ProductLink, error) {
	query := p.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at ASC, id ASC")
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	var rows []models.ClientProjectProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get product links: %w", err)
	}
	result := make([]document.ProductLink, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].ToDomain())
	}
	return result, nil
}

// GetProductLink retrieves a single client-project-product link by ID
func (p *GormDataPort) GetProductLink(ctx context.Context, linkID uuid.UUID) (*document.ProductLink, error) {
	var model models.ClientProjectProductModel
	err := p.db.WithContext(ctx).First(&model, "id = ?", linkID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product link: %w", err)
	}
	link := model.ToDomain()
	return &link, nil
}

// GetProductTranslations retrieves translations of a product for a
// target language
func (p *GormDataPort) GetProductTranslations(ctx context.Context, productID uuid.UUID, targetLanguageCode string) ([]document.ProductTranslation, error) {
	var rows []models.ProductTranslationModel
	err := p.db.WithContext(ctx).
		Where("product_id = ? AND language_code = ?", productID, targetLanguageCode).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product translations: %w", err)
	}
	result := make([]document.ProductTranslation, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].ToDomain())
	}
	return result, nil
}

// GetMediaLinksForProduct retrieves media links attached to a product
func (p *GormDataPort) GetMediaLinksForProduct(ctx context.Context, productID uuid.UUID) ([]document.MediaLink, error) {
	var rows []models.MediaLinkModel
	err := p.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get media links: %w", err)
	}
	result := make([]document.MediaLink, 0, len(rows))
	for _, row := range rows {
		result = append(result, document.MediaLink{ProductID: row.ProductID, URL: row.URL})
	}
	return result, nil
}

// GetClientDocumentNotes retrieves per-client footer notes for a
// document type and language. Missing notes are an empty string.
func (p *GormDataPort) GetClientDocumentNotes(ctx context.Context, clientID uuid.UUID, docType document.DocType, languageCode string) (string, error) {
	var model models.ClientDocumentNoteModel
	err := p.db.WithContext(ctx).
		Where("client_id = ? AND document_type = ? AND language_code = ?", clientID, string(docType), languageCode).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get client document notes: %w", err)
	}
	return model.Notes, nil
}

// Ensure GormDataPort implements the port
var _ document.DataPort = (*GormDataPort)(nil)
