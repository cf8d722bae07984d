package models

import (
	"strings"
	"time"

	"github.com/docgen/backend/internal/domain/document"
	"github.com/docgen/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyModel is the GORM model for the companies table
type CompanyModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name         string     `gorm:"type:varchar(200);not null"`
	AddressLine1 string     `gorm:"column:address_line1;type:varchar(300)"`
	CityID       *uuid.UUID `gorm:"column:city_id;type:uuid"`
	CountryID    *uuid.UUID `gorm:"column:country_id;type:uuid"`
	PostalCode   string     `gorm:"column:postal_code;type:varchar(20)"`
	Phone        string     `gorm:"type:varchar(50)"`
	Email        string     `gorm:"type:varchar(200)"`
	Website      string     `gorm:"type:varchar(200)"`
	PaymentInfo  string     `gorm:"column:payment_info;type:text"`
	OtherInfo    string     `gorm:"column:other_info;type:text"`
	LogoFilename string     `gorm:"column:logo_filename;type:varchar(200)"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

// TableName returns the table name for CompanyModel
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts CompanyModel to domain Company
func (m *CompanyModel) ToDomain() *document.Company {
	return &document.Company{
		ID:           m.ID,
		Name:         m.Name,
		AddressLine1: m.AddressLine1,
		CityID:       m.CityID,
		CountryID:    m.CountryID,
		PostalCode:   m.PostalCode,
		Phone:        m.Phone,
		Email:        m.Email,
		Website:      m.Website,
		PaymentInfo:  m.PaymentInfo,
		OtherInfo:    m.OtherInfo,
		LogoFilename: m.LogoFilename,
	}
}

// PersonnelModel is the GORM model for the personnel table
type PersonnelModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	CompanyID        uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	FirstName        string    `gorm:"column:first_name;type:varchar(100)"`
	LastName         string    `gorm:"column:last_name;type:varchar(100)"`
	Email            string    `gorm:"type:varchar(200)"`
	Phone            string    `gorm:"type:varchar(50)"`
	IsRepresentative bool      `gorm:"column:is_representative;not null;default:false"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for PersonnelModel
func (PersonnelModel) TableName() string {
	return "personnel"
}

// ToDomain converts PersonnelModel to domain Personnel
func (m *PersonnelModel) ToDomain() document.Personnel {
	return document.Personnel{
		ID:               m.ID,
		CompanyID:        m.CompanyID,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Email:            m.Email,
		Phone:            m.Phone,
		IsRepresentative: m.IsRepresentative,
	}
}

// ClientModel is the GORM model for the clients table.
// Languages is stored as a comma-separated list, primary language first.
type ClientModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	CompanyName    string     `gorm:"column:company_name;type:varchar(200);not null"`
	ContactName    string     `gorm:"column:contact_name;type:varchar(200)"`
	AddressLine1   string     `gorm:"column:address_line1;type:varchar(300)"`
	CityID         *uuid.UUID `gorm:"column:city_id;type:uuid"`
	CountryID      *uuid.UUID `gorm:"column:country_id;type:uuid"`
	PostalCode     string     `gorm:"column:postal_code;type:varchar(20)"`
	Email          string     `gorm:"type:varchar(200)"`
	Phone          string     `gorm:"type:varchar(50)"`
	Languages      string     `gorm:"type:varchar(100)"`
	TaxID          string     `gorm:"column:tax_id;type:varchar(50)"`
	Notes          string     `gorm:"type:text"`
	BaseFolderPath string     `gorm:"column:base_folder_path;type:varchar(300);not null"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for ClientModel
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts ClientModel to domain Client
func (m *ClientModel) ToDomain() *document.Client {
	var langs []string
	for _, l := range strings.Split(m.Languages, ",") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return &document.Client{
		ID:             m.ID,
		CompanyName:    m.CompanyName,
		ContactName:    m.ContactName,
		AddressLine1:   m.AddressLine1,
		CityID:         m.CityID,
		CountryID:      m.CountryID,
		PostalCode:     m.PostalCode,
		Email:          m.Email,
		Phone:          m.Phone,
		Languages:      langs,
		TaxID:          m.TaxID,
		Notes:          m.Notes,
		BaseFolderPath: m.BaseFolderPath,
	}
}

// ContactModel is the GORM model for the contacts table
type ContactModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	FirstName    string    `gorm:"column:first_name;type:varchar(100)"`
	LastName     string    `gorm:"column:last_name;type:varchar(100)"`
	Email        string    `gorm:"type:varchar(200)"`
	Phone        string    `gorm:"type:varchar(50)"`
	AddressLine1 string    `gorm:"column:address_line1;type:varchar(300)"`
	PostalCode   string    `gorm:"column:postal_code;type:varchar(20)"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for ContactModel
func (ContactModel) TableName() string {
	return "contacts"
}

// ClientContactModel links contacts to clients with a primary flag
type ClientContactModel struct {
	ClientID  uuid.UUID `gorm:"column:client_id;type:uuid;primary_key"`
	ContactID uuid.UUID `gorm:"column:contact_id;type:uuid;primary_key"`
	IsPrimary bool      `gorm:"column:is_primary;not null;default:false"`
}

// TableName returns the table name for ClientContactModel
func (ClientContactModel) TableName() string {
	return "client_contacts"
}

// CountryModel is the GORM model for the countries table
type CountryModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Name string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for CountryModel
func (CountryModel) TableName() string {
	return "countries"
}

// CityModel is the GORM model for the cities table
type CityModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Name string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for CityModel
func (CityModel) TableName() string {
	return "cities"
}

// ProjectModel is the GORM model for the projects table
type ProjectModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Identifier  string    `gorm:"type:varchar(100)"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for ProjectModel
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts ProjectModel to domain Project
func (m *ProjectModel) ToDomain() *document.Project {
	return &document.Project{
		ID:          m.ID,
		Name:        m.Name,
		Identifier:  m.Identifier,
		Description: m.Description,
	}
}

// ProductModel is the GORM model for the products table
type ProductModel struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key"`
	Name          string           `gorm:"type:varchar(200);not null"`
	Description   string           `gorm:"type:text"`
	LanguageCode  string           `gorm:"column:language_code;type:varchar(10);not null"`
	BaseUnitPrice decimal.Decimal  `gorm:"column:base_unit_price;type:decimal(15,4);not null"`
	UnitOfMeasure string           `gorm:"column:unit_of_measure;type:varchar(20)"`
	WeightKg      *decimal.Decimal `gorm:"column:weight_kg;type:decimal(12,4)"`
	DimensionsCm  string           `gorm:"column:dimensions_cm;type:varchar(50)"`
	Deleted       bool             `gorm:"not null;default:false"`
	CreatedAt     time.Time        `gorm:"not null"`
	UpdatedAt     time.Time        `gorm:"not null"`
}

// TableName returns the table name for ProductModel
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts ProductModel to domain Product
func (m *ProductModel) ToDomain() *document.Product {
	return &document.Product{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		LanguageCode:  m.LanguageCode,
		BaseUnitPrice: m.BaseUnitPrice,
		UnitOfMeasure: m.UnitOfMeasure,
		WeightKg:      m.WeightKg,
		DimensionsCm:  m.DimensionsCm,
		Deleted:       m.Deleted,
	}
}

// ProductTranslationModel is the GORM model for product_translations
type ProductTranslationModel struct {
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;primary_key"`
	LanguageCode string    `gorm:"column:language_code;type:varchar(10);primary_key"`
	Name         string    `gorm:"type:varchar(200)"`
	Description  string    `gorm:"type:text"`
}

// TableName returns the table name for ProductTranslationModel
func (ProductTranslationModel) TableName() string {
	return "product_translations"
}

// ToDomain converts ProductTranslationModel to domain ProductTranslation
func (m *ProductTranslationModel) ToDomain() document.ProductTranslation {
	return document.ProductTranslation{
		ProductID:    m.ProductID,
		LanguageCode: m.LanguageCode,
		Name:         m.Name,
		Description:  m.Description,
	}
}

// ClientProjectProductModel links products to clients and projects with
// quantity and an optional price override
type ClientProjectProductModel struct {
	ID                uuid.UUID        `gorm:"type:uuid;primary_key"`
	ClientID          uuid.UUID        `gorm:"column:client_id;type:uuid;not null;index"`
	ProjectID         *uuid.UUID       `gorm:"column:project_id;type:uuid;index"`
	ProductID         uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	Quantity          decimal.Decimal  `gorm:"type:decimal(12,4);not null;default:1"`
	UnitPriceOverride *decimal.Decimal `gorm:"column:unit_price_override;type:decimal(15,4)"`
	CreatedAt         time.Time        `gorm:"not null"`
}

// TableName returns the table name for ClientProjectProductModel
func (ClientProjectProductModel) TableName() string {
	return "client_project_products"
}

// ToDomain converts ClientProjectProductModel to domain ProductLink
func (m *ClientProjectProductModel) ToDomain() document.ProductLink {
	return document.ProductLink{
		ID:                m.ID,
		ClientID:          m.ClientID,
		ProjectID:         m.ProjectID,
		ProductID:         m.ProductID,
		Quantity:          m.Quantity,
		UnitPriceOverride: m.UnitPriceOverride,
	}
}

// MediaLinkModel is the GORM model for product media links
type MediaLinkModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	URL       string    `gorm:"type:varchar(500);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for MediaLinkModel
func (MediaLinkModel) TableName() string {
	return "media_links"
}

// ClientDocumentNoteModel stores per-client footer notes keyed by
// document type and language
type ClientDocumentNoteModel struct {
	ClientID     uuid.UUID `gorm:"column:client_id;type:uuid;primary_key"`
	DocumentType string    `gorm:"column:document_type;type:varchar(50);primary_key"`
	LanguageCode string    `gorm:"column:language_code;type:varchar(10);primary_key"`
	Notes        string    `gorm:"type:text"`
}

// TableName returns the table name for ClientDocumentNoteModel
func (ClientDocumentNoteModel) TableName() string {
	return "client_document_notes"
}

// AppSettingModel is the GORM model for the app_settings key-value
// table. The numbering service's year counters live here.
type AppSettingModel struct {
	Key       string    `gorm:"type:varchar(100);primary_key"`
	Value     string    `gorm:"type:varchar(500);not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for AppSettingModel
func (AppSettingModel) TableName() string {
	return "app_settings"
}

// GeneratedDocumentModel is the GORM model for generated_documents
type GeneratedDocumentModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key"`
	ClientID         uuid.UUID  `gorm:"column:client_id;type:uuid;not null;index"`
	ProjectID        *uuid.UUID `gorm:"column:project_id;type:uuid;index"`
	DisplayName      string     `gorm:"column:display_name;type:varchar(300);not null"`
	FileNameOnDisk   string     `gorm:"column:file_name_on_disk;type:varchar(300);not null"`
	RelativePath     string     `gorm:"column:relative_path;type:varchar(500);not null"`
	DocumentType     string     `gorm:"column:document_type;type:varchar(50);not null"`
	SourceTemplateID string     `gorm:"column:source_template_id;type:varchar(200)"`
	CreatedBy        string     `gorm:"column:created_by;type:varchar(100)"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

// TableName returns the table name for GeneratedDocumentModel
func (GeneratedDocumentModel) TableName() string {
	return "generated_documents"
}

// ToDomain converts GeneratedDocumentModel to domain GeneratedDocument
func (m *GeneratedDocumentModel) ToDomain() *document.GeneratedDocument {
	return &document.GeneratedDocument{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ClientID:         m.ClientID,
		ProjectID:        m.ProjectID,
		DisplayName:      m.DisplayName,
		FileNameOnDisk:   m.FileNameOnDisk,
		RelativePath:     m.RelativePath,
		DocumentType:     document.DocType(m.DocumentType),
		SourceTemplateID: m.SourceTemplateID,
		CreatedBy:        m.CreatedBy,
	}
}

// GeneratedDocumentModelFromDomain creates a GeneratedDocumentModel
// from domain GeneratedDocument
func GeneratedDocumentModelFromDomain(d *document.GeneratedDocument) *GeneratedDocumentModel {
	return &GeneratedDocumentModel{
		ID:               d.ID,
		ClientID:         d.ClientID,
		ProjectID:        d.ProjectID,
		DisplayName:      d.DisplayName,
		FileNameOnDisk:   d.FileNameOnDisk,
		RelativePath:     d.RelativePath,
		DocumentType:     string(d.DocumentType),
		SourceTemplateID: d.SourceTemplateID,
		CreatedBy:        d.CreatedBy,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
