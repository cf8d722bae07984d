package document

import (
	"context"

	"github.com/google/uuid"
)

// DataPort is the read-only view of the relational store the context
// builder depends on. Lookups return (nil, nil) when the record does
// not exist; collections are returned in a stable order.
type DataPort interface {
	GetCompany(ctx context.Context, companyID uuid.UUID) (*Company, error)
	GetPersonnelForCompany(ctx context.Context, companyID uuid.UUID) ([]Personnel, error)

	GetClient(ctx context.Context, clientID uuid.UUID) (*Client, error)
	// GetContactsForClient filters on the primary flag when primaryOnly
	// is non-nil.
	GetContactsForClient(ctx context.Context, clientID uuid.UUID, primaryOnly *bool) ([]Contact, error)

	GetCountry(ctx context.Context, countryID uuid.UUID) (*Country, error)
	GetCity(ctx context.Context, cityID uuid.UUID) (*City, error)

	GetProject(ctx context.Context, projectID uuid.UUID) (*Project, error)

	GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error)
	GetProductsForClientOrProject(ctx context.Context, clientID uuid.UUID, projectID *uuid.UUID) ([]ProductLink, error)
	GetProductLink(ctx context.Context, linkID uuid.UUID) (*ProductLink, error)
	GetProductTranslations(ctx context.Context, productID uuid.UUID, targetLanguageCode string) ([]ProductTranslation, error)
	GetMediaLinksForProduct(ctx context.Context, productID uuid.UUID) ([]MediaLink, error)

	GetClientDocumentNotes(ctx context.Context, clientID uuid.UUID, docType DocType, languageCode string) (string, error)
}

// SettingsStore is the keyed application-setting port. The numbering
// service builds its year counters on top of it.
type SettingsStore interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetIfCAS atomically sets key to newValue when the current value
	// equals expected. A nil expected means the key must not exist yet.
	// Returns false without error when the comparison fails.
	SetIfCAS(ctx context.Context, key string, expected *string, newValue string) (bool, error)
}

// GeneratedDocumentRepository persists generated document metadata
type GeneratedDocumentRepository interface {
	Save(ctx context.Context, doc *GeneratedDocument) error
	FindByID(ctx context.Context, id uuid.UUID) (*GeneratedDocument, error)
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]GeneratedDocument, error)
}
