package document

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Company is a seller entity as read through the data port.
// PaymentInfo and OtherInfo are opaque strings maintained upstream;
// they hold either JSON or semicolon-separated "key:value" pairs.
type Company struct {
	ID           uuid.UUID
	Name         string
	AddressLine1 string
	CityID       *uuid.UUID
	CountryID    *uuid.UUID
	PostalCode   string
	Phone        string
	Email        string
	Website      string
	PaymentInfo  string
	OtherInfo    string
	LogoFilename string
}

// Personnel is a person employed by a seller company
type Personnel struct {
	ID               uuid.UUID
	CompanyID        uuid.UUID
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	IsRepresentative bool
}

// Client is a buyer of documents' subject goods
type Client struct {
	ID          uuid.UUID
	CompanyName string
	ContactName string

	AddressLine1 string
	CityID       *uuid.UUID
	CountryID    *uuid.UUID
	PostalCode   string

	Email string
	Phone string

	// Languages is ordered; the first entry is the primary language.
	Languages []string
	TaxID     string
	Notes     string

	// BaseFolderPath is the stable relative directory under which all
	// generated artifacts for this client are stored.
	BaseFolderPath string
}

// Contact is a person linked to one or more clients
type Contact struct {
	ID                 uuid.UUID
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	AddressLine1       string
	PostalCode         string
	IsPrimaryForClient bool
}

// FullName returns the contact's display name
func (c *Contact) FullName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.LastName
	}
}

// Country is an address denormalisation lookup
type Country struct {
	ID   uuid.UUID
	Name string
}

// City is an address denormalisation lookup
type City struct {
	ID   uuid.UUID
	Name string
}

// Project groups products and generated documents for a client
type Project struct {
	ID          uuid.UUID
	Name        string
	Identifier  string
	Description string
}

// Product is a sellable item priced in the document currency
type Product struct {
	ID            uuid.UUID
	Name          string
	Description   string
	LanguageCode  string
	BaseUnitPrice decimal.Decimal
	UnitOfMeasure string
	WeightKg      *decimal.Decimal
	DimensionsCm  string
	Deleted       bool
}

// ProductTranslation carries a product's name and description in
// another language
type ProductTranslation struct {
	ProductID    uuid.UUID
	LanguageCode string
	Name         string
	Description  string
}

// ProductLink ties a product to a client and optionally a project,
// with quantity and an optional price override
type ProductLink struct {
	ID                uuid.UUID
	ClientID          uuid.UUID
	ProjectID         *uuid.UUID
	ProductID         uuid.UUID
	Quantity          decimal.Decimal
	UnitPriceOverride *decimal.Decimal
}

// MediaLink is an external media reference attached to a product
type MediaLink struct {
	ProductID uuid.UUID
	URL       string
}
