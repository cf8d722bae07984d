package docgen

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuildRequest identifies the parties and language of one document.
// Additional carries caller overrides and line-item data; recognised
// keys are documented on ContextBuilder.
type BuildRequest struct {
	ClientID           uuid.UUID
	CompanyID          uuid.UUID
	TargetLanguageCode string
	ProjectID          *uuid.UUID
	Additional         map[string]any
}

// LineItem is the final-invoice line shape with an explicit unit price
type LineItem struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
}

// SelectedProduct is a directly selected product with an optional
// price override
type SelectedProduct struct {
	ProductID         uuid.UUID
	Quantity          decimal.Decimal
	UnitPriceOverride *decimal.Decimal
}
