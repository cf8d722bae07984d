package document

import (
	"github.com/shopspring/decimal"
)

// ErrorSentinel is the degraded value written into context sections
// whose assembly failed. Templates render it verbatim.
const ErrorSentinel = "Error - See Logs"

// Doc holds the per-document scalars of a context: identifiers, dates,
// rates and monetary totals. DecimalPlaces and CurrencySymbol travel
// with the document so every formatter sees the same policy.
type Doc struct {
	CurrentDate string
	CurrentYear string

	CurrencySymbol string
	DecimalPlaces  int32

	VATRatePercentage      decimal.Decimal
	DiscountRatePercentage decimal.Decimal

	InvoiceNumber string
	ProformaID    string

	IssueDate     string
	DueDate       string
	PaymentTerms  string
	DeliveryTerms string
	Incoterms     string

	SubtotalRaw       decimal.Decimal
	SubtotalFormatted string

	DiscountRaw       decimal.Decimal
	DiscountFormatted string

	TaxLabel           string
	TaxAmountRaw       decimal.Decimal
	TaxAmountFormatted string

	GrandTotalRaw       decimal.Decimal
	GrandTotalFormatted string
	GrandTotalWords     string

	ClientSpecificFooterNotes string

	// ProductsTableRows is a pre-rendered HTML block of <tr> elements.
	// Legacy templates splice it verbatim instead of iterating products.
	ProductsTableRows string
}

// Seller is the seller-company section of a context
type Seller struct {
	CompanyName        string
	AddressLine1       string
	City               string
	Country            string
	PostalCode         string
	Email              string
	Phone              string
	Website            string
	TaxID              string
	RegistrationID     string
	RepresentativeName string

	BankName          string
	BankAccountHolder string
	BankIBAN          string
	BankSWIFTBIC      string
	BankAddress       string

	// LogoPath is an absolute file:// URI, empty when the logo file
	// does not exist.
	LogoPath string
}

// Buyer is the client section of a context
type Buyer struct {
	CompanyName        string
	RepresentativeName string
	AddressLine1       string
	City               string
	Country            string
	PostalCode         string
	Address            string
	Email              string
	Phone              string
	TaxID              string
}

// ProjectInfo is the project section of a context
type ProjectInfo struct {
	ID          string
	Name        string
	Identifier  string
	Description string
}

// ProductLine is one resolved line item of a context
type ProductLine struct {
	ID                  string
	Name                string
	Description         string
	Quantity            decimal.Decimal
	UnitPriceRaw        decimal.Decimal
	UnitPriceFormatted  string
	TotalPriceRaw       decimal.Decimal
	TotalPriceFormatted string
	UnitOfMeasure       string
	LanguageMatch       bool
	OriginalName        string
	OriginalDescription string
	WeightKg            string
	DimensionsCm        string
	MediaLinks          []string
}

// Context is the assembled data tree passed to the template renderer.
// Placeholders is the flat UPPER_SNAKE / dotted string mirror consumed
// by the DOCX populator and token-style templates.
type Context struct {
	Doc          Doc
	Seller       Seller
	Client       Buyer
	Project      ProjectInfo
	Products     []ProductLine
	TargetLang   string
	Placeholders map[string]string
	Additional   map[string]any
}

// Map flattens the context into the uniform value tree the template
// renderer walks. Monetary *_raw values are fixed-point strings so the
// rendered output is deterministic.
func (c *Context) Map() map[string]any {
	dp := c.Doc.DecimalPlaces

	doc := map[string]any{
		"current_date":                 c.Doc.CurrentDate,
		"current_year":                 c.Doc.CurrentYear,
		"currency_symbol":              c.Doc.CurrencySymbol,
		"vat_rate_percentage":          c.Doc.VATRatePercentage.String(),
		"discount_rate_percentage":     c.Doc.DiscountRatePercentage.String(),
		"invoice_number":               c.Doc.InvoiceNumber,
		"proforma_id":                  c.Doc.ProformaID,
		"issue_date":                   c.Doc.IssueDate,
		"due_date":                     c.Doc.DueDate,
		"payment_terms":                c.Doc.PaymentTerms,
		"delivery_terms":               c.Doc.DeliveryTerms,
		"incoterms":                    c.Doc.Incoterms,
		"subtotal_amount_raw":          c.Doc.SubtotalRaw.StringFixed(dp),
		"subtotal_amount_formatted":    c.Doc.SubtotalFormatted,
		"discount_amount_raw":          c.Doc.DiscountRaw.StringFixed(dp),
		"discount_amount_formatted":    c.Doc.DiscountFormatted,
		"tax_label":                    c.Doc.TaxLabel,
		"vat_amount_raw":               c.Doc.TaxAmountRaw.StringFixed(dp),
		"vat_amount_formatted":         c.Doc.TaxAmountFormatted,
		"tax_amount_raw":               c.Doc.TaxAmountRaw.StringFixed(dp),
		"tax_amount_formatted":         c.Doc.TaxAmountFormatted,
		"grand_total_amount_raw":       c.Doc.GrandTotalRaw.StringFixed(dp),
		"grand_total_amount_formatted": c.Doc.GrandTotalFormatted,
		"grand_total_amount_words":     c.Doc.GrandTotalWords,
		"client_specific_footer_notes": c.Doc.ClientSpecificFooterNotes,
		"products_table_rows":          c.Doc.ProductsTableRows,
	}

	seller := map[string]any{
		"company_name":        c.Seller.CompanyName,
		"address_line1":       c.Seller.AddressLine1,
		"city":                c.Seller.City,
		"country":             c.Seller.Country,
		"postal_code":         c.Seller.PostalCode,
		"email":               c.Seller.Email,
		"phone":               c.Seller.Phone,
		"website":             c.Seller.Website,
		"tax_id":              c.Seller.TaxID,
		"registration_id":     c.Seller.RegistrationID,
		"representative_name": c.Seller.RepresentativeName,
		"bank_name":           c.Seller.BankName,
		"bank_account_holder": c.Seller.BankAccountHolder,
		"bank_iban":           c.Seller.BankIBAN,
		"bank_swift_bic":      c.Seller.BankSWIFTBIC,
		"bank_address":        c.Seller.BankAddress,
		"logo_path":           c.Seller.LogoPath,
	}

	client := map[string]any{
		"company_name":        c.Client.CompanyName,
		"representative_name": c.Client.RepresentativeName,
		"address_line1":       c.Client.AddressLine1,
		"city":                c.Client.City,
		"country":             c.Client.Country,
		"postal_code":         c.Client.PostalCode,
		"address":             c.Client.Address,
		"email":               c.Client.Email,
		"phone":               c.Client.Phone,
		"tax_id":              c.Client.TaxID,
	}

	project := map[string]any{
		"id":          c.Project.ID,
		"name":        c.Project.Name,
		"identifier":  c.Project.Identifier,
		"description": c.Project.Description,
	}

	products := make([]any, len(c.Products))
	for i, p := range c.Products {
		links := make([]any, len(p.MediaLinks))
		for j, l := range p.MediaLinks {
			links[j] = l
		}
		products[i] = map[string]any{
			"id":                    p.ID,
			"name":                  p.Name,
			"description":           p.Description,
			"quantity":              p.Quantity.String(),
			"unit_price_raw":        p.UnitPriceRaw.StringFixed(dp),
			"unit_price_formatted":  p.UnitPriceFormatted,
			"total_price_raw":       p.TotalPriceRaw.StringFixed(dp),
			"total_price_formatted": p.TotalPriceFormatted,
			"unit_of_measure":       p.UnitOfMeasure,
			"language_match":        p.LanguageMatch,
			"original_name":         p.OriginalName,
			"original_description":  p.OriginalDescription,
			"weight_kg":             p.WeightKg,
			"dimensions_cm":         p.DimensionsCm,
			"media_links":           links,
		}
	}

	m := map[string]any{
		"doc":      doc,
		"seller":   seller,
		"client":   client,
		"project":  project,
		"products": products,
		"lang": map[string]any{
			"target_language_code": c.TargetLang,
		},
	}

	if len(c.Additional) > 0 {
		m["additional"] = c.Additional
	}

	return m
}
