package docgen

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/docgen/backend/internal/domain/document"
	"github.com/docgen/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Recognised Additional keys. Scalars override document defaults;
// exactly one of the line-item keys selects the product source.
//
//	currency_symbol, current_date, issue_date, due_date,
//	invoice_number, tax_label, payment_terms, delivery_terms,
//	incoterms, vat_rate_percentage, discount_rate_percentage,
//	grand_total_amount_words, project_identifier, project_name,
//	lite_selected_products ([]SelectedProduct),
//	line_items ([]LineItem),
//	linked_client_project_product_ids ([]uuid.UUID)
const (
	keyLiteSelectedProducts = "lite_selected_products"
	keyLineItems            = "line_items"
	keyLinkedProductIDs     = "linked_client_project_product_ids"
)

const dateLayout = "2006-01-02"

// ContextBuilder assembles the document context for one generation
// request. Assembly is resilient: a failure inside one section logs
// and degrades that section to sentinel values instead of failing the
// whole build, so the template render never crashes on a missing key.
// Only invoice number allocation is fatal.
type ContextBuilder struct {
	data      document.DataPort
	numbering *NumberingService
	cfg       config.DocGenConfig
	now       func() time.Time
	logger    *zap.Logger
}

// NewContextBuilder creates a context builder using the wall clock
func NewContextBuilder(data document.DataPort, numbering *NumberingService, cfg config.DocGenConfig, logger *zap.Logger) *ContextBuilder {
	return NewContextBuilderWithClock(data, numbering, cfg, time.Now, logger)
}

// NewContextBuilderWithClock creates a context builder with an
// injected clock
func NewContextBuilderWithClock(data document.DataPort, numbering *NumberingService, cfg config.DocGenConfig, now func() time.Time, logger *zap.Logger) *ContextBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextBuilder{data: data, numbering: numbering, cfg: cfg, now: now, logger: logger}
}

// BuildProformaContext assembles the context for a proforma invoice.
// A fresh PF-xxxxxxxx identifier is generated per call.
func (b *ContextBuilder) BuildProformaContext(ctx context.Context, req BuildRequest) (*document.Context, error) {
	return b.build(ctx, req, document.DocTypeProformaInvoice)
}

// BuildFinalInvoiceContext assembles the context for a final invoice.
// An invoice number is allocated unless the caller supplies one; a
// numbering failure aborts the build.
func (b *ContextBuilder) BuildFinalInvoiceContext(ctx context.Context, req BuildRequest) (*document.Context, error) {
	return b.build(ctx, req, document.DocTypeFinalInvoice)
}

func (b *ContextBuilder) build(ctx context.Context, req BuildRequest, docType document.DocType) (*document.Context, error) {
	add := req.Additional
	if add == nil {
		add = map[string]any{}
	}

	dctx := &document.Context{
		TargetLang: req.TargetLanguageCode,
		Additional: add,
	}

	if err := b.seedDoc(ctx, &dctx.Doc, add, docType); err != nil {
		return nil, err
	}

	b.section("seller", req.ClientID, func() error {
		return b.buildSeller(ctx, req.CompanyID, add, &dctx.Seller)
	}, func() {
		dctx.Seller.CompanyName = document.ErrorSentinel
	})

	b.section("client", req.ClientID, func() error {
		return b.buildClient(ctx, req.ClientID, &dctx.Client)
	}, func() {
		dctx.Client.CompanyName = document.ErrorSentinel
	})

	b.section("project", req.ClientID, func() error {
		return b.buildProject(ctx, req.ProjectID, add, &dctx.Project)
	}, func() {
		dctx.Project.Name = document.ErrorSentinel
	})

	b.section("products", req.ClientID, func() error {
		return b.buildProducts(ctx, req, add, dctx)
	}, func() {
		dctx.Products = nil
		dctx.Doc.ProductsTableRows = document.ErrorSentinel
	})

	b.computeTotals(&dctx.Doc, dctx.Products)
	dctx.Doc.ProductsTableRows = renderProductRows(dctx.Products)

	b.section("footer_notes", req.ClientID, func() error {
		notes, err := b.data.GetClientDocumentNotes(ctx, req.ClientID, docType, req.TargetLanguageCode)
		if err != nil {
			return err
		}
		dctx.Doc.ClientSpecificFooterNotes = strings.ReplaceAll(notes, "\n", "<br>")
		return nil
	}, func() {
		dctx.Doc.ClientSpecificFooterNotes = document.ErrorSentinel
	})

	dctx.Placeholders = buildPlaceholders(dctx, add)
	return dctx, nil
}

// section runs one assembly step, recovering from errors and panics by
// logging and applying the degraded values.
func (b *ContextBuilder) section(name string, clientID uuid.UUID, fn func() error, degrade func()) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}()
	if err != nil {
		b.logger.Error("context section assembly failed",
			zap.String("section", name),
			zap.String("client_id", clientID.String()),
			zap.Error(err))
		degrade()
	}
}

func (b *ContextBuilder) seedDoc(ctx context.Context, doc *document.Doc, add map[string]any, docType document.DocType) error {
	now := b.now()

	doc.DecimalPlaces = int32(b.cfg.DecimalPlaces)
	doc.CurrencySymbol = stringOverride(add, "currency_symbol", b.cfg.CurrencySymbol)
	doc.CurrentDate = stringOverride(add, "current_date", now.Format(dateLayout))
	doc.CurrentYear = strconv.Itoa(now.Year())

	doc.VATRatePercentage = decimalOverride(add, "vat_rate_percentage", decimal.NewFromInt(20))
	doc.DiscountRatePercentage = decimalOverride(add, "discount_rate_percentage", decimal.Zero)
	doc.TaxLabel = stringOverride(add, "tax_label", "VAT")

	doc.PaymentTerms = stringOverride(add, "payment_terms", "")
	doc.DeliveryTerms = stringOverride(add, "delivery_terms", "")
	doc.Incoterms = stringOverride(add, "incoterms", "")
	doc.GrandTotalWords = stringOverride(add, "grand_total_amount_words", "N/A")

	if docType == document.DocTypeFinalInvoice {
		doc.IssueDate = stringOverride(add, "issue_date", now.Format(dateLayout))
		if due, ok := stringValue(add, "due_date"); ok {
			doc.DueDate = due
		} else {
			issued, err := time.Parse(dateLayout, doc.IssueDate)
			if err != nil {
				issued = now
			}
			doc.DueDate = issued.AddDate(0, 0, b.cfg.InvoiceDueDays).Format(dateLayout)
		}

		if number, ok := stringValue(add, "invoice_number"); ok {
			doc.InvoiceNumber = number
		} else {
			number, err := b.numbering.NextInvoiceNumber(ctx)
			if err != nil {
				return err
			}
			doc.InvoiceNumber = number
		}
	} else {
		doc.ProformaID = "PF-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	return nil
}

func (b *ContextBuilder) buildSeller(ctx context.Context, companyID uuid.UUID, add map[string]any, s *document.Seller) error {
	company, err := b.data.GetCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if company == nil {
		return fmt.Errorf("company %s not found", companyID)
	}

	s.CompanyName = company.Name
	s.AddressLine1 = stringOverride(add, "seller_address_line1", company.AddressLine1)
	s.PostalCode = company.PostalCode
	s.Email = company.Email
	s.Phone = company.Phone
	s.Website = company.Website

	if company.CityID != nil {
		city, err := b.data.GetCity(ctx, *company.CityID)
		if err != nil {
			return err
		}
		if city != nil {
			s.City = city.Name
		}
	}
	if company.CountryID != nil {
		country, err := b.data.GetCountry(ctx, *company.CountryID)
		if err != nil {
			return err
		}
		if country != nil {
			s.Country = country.Name
		}
	}

	payment := parseInfoPairs(company.PaymentInfo)
	other := parseInfoPairs(company.OtherInfo)
	s.BankName = payment["bank_name"]
	s.BankAccountHolder = payment["account_holder"]
	s.BankIBAN = payment["iban"]
	s.BankSWIFTBIC = payment["swift_bic"]
	s.BankAddress = payment["bank_address"]
	s.TaxID = other["tax_id"]
	s.RegistrationID = other["registration_id"]

	s.LogoPath = b.resolveLogo(company.LogoFilename)

	personnel, err := b.data.GetPersonnelForCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if len(personnel) > 0 {
		rep := personnel[0]
		for _, p := range personnel {
			if p.IsRepresentative {
				rep = p
				break
			}
		}
		s.RepresentativeName = strings.TrimSpace(rep.FirstName + " " + rep.LastName)
	}
	return nil
}

// resolveLogo returns an absolute file:// URI for the seller logo, or
// empty when the file is missing.
func (b *ContextBuilder) resolveLogo(filename string) string {
	if filename == "" {
		return ""
	}
	abs, err := filepath.Abs(filepath.Join(b.cfg.LogosDir, filename))
	if err != nil {
		return ""
	}
	if _, err := os.Stat(abs); err != nil {
		b.logger.Warn("seller logo file missing", zap.String("path", abs))
		return ""
	}
	return "file://" + filepath.ToSlash(abs)
}

func (b *ContextBuilder) buildClient(ctx context.Context, clientID uuid.UUID, c *document.Buyer) error {
	client, err := b.data.GetClient(ctx, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("client %s not found", clientID)
	}

	c.CompanyName = client.CompanyName
	c.RepresentativeName = client.ContactName
	c.AddressLine1 = client.AddressLine1
	c.PostalCode = client.PostalCode
	c.Email = client.Email
	c.Phone = client.Phone
	c.TaxID = client.TaxID

	primary := true
	contacts, err := b.data.GetContactsForClient(ctx, clientID, &primary)
	if err != nil {
		return err
	}
	if len(contacts) > 0 {
		contact := contacts[0]
		c.RepresentativeName = contact.FullName()
		if contact.Email != "" {
			c.Email = contact.Email
		}
		if contact.Phone != "" {
			c.Phone = contact.Phone
		}
		if contact.AddressLine1 != "" {
			c.AddressLine1 = contact.AddressLine1
			c.PostalCode = contact.PostalCode
		}
	}

	if client.CityID != nil {
		city, err := b.data.GetCity(ctx, *client.CityID)
		if err != nil {
			return err
		}
		if city != nil {
			c.City = city.Name
		}
	}
	if client.CountryID != nil {
		country, err := b.data.GetCountry(ctx, *client.CountryID)
		if err != nil {
			return err
		}
		if country != nil {
			c.Country = country.Name
		}
	}

	c.Address = joinAddress(c.AddressLine1, c.City, c.PostalCode, c.Country)
	return nil
}

func (b *ContextBuilder) buildProject(ctx context.Context, projectID *uuid.UUID, add map[string]any, p *document.ProjectInfo) error {
	if projectID == nil {
		p.Identifier, _ = stringValue(add, "project_identifier")
		p.Name, _ = stringValue(add, "project_name")
		return nil
	}
	project, err := b.data.GetProject(ctx, *projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %s not found", *projectID)
	}
	p.ID = project.ID.String()
	p.Name = project.Name
	p.Identifier = project.Identifier
	p.Description = project.Description
	return nil
}

// lineSpec is one resolved (product, quantity, override) triple before
// the product record is fetched
type lineSpec struct {
	productID uuid.UUID
	quantity  decimal.Decimal
	override  *decimal.Decimal
}

// resolveLineSpecs selects the product source in priority order:
// directly selected products, explicit line items, link-table IDs,
// then everything linked to the client or project.
func (b *ContextBuilder) resolveLineSpecs(ctx context.Context, req BuildRequest, add map[string]any) ([]lineSpec, error) {
	if selected, ok := add[keyLiteSelectedProducts].([]SelectedProduct); ok && len(selected) > 0 {
		specs := make([]lineSpec, 0, len(selected))
		for _, s := range selected {
			specs = append(specs, lineSpec{productID: s.ProductID, quantity: s.Quantity, override: s.UnitPriceOverride})
		}
		return specs, nil
	}

	if items, ok := add[keyLineItems].([]LineItem); ok && len(items) > 0 {
		specs := make([]lineSpec, 0, len(items))
		for _, item := range items {
			specs = append(specs, lineSpec{productID: item.ProductID, quantity: item.Quantity, override: item.UnitPrice})
		}
		return specs, nil
	}

	if ids, ok := add[keyLinkedProductIDs].([]uuid.UUID); ok && len(ids) > 0 {
		specs := make([]lineSpec, 0, len(ids))
		for _, id := range ids {
			link, err := b.data.GetProductLink(ctx, id)
			if err != nil {
				return nil, err
			}
			if link == nil {
				b.logger.Warn("product link not found", zap.String("link_id", id.String()))
				continue
			}
			specs = append(specs, lineSpec{productID: link.ProductID, quantity: link.Quantity, override: link.UnitPriceOverride})
		}
		return specs, nil
	}

	links, err := b.data.GetProductsForClientOrProject(ctx, req.ClientID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	specs := make([]lineSpec, 0, len(links))
	for _, link := range links {
		specs = append(specs, lineSpec{productID: link.ProductID, quantity: link.Quantity, override: link.UnitPriceOverride})
	}
	return specs, nil
}

// languageMatches reports whether two language codes share the same
// base language, so "en-US" catalogue content satisfies an "en"
// request without a translation lookup.
func languageMatches(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	ta, errA := language.Parse(a)
	tb, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	baseA, confA := ta.Base()
	baseB, confB := tb.Base()
	return confA != language.No && confB != language.No && baseA == baseB
}

func (b *ContextBuilder) buildProducts(ctx context.Context, req BuildRequest, add map[string]any, dctx *document.Context) error {
	specs, err := b.resolveLineSpecs(ctx, req, add)
	if err != nil {
		return err
	}

	dp := dctx.Doc.DecimalPlaces
	symbol := dctx.Doc.CurrencySymbol
	target := req.TargetLanguageCode

	lines := make([]document.ProductLine, 0, len(specs))
	for _, spec := range specs {
		product, err := b.data.GetProduct(ctx, spec.productID)
		if err != nil {
			return err
		}
		if product == nil {
			b.logger.Warn("product not found, line skipped",
				zap.String("product_id", spec.productID.String()))
			continue
		}

		name, description, match := product.Name, product.Description, false
		if languageMatches(product.LanguageCode, target) {
			match = true
		} else {
			translations, err := b.data.GetProductTranslations(ctx, product.ID, target)
			if err != nil {
				return err
			}
			if len(translations) > 0 && translations[0].Name != "" {
				name = translations[0].Name
				description = translations[0].Description
				match = true
			}
		}

		price := product.BaseUnitPrice
		if spec.override != nil {
			price = *spec.override
		}
		price = RoundAmount(price, dp)
		total := RoundAmount(price.Mul(spec.quantity), dp)

		var mediaURLs []string
		media, err := b.data.GetMediaLinksForProduct(ctx, product.ID)
		if err != nil {
			b.logger.Warn("media links unavailable",
				zap.String("product_id", product.ID.String()), zap.Error(err))
		} else {
			for _, m := range media {
				mediaURLs = append(mediaURLs, m.URL)
			}
		}

		weight := ""
		if product.WeightKg != nil {
			weight = product.WeightKg.String()
		}

		lines = append(lines, document.ProductLine{
			ID:                  product.ID.String(),
			Name:                name,
			Description:         description,
			Quantity:            spec.quantity,
			UnitPriceRaw:        price,
			UnitPriceFormatted:  FormatAmount(price, symbol, dp),
			TotalPriceRaw:       total,
			TotalPriceFormatted: FormatAmount(total, symbol, dp),
			UnitOfMeasure:       product.UnitOfMeasure,
			LanguageMatch:       match,
			OriginalName:        product.Name,
			OriginalDescription: product.Description,
			WeightKg:            weight,
			DimensionsCm:        product.DimensionsCm,
			MediaLinks:          mediaURLs,
		})
	}

	dctx.Products = lines
	return nil
}

// computeTotals applies the invoice arithmetic: discount off the
// subtotal, tax on the discounted base, everything rounded half-up to
// the document's decimal places.
func (b *ContextBuilder) computeTotals(doc *document.Doc, products []document.ProductLine) {
	dp := doc.DecimalPlaces
	hundred := decimal.NewFromInt(100)

	subtotal := decimal.Zero
	for _, p := range products {
		subtotal = subtotal.Add(p.TotalPriceRaw)
	}
	subtotal = RoundAmount(subtotal, dp)

	discount := RoundAmount(subtotal.Mul(doc.DiscountRatePercentage).Div(hundred), dp)
	tax := RoundAmount(subtotal.Sub(discount).Mul(doc.VATRatePercentage).Div(hundred), dp)
	grand := RoundAmount(subtotal.Sub(discount).Add(tax), dp)

	doc.SubtotalRaw = subtotal
	doc.SubtotalFormatted = FormatAmount(subtotal, doc.CurrencySymbol, dp)
	doc.DiscountRaw = discount
	doc.DiscountFormatted = FormatAmount(discount, doc.CurrencySymbol, dp)
	doc.TaxAmountRaw = tax
	doc.TaxAmountFormatted = FormatAmount(tax, doc.CurrencySymbol, dp)
	doc.GrandTotalRaw = grand
	doc.GrandTotalFormatted = FormatAmount(grand, doc.CurrencySymbol, dp)
}

// renderProductRows pre-renders the line items as <tr> elements for
// templates that splice an opaque table body instead of iterating.
func renderProductRows(products []document.ProductLine) string {
	var b strings.Builder
	for _, p := range products {
		b.WriteString("<tr>")
		b.WriteString("<td>" + html.EscapeString(p.Name) + "</td>")
		b.WriteString("<td>" + html.EscapeString(p.Description) + "</td>")
		b.WriteString("<td>" + p.Quantity.String() + "</td>")
		b.WriteString("<td>" + html.EscapeString(p.UnitPriceFormatted) + "</td>")
		b.WriteString("<td>" + html.EscapeString(p.TotalPriceFormatted) + "</td>")
		b.WriteString("</tr>")
	}
	return b.String()
}

// buildPlaceholders mirrors the context into the flat string map used
// by DOCX templates: one dotted key per scalar leaf plus UPPER_SNAKE
// aliases for the common fields. Extra scalar keys from the caller are
// merged last and never overwrite reserved keys.
func buildPlaceholders(dctx *document.Context, add map[string]any) map[string]string {
	out := make(map[string]string)
	flattenDotted("", dctx.Map(), out)

	doc, seller, client, project := &dctx.Doc, &dctx.Seller, &dctx.Client, &dctx.Project
	aliases := map[string]string{
		"CURRENT_DATE":                 doc.CurrentDate,
		"CURRENT_YEAR":                 doc.CurrentYear,
		"CURRENCY_SYMBOL":              doc.CurrencySymbol,
		"INVOICE_NUMBER":               doc.InvoiceNumber,
		"PROFORMA_ID":                  doc.ProformaID,
		"ISSUE_DATE":                   doc.IssueDate,
		"DUE_DATE":                     doc.DueDate,
		"PAYMENT_TERMS":                doc.PaymentTerms,
		"DELIVERY_TERMS":               doc.DeliveryTerms,
		"INCOTERMS":                    doc.Incoterms,
		"TAX_LABEL":                    doc.TaxLabel,
		"SUBTOTAL_AMOUNT":              doc.SubtotalFormatted,
		"DISCOUNT_AMOUNT":              doc.DiscountFormatted,
		"TAX_AMOUNT":                   doc.TaxAmountFormatted,
		"VAT_AMOUNT":                   doc.TaxAmountFormatted,
		"GRAND_TOTAL_AMOUNT":           doc.GrandTotalFormatted,
		"GRAND_TOTAL_AMOUNT_WORDS":     doc.GrandTotalWords,
		"CLIENT_SPECIFIC_FOOTER_NOTES": doc.ClientSpecificFooterNotes,

		"SELLER_COMPANY_NAME":        seller.CompanyName,
		"SELLER_ADDRESS":             joinAddress(seller.AddressLine1, seller.City, seller.PostalCode, seller.Country),
		"SELLER_EMAIL":               seller.Email,
		"SELLER_PHONE":               seller.Phone,
		"SELLER_WEBSITE":             seller.Website,
		"SELLER_TAX_ID":              seller.TaxID,
		"SELLER_REGISTRATION_ID":     seller.RegistrationID,
		"SELLER_REPRESENTATIVE_NAME": seller.RepresentativeName,
		"SELLER_BANK_NAME":           seller.BankName,
		"SELLER_BANK_ACCOUNT_HOLDER": seller.BankAccountHolder,
		"SELLER_BANK_IBAN":           seller.BankIBAN,
		"SELLER_BANK_SWIFT_BIC":      seller.BankSWIFTBIC,
		"SELLER_BANK_ADDRESS":        seller.BankAddress,

		"BUYER_COMPANY_NAME":         client.CompanyName,
		"BUYER_REPRESENTATIVE_NAME":  client.RepresentativeName,
		"BUYER_ADDRESS":              client.Address,
		"BUYER_EMAIL":                client.Email,
		"BUYER_PHONE":                client.Phone,
		"BUYER_TAX_ID":               client.TaxID,
		"CLIENT_COMPANY_NAME":        client.CompanyName,
		"CLIENT_REPRESENTATIVE_NAME": client.RepresentativeName,
		"CLIENT_ADDRESS":             client.Address,

		"PROJECT_NAME":        project.Name,
		"PROJECT_IDENTIFIER":  project.Identifier,
		"PROJECT_DESCRIPTION": project.Description,

		"TARGET_LANGUAGE_CODE": dctx.TargetLang,
	}
	for k, v := range aliases {
		out[k] = v
	}

	for k, v := range add {
		if _, reserved := out[k]; reserved {
			continue
		}
		if s, ok := scalarString(v); ok {
			out[k] = s
		}
	}
	return out
}

// flattenDotted writes every scalar leaf of the context tree into out
// under its dotted path. Lists are skipped; they have no flat mirror.
func flattenDotted(prefix string, m map[string]any, out map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flattenDotted(key, val, out)
		case []any:
			// skipped
		default:
			if s, ok := scalarString(v); ok {
				out[key] = s
			}
		}
	}
}

// scalarString stringifies a scalar value; nil becomes empty string
func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case decimal.Decimal:
		return val.String(), true
	default:
		return "", false
	}
}

// stringValue reads a non-empty string from the override bag
func stringValue(add map[string]any, key string) (string, bool) {
	if v, ok := add[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func stringOverride(add map[string]any, key, fallback string) string {
	if s, ok := stringValue(add, key); ok {
		return s
	}
	return fallback
}

// decimalOverride reads a numeric override accepting decimal, string
// and float shapes
func decimalOverride(add map[string]any, key string, fallback decimal.Decimal) decimal.Decimal {
	v, ok := add[key]
	if !ok {
		return fallback
	}
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case string:
		if d, err := decimal.NewFromString(val); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	}
	return fallback
}

// parseInfoPairs decodes an opaque info string: JSON object first,
// falling back to semicolon-separated key:value pairs.
func parseInfoPairs(raw string) map[string]string {
	result := make(map[string]string)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return result
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		for k, v := range parsed {
			if s, ok := scalarString(v); ok {
				result[k] = s
			}
		}
		return result
	}

	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		if i := strings.Index(pair, ":"); i > 0 {
			result[strings.TrimSpace(pair[:i])] = strings.TrimSpace(pair[i+1:])
		}
	}
	return result
}

// joinAddress joins the non-empty address pieces; placeholders that
// read "N/A" upstream are dropped.
func joinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || strings.EqualFold(p, "N/A") {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ", ")
}
