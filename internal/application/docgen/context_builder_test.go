package docgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/docgen/backend/internal/domain/document"
	"github.com/docgen/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var proformaIDPattern = regexp.MustCompile(`^PF-[0-9a-f]{8}$`)

type builderFixture struct {
	data      *fakeDataPort
	settings  *fakeSettingsStore
	builder   *ContextBuilder
	cfg       config.DocGenConfig
	clientID  uuid.UUID
	companyID uuid.UUID
	productID uuid.UUID
}

func newBuilderFixture(t *testing.T) *builderFixture {
	t.Helper()

	f := &builderFixture{
		data:      newFakeDataPort(),
		settings:  newFakeSettingsStore(),
		clientID:  uuid.New(),
		companyID: uuid.New(),
		productID: uuid.New(),
	}
	f.cfg = config.DocGenConfig{
		TemplatesDir:   t.TempDir(),
		ClientsDir:     t.TempDir(),
		LogosDir:       t.TempDir(),
		CurrencySymbol: "€",
		DecimalPlaces:  2,
		InvoiceDueDays: 30,
	}

	sellerCityID, sellerCountryID := uuid.New(), uuid.New()
	f.data.cities[sellerCityID] = &document.City{ID: sellerCityID, Name: "Berlin"}
	f.data.countries[sellerCountryID] = &document.Country{ID: sellerCountryID, Name: "Germany"}
	f.data.companies[f.companyID] = &document.Company{
		ID:           f.companyID,
		Name:         "Globex GmbH",
		AddressLine1: "Industriestr. 1",
		CityID:       &sellerCityID,
		CountryID:    &sellerCountryID,
		PostalCode:   "10115",
		Phone:        "+49 30 1234",
		Email:        "billing@globex.example",
		Website:      "https://globex.example",
		PaymentInfo:  "bank_name:First Bank;account_holder:Globex GmbH;iban:DE89 3704;swift_bic:COBADEFF;bank_address:Berlin",
		OtherInfo:    `{"tax_id":"DE123456789","registration_id":"HRB 999"}`,
	}
	f.data.personnel[f.companyID] = []document.Personnel{
		{ID: uuid.New(), CompanyID: f.companyID, FirstName: "Ann", LastName: "Other"},
		{ID: uuid.New(), CompanyID: f.companyID, FirstName: "Max", LastName: "Mustermann", IsRepresentative: true},
	}

	clientCityID, clientCountryID := uuid.New(), uuid.New()
	f.data.cities[clientCityID] = &document.City{ID: clientCityID, Name: "Lyon"}
	f.data.countries[clientCountryID] = &document.Country{ID: clientCountryID, Name: "France"}
	f.data.clients[f.clientID] = &document.Client{
		ID:             f.clientID,
		CompanyName:    "Acme Trading",
		ContactName:    "John Doe",
		AddressLine1:   "1 Main St",
		CityID:         &clientCityID,
		CountryID:      &clientCountryID,
		PostalCode:     "69000",
		Email:          "contact@acme.example",
		Phone:          "+33 4 5678",
		Languages:      []string{"fr", "en"},
		TaxID:          "FR456",
		BaseFolderPath: "acme",
	}

	f.data.products[f.productID] = &document.Product{
		ID:            f.productID,
		Name:          "Hydraulic Pump",
		Description:   "Industrial grade pump",
		LanguageCode:  "en",
		BaseUnitPrice: decimal.RequireFromString("50.00"),
		UnitOfMeasure: "pcs",
	}

	numbering := NewNumberingServiceWithClock(f.settings, fixedClock(2026, time.March, 10), nil)
	f.builder = NewContextBuilderWithClock(f.data, numbering, f.cfg, fixedClock(2026, time.March, 10), nil)
	return f
}

func (f *builderFixture) request(additional map[string]any) BuildRequest {
	if additional == nil {
		additional = map[string]any{}
	}
	return BuildRequest{
		ClientID:           f.clientID,
		CompanyID:          f.companyID,
		TargetLanguageCode: "en",
		Additional:         additional,
	}
}

func selectedProducts(f *builderFixture, quantity string) map[string]any {
	return map[string]any{
		keyLiteSelectedProducts: []SelectedProduct{
			{ProductID: f.productID, Quantity: decimal.RequireFromString(quantity)},
		},
	}
}

func TestBuildProformaContext_Totals(t *testing.T) {
	f := newBuilderFixture(t)

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(selectedProducts(f, "4")))
	require.NoError(t, err)

	assert.Equal(t, "€200.00", dctx.Doc.SubtotalFormatted)
	assert.Equal(t, "€0.00", dctx.Doc.DiscountFormatted)
	assert.Equal(t, "€40.00", dctx.Doc.TaxAmountFormatted)
	assert.Equal(t, "€240.00", dctx.Doc.GrandTotalFormatted)
	assert.Equal(t, "VAT", dctx.Doc.TaxLabel)
	assert.Equal(t, "N/A", dctx.Doc.GrandTotalWords)

	require.Len(t, dctx.Products, 1)
	line := dctx.Products[0]
	assert.Equal(t, "€50.00", line.UnitPriceFormatted)
	assert.Equal(t, "€200.00", line.TotalPriceFormatted)
	assert.True(t, line.LanguageMatch)
}

func TestBuildProformaContext_FreshIdentifierPerCall(t *testing.T) {
	f := newBuilderFixture(t)

	first, err := f.builder.BuildProformaContext(context.Background(), f.request(nil))
	require.NoError(t, err)
	second, err := f.builder.BuildProformaContext(context.Background(), f.request(nil))
	require.NoError(t, err)

	assert.Regexp(t, proformaIDPattern, first.Doc.ProformaID)
	assert.Regexp(t, proformaIDPattern, second.Doc.ProformaID)
	assert.NotEqual(t, first.Doc.ProformaID, second.Doc.ProformaID)
	assert.Empty(t, first.Doc.InvoiceNumber)
}

func TestBuildFinalInvoiceContext_AllocatesNumberAndDates(t *testing.T) {
	f := newBuilderFixture(t)

	dctx, err := f.builder.BuildFinalInvoiceContext(context.Background(), f.request(selectedProducts(f, "4")))
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-00001", dctx.Doc.InvoiceNumber)
	assert.Empty(t, dctx.Doc.ProformaID)
	assert.Equal(t, "2026-03-10", dctx.Doc.IssueDate)
	assert.Equal(t, "2026-04-09", dctx.Doc.DueDate)
	assert.Equal(t, "2026-03-10", dctx.Doc.CurrentDate)
	assert.Equal(t, "2026", dctx.Doc.CurrentYear)
}

func TestBuildFinalInvoiceContext_CallerSuppliedNumber(t *testing.T) {
	f := newBuilderFixture(t)

	add := selectedProducts(f, "1")
	add["invoice_number"] = "INV-2025-00777"
	add["issue_date"] = "2026-01-15"

	dctx, err := f.builder.BuildFinalInvoiceContext(context.Background(), f.request(add))
	require.NoError(t, err)

	assert.Equal(t, "INV-2025-00777", dctx.Doc.InvoiceNumber)
	assert.Equal(t, "2026-01-15", dctx.Doc.IssueDate)
	assert.Equal(t, "2026-02-14", dctx.Doc.DueDate)
	// No counter is consumed when the number comes from the caller.
	assert.Equal(t, "", f.settings.value("last_invoice_sequence_2026"))
}

func TestBuildFinalInvoiceContext_NumberingFailureAborts(t *testing.T) {
	f := newBuilderFixture(t)
	f.settings.getErr = errors.New("store down")

	dctx, err := f.builder.BuildFinalInvoiceContext(context.Background(), f.request(nil))
	require.Error(t, err)
	assert.Nil(t, dctx)
	var numErr *NumberingError
	assert.ErrorAs(t, err, &numErr)
}

func TestBuild_SellerSection(t *testing.T) {
	f := newBuilderFixture(t)

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(nil))
	require.NoError(t, err)

	s := dctx.Seller
	assert.Equal(t, "Globex GmbH", s.CompanyName)
	assert.Equal(t, "Berlin", s.City)
	assert.Equal(t, "Germany", s.Country)
	assert.Equal(t, "First Bank", s.BankName)
	assert.Equal(t, "Globex GmbH", s.BankAccountHolder)
	assert.Equal(t, "DE89 3704", s.BankIBAN)
	assert.Equal(t, "COBADEFF", s.BankSWIFTBIC)
	assert.Equal(t, "Berlin", s.BankAddress)
	assert.Equal(t, "DE123456789", s.TaxID)
	assert.Equal(t, "HRB 999", s.RegistrationID)
	assert.Equal(t, "Max Mustermann", s.RepresentativeName)
	assert.Empty(t, s.LogoPath)
}

func TestBuild_SellerLogoResolved(t *testing.T) {
	f := newBuilderFixture(t)
	logoPath := filepath.Join(f.cfg.LogosDir, "globex.png")
	require.NoError(t, os.WriteFile(logoPath, []byte("png"), 0644))
	f.data.companies[f.companyID].LogoFilename = "globex.png"

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(nil))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dctx.Seller.LogoPath, "file://"), dctx.Seller.LogoPath)
	assert.True(t, strings.HasSuffix(dctx.Seller.LogoPath, "globex.png"))
}

func TestBuild_SellerLogoMissingFile(t *testing.T) {
	f := newBuilderFixture(t)
	f.data.companies[f.companyID].LogoFilename = "does-not-exist.png"

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(nil))
	require.NoError(t, err)

	assert.Empty(t, dctx.Seller.LogoPath)
}

func TestBuild_ClientSectionWithPrimaryContact(t *testing.T) {
	f := newBuilderFixture(t)
	f.data.contacts[f.clientID] = []document.Contact{
		{
			ID:                 uuid.New(),
			FirstName:          "Jane",
			LastName:           "Smith",
			Email:              "jane@acme.example",
			Phone:              "+33 6 0000",
			AddressLine1:       "Contact Street 5",
			PostalCode:         "75001",
			IsPrimaryForClient: true,
		},
		{ID: uuid.New(), FirstName: "Bob", LastName: "Minor"},
	}

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(nil))
	require.NoError(t, err)

	c := dctx.Client
	assert.Equal(t, "Acme Trading", c.CompanyName)
	assert.Equal(t, "Jane Smith", c.RepresentativeName)
	assert.Equal(t, "jane@acme.example", c.Email)
	assert.Equal(t, "+33 6 0000", c.Phone)
	assert.Equal(t, "Contact Street 5", c.AddressLine1)
	assert.Equal(t, "75001", c.PostalCode)
	assert.Equal(t, "Contact Street 5, Lyon, 75001, France", c.Address)
}

func TestBuild_ClientSectionWithoutContacts(t *testing.T) {
	f := newBuilderFixture(t)

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(nil))
	require.NoError(t, err)

	c := dctx.Client
	assert.Equal(t, "John Doe", c.RepresentativeName)
	assert.Equal(t, "contact@acme.example", c.Email)
	assert.Equal(t, "1 Main St, Lyon, 69000, France", c.Address)
}

func TestBuild_MissingClientDegradesSection(t *testing.T) {
	f := newBuilderFixture(t)
	req := f.request(selectedProducts(f, "2"))
	req.ClientID = uuid.New()

	dctx, err := f.builder.BuildProformaContext(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, document.ErrorSentinel, dctx.Client.CompanyName)
	// The rest of the context is still assembled.
	assert.Equal(t, "Globex GmbH", dctx.Seller.CompanyName)
	assert.Equal(t, "€100.00", dctx.Doc.SubtotalFormatted)
}

func TestBuild_MissingCompanyDegradesSection(t *testing.T) {
	f := newBuilderFixture(t)
	req := f.request(nil)
	req.CompanyID = uuid.New()

	dctx, err := f.builder.BuildProformaContext(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, document.ErrorSentinel, dctx.Seller.CompanyName)
	assert.Equal(t, "Acme Trading", dctx.Client.CompanyName)
}

func TestBuild_TranslationFallback(t *testing.T) {
	f := newBuilderFixture(t)
	f.data.translations[f.productID] = []document.ProductTranslation{
		{ProductID: f.productID, LanguageCode: "fr", Name: "Pompe hydraulique", Description: "Pompe industrielle"},
	}

	req := f.request(selectedProducts(f, "1"))
	req.TargetLanguageCode = "fr"

	dctx, err := f.builder.BuildProformaContext(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, dctx.Products, 1)
	line := dctx.Products[0]
	assert.Equal(t, "Pompe hydraulique", line.Name)
	assert.Equal(t, "Pompe industrielle", line.Description)
	assert.True(t, line.LanguageMatch)
	assert.Equal(t, "Hydraulic Pump", line.OriginalName)
	assert.Equal(t, "Industrial grade pump", line.OriginalDescription)
}

func TestBuild_NoTranslationKeepsOriginal(t *testing.T) {
	f := newBuilderFixture(t)

	req := f.request(selectedProducts(f, "1"))
	req.TargetLanguageCode = "fr"

	dctx, err := f.builder.BuildProformaContext(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, dctx.Products, 1)
	line := dctx.Products[0]
	assert.Equal(t, "Hydraulic Pump", line.Name)
	assert.False(t, line.LanguageMatch)
}

func TestBuild_UnitPriceOverride(t *testing.T) {
	f := newBuilderFixture(t)
	override := decimal.RequireFromString("42.555")
	add := map[string]any{
		keyLiteSelectedProducts: []SelectedProduct{
			{ProductID: f.productID, Quantity: decimal.NewFromInt(2), UnitPriceOverride: &override},
		},
	}

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(add))
	require.NoError(t, err)

	require.Len(t, dctx.Products, 1)
	assert.Equal(t, "€42.56", dctx.Products[0].UnitPriceFormatted)
	assert.Equal(t, "€85.12", dctx.Products[0].TotalPriceFormatted)
}

func TestBuild_MissingProductSkipsLine(t *testing.T) {
	f := newBuilderFixture(t)
	add := map[string]any{
		keyLiteSelectedProducts: []SelectedProduct{
			{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)},
			{ProductID: f.productID, Quantity: decimal.NewFromInt(3)},
		},
	}

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(add))
	require.NoError(t, err)

	require.Len(t, dctx.Products, 1)
	assert.Equal(t, "€150.00", dctx.Doc.SubtotalFormatted)
}

func TestBuild_NoProductSourceFallsBackToLinks(t *testing.T) {
	f := newBuilderFixture(t)
	f.data.links = []document.ProductLink{
		{ID: uuid.New(), ClientID: f.clientID, ProductID: f.productID, Quantity: decimal.NewFromInt(5)},
	}

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(nil))
	require.NoError(t, err)

	require.Len(t, dctx.Products, 1)
	assert.Equal(t, "€250.00", dctx.Doc.SubtotalFormatted)
}

func TestBuild_EmptyProducts(t *testing.T) {
	f := newBuilderFixture(t)

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(nil))
	require.NoError(t, err)

	assert.Empty(t, dctx.Products)
	assert.Equal(t, "€0.00", dctx.Doc.SubtotalFormatted)
	assert.Equal(t, "€0.00", dctx.Doc.GrandTotalFormatted)
	assert.Empty(t, dctx.Doc.ProductsTableRows)
}

func TestBuild_DiscountAndTaxArithmetic(t *testing.T) {
	f := newBuilderFixture(t)
	add := selectedProducts(f, "4")
	add["discount_rate_percentage"] = "10"

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(add))
	require.NoError(t, err)

	// 200 subtotal, 20 discount, 20% tax on 180, grand 216.
	assert.Equal(t, "€200.00", dctx.Doc.SubtotalFormatted)
	assert.Equal(t, "€20.00", dctx.Doc.DiscountFormatted)
	assert.Equal(t, "€36.00", dctx.Doc.TaxAmountFormatted)
	assert.Equal(t, "€216.00", dctx.Doc.GrandTotalFormatted)
}

func TestBuild_ProductRowsEscaped(t *testing.T) {
	f := newBuilderFixture(t)
	f.data.products[f.productID].Name = "Pump <XL> & Co"

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(selectedProducts(f, "1")))
	require.NoError(t, err)

	assert.Contains(t, dctx.Doc.ProductsTableRows, "Pump &lt;XL&gt; &amp; Co")
	assert.True(t, strings.HasPrefix(dctx.Doc.ProductsTableRows, "<tr>"))
	assert.True(t, strings.HasSuffix(dctx.Doc.ProductsTableRows, "</tr>"))
}

func TestBuild_MediaLinkFailureDoesNotDropLine(t *testing.T) {
	f := newBuilderFixture(t)
	f.data.mediaErr = errors.New("media store down")

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(selectedProducts(f, "1")))
	require.NoError(t, err)

	require.Len(t, dctx.Products, 1)
	assert.Empty(t, dctx.Products[0].MediaLinks)
}

func TestBuild_FooterNotesNewlinesBecomeBreaks(t *testing.T) {
	f := newBuilderFixture(t)
	f.data.notes[noteKey(f.clientID, document.DocTypeProformaInvoice, "en")] = "line one\nline two"

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(nil))
	require.NoError(t, err)

	assert.Equal(t, "line one<br>line two", dctx.Doc.ClientSpecificFooterNotes)
}

func TestBuild_ProjectFromIdentifierOverrides(t *testing.T) {
	f := newBuilderFixture(t)
	add := map[string]any{
		"project_identifier": "PRJ-7",
		"project_name":       "Harbour Expansion",
	}

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(add))
	require.NoError(t, err)

	assert.Equal(t, "PRJ-7", dctx.Project.Identifier)
	assert.Equal(t, "Harbour Expansion", dctx.Project.Name)
}

func TestBuild_ProjectLookup(t *testing.T) {
	f := newBuilderFixture(t)
	projectID := uuid.New()
	f.data.projects[projectID] = &document.Project{
		ID: projectID, Name: "Plant Refit", Identifier: "PRJ-9", Description: "Refit of line 2",
	}
	req := f.request(nil)
	req.ProjectID = &projectID

	dctx, err := f.builder.BuildProformaContext(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, projectID.String(), dctx.Project.ID)
	assert.Equal(t, "Plant Refit", dctx.Project.Name)
	assert.Equal(t, "PRJ-9", dctx.Project.Identifier)
}

func TestBuild_Placeholders(t *testing.T) {
	f := newBuilderFixture(t)
	add := selectedProducts(f, "4")
	add["custom_note"] = "special handling"
	add["CURRENT_DATE"] = "should-not-win"

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(add))
	require.NoError(t, err)

	ph := dctx.Placeholders
	assert.Equal(t, "Acme Trading", ph["CLIENT_COMPANY_NAME"])
	assert.Equal(t, "Acme Trading", ph["BUYER_COMPANY_NAME"])
	assert.Equal(t, "Globex GmbH", ph["SELLER_COMPANY_NAME"])
	assert.Equal(t, "Max Mustermann", ph["SELLER_REPRESENTATIVE_NAME"])
	assert.Equal(t, "€240.00", ph["GRAND_TOTAL_AMOUNT"])
	assert.Equal(t, "en", ph["TARGET_LANGUAGE_CODE"])

	// Dotted mirror of the same tree.
	assert.Equal(t, "Acme Trading", ph["client.company_name"])
	assert.Equal(t, "€240.00", ph["doc.grand_total_amount_formatted"])
	assert.Equal(t, "240.00", ph["doc.grand_total_amount_raw"])

	// Caller extras merge but never displace reserved keys.
	assert.Equal(t, "special handling", ph["custom_note"])
	assert.Equal(t, "2026-03-10", ph["CURRENT_DATE"])
}

func TestBuild_CurrencySymbolOverride(t *testing.T) {
	f := newBuilderFixture(t)
	add := selectedProducts(f, "1")
	add["currency_symbol"] = "$"

	dctx, err := f.builder.BuildProformaContext(context.Background(), f.request(add))
	require.NoError(t, err)

	assert.Equal(t, "$50.00", dctx.Doc.SubtotalFormatted)
}

func TestParseInfoPairs(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"json", `{"iban":"DE00","bank_name":"First"}`, map[string]string{"iban": "DE00", "bank_name": "First"}},
		{"pairs", "iban:DE00; bank_name:First Bank", map[string]string{"iban": "DE00", "bank_name": "First Bank"}},
		{"value with colon", "bank_address:Berlin: Mitte", map[string]string{"bank_address": "Berlin: Mitte"}},
		{"garbage entries dropped", "no-separator;;iban:DE00", map[string]string{"iban": "DE00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseInfoPairs(tc.in))
		})
	}
}

func TestJoinAddress(t *testing.T) {
	assert.Equal(t, "1 Main St, Lyon, France", joinAddress("1 Main St", "Lyon", "", "France"))
	assert.Equal(t, "Lyon", joinAddress("N/A", "Lyon", "n/a", ""))
	assert.Equal(t, "", joinAddress("", "  ", "N/A"))
}

func TestLanguageMatches(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact", "en", "en", true},
		{"case insensitive", "EN", "en", true},
		{"regional variant", "en-US", "en", true},
		{"different base", "fr", "en", false},
		{"unparsable code", "???", "en", false},
		{"both empty", "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, languageMatches(tc.a, tc.b))
		})
	}
}
