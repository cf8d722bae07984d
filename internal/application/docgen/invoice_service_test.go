package docgen

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docgen/backend/internal/domain/document"
	"github.com/docgen/backend/internal/infrastructure/docx"
	"github.com/docgen/backend/internal/infrastructure/pdf"
	"github.com/docgen/backend/internal/infrastructure/render"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fakePDFBytes = []byte("%PDF-1.4 fake")

// fakeConverter records the last conversion input and returns a fixed
// PDF payload.
type fakeConverter struct {
	lastHTML    string
	lastBaseURL string
	err         error
}

func (c *fakeConverter) Convert(_ context.Context, html string, baseURL string) ([]byte, error) {
	c.lastHTML = html
	c.lastBaseURL = baseURL
	if c.err != nil {
		return nil, c.err
	}
	return fakePDFBytes, nil
}

func (c *fakeConverter) Close() error { return nil }

var _ pdf.Converter = (*fakeConverter)(nil)

type serviceFixture struct {
	*builderFixture
	converter *fakeConverter
	repo      *fakeDocumentRepository
	service   *InvoiceService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	bf := newBuilderFixture(t)
	f := &serviceFixture{
		builderFixture: bf,
		converter:      &fakeConverter{},
		repo:           &fakeDocumentRepository{},
	}
	persister := NewArtifactPersister(bf.data, f.repo, bf.cfg.ClientsDir, nil)
	f.service = NewInvoiceService(
		bf.builder,
		render.NewEngine(),
		f.converter,
		docx.NewPopulator(nil),
		persister,
		bf.cfg.TemplatesDir,
		nil,
	)
	return f
}

func (f *serviceFixture) writeTemplate(t *testing.T, relPath, content string) {
	t.Helper()
	path := filepath.Join(f.cfg.TemplatesDir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// writeDocxTemplate assembles a minimal DOCX archive around the given
// document part.
func (f *serviceFixture) writeDocxTemplate(t *testing.T, relPath, documentXML string) {
	t.Helper()
	path := filepath.Join(f.cfg.TemplatesDir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, buildDocxArchive(t, documentXML), 0644))
}

func buildDocxArchive(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	require.NoError(t, err)

	doc, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func readArchivePart(t *testing.T, archive []byte, name string) string {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("part %s not found in archive", name)
	return ""
}

func TestGenerateFinalInvoicePDF(t *testing.T) {
	f := newServiceFixture(t)
	f.writeTemplate(t, "en/final_invoice_template.html",
		"{{doc.invoice_number}}|{{client.company_name}}|{{doc.grand_total_amount_formatted}}")

	pdfBytes, filename, dctx, err := f.service.GenerateFinalInvoicePDF(
		context.Background(), f.request(selectedProducts(f.builderFixture, "4")), nil)
	require.NoError(t, err)

	assert.Equal(t, fakePDFBytes, pdfBytes)
	assert.Equal(t, "INV-2026-00001|Acme Trading|€240.00", f.converter.lastHTML)
	assert.Regexp(t, `^Invoice_INV-2026-00001_Acme_Trading_\d{8}\.pdf$`, filename)
	require.NotNil(t, dctx)
	assert.Equal(t, "INV-2026-00001", dctx.Doc.InvoiceNumber)

	assert.True(t, strings.HasPrefix(f.converter.lastBaseURL, "file://"), f.converter.lastBaseURL)
	assert.True(t, strings.HasSuffix(f.converter.lastBaseURL, "/en/"), f.converter.lastBaseURL)
}

func TestGenerateFinalInvoicePDF_LineItemsMerged(t *testing.T) {
	f := newServiceFixture(t)
	f.writeTemplate(t, "en/final_invoice_template.html", "{{doc.subtotal_amount_formatted}}")

	items := []LineItem{{ProductID: f.productID, Quantity: decimal.NewFromInt(3)}}
	_, _, dctx, err := f.service.GenerateFinalInvoicePDF(context.Background(), f.request(nil), items)
	require.NoError(t, err)

	require.Len(t, dctx.Products, 1)
	assert.Equal(t, "€150.00", f.converter.lastHTML)
}

func TestGenerateProformaInvoicePDF_RootTemplateFallback(t *testing.T) {
	f := newServiceFixture(t)
	f.writeTemplate(t, "proforma_invoice_template.html", "{{doc.proforma_id}}")

	pdfBytes, filename, dctx, err := f.service.GenerateProformaInvoicePDF(
		context.Background(), f.request(nil))
	require.NoError(t, err)

	assert.Equal(t, fakePDFBytes, pdfBytes)
	assert.Regexp(t, `^Proforma_PF-[0-9a-f]{8}_Acme_Trading_\d{8}\.pdf$`, filename)
	assert.Equal(t, dctx.Doc.ProformaID, f.converter.lastHTML)
}

func TestGenerate_MissingTemplateReturnsContext(t *testing.T) {
	f := newServiceFixture(t)

	pdfBytes, _, dctx, err := f.service.GenerateProformaInvoicePDF(
		context.Background(), f.request(nil))
	require.Error(t, err)

	var tmplErr *TemplateNotFoundError
	require.ErrorAs(t, err, &tmplErr)
	assert.Contains(t, tmplErr.Path, "proforma_invoice_template.html")
	assert.Nil(t, pdfBytes)
	// The assembled context survives the failure.
	require.NotNil(t, dctx)
	assert.Equal(t, "Acme Trading", dctx.Client.CompanyName)
}

func TestGenerate_InvalidUTF8TemplateRejected(t *testing.T) {
	f := newServiceFixture(t)
	path := filepath.Join(f.cfg.TemplatesDir, "en", "proforma_invoice_template.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0xfd}, 0644))

	_, _, dctx, err := f.service.GenerateProformaInvoicePDF(context.Background(), f.request(nil))
	require.Error(t, err)
	assert.ErrorContains(t, err, "UTF-8")
	assert.NotNil(t, dctx)
}

func TestGenerate_ConverterFailureReturnsContext(t *testing.T) {
	f := newServiceFixture(t)
	f.writeTemplate(t, "en/proforma_invoice_template.html", "body")
	f.converter.err = pdf.NewConversionError(pdf.KindRender, "chrome crashed", nil)

	pdfBytes, _, dctx, err := f.service.GenerateProformaInvoicePDF(context.Background(), f.request(nil))
	require.Error(t, err)

	var convErr *pdf.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, pdf.KindRender, convErr.Kind)
	assert.Nil(t, pdfBytes)
	assert.NotNil(t, dctx)
}

func TestGenerateAndPersistFinalInvoice(t *testing.T) {
	f := newServiceFixture(t)
	f.writeTemplate(t, "en/final_invoice_template.html", "{{doc.invoice_number}}")

	pdfBytes, filename, _, result, err := f.service.GenerateAndPersistFinalInvoice(
		context.Background(), f.request(selectedProducts(f.builderFixture, "1")), nil, "tester")
	require.NoError(t, err)
	require.NotNil(t, result)

	written, err := os.ReadFile(result.AbsolutePath)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, written)

	require.Len(t, f.repo.saved, 1)
	assert.Equal(t, filename, f.repo.saved[0].FileNameOnDisk)
	assert.Equal(t, document.DocTypeFinalInvoice, f.repo.saved[0].DocumentType)
	assert.Equal(t, "tester", f.repo.saved[0].CreatedBy)
}

func TestPopulateDocxTemplate(t *testing.T) {
	f := newServiceFixture(t)
	f.writeDocxTemplate(t, "en/proforma_invoice_template.docx",
		`<w:document><w:body><w:p><w:r><w:t>Client: {{CLIENT_COMPANY_NAME}}</w:t></w:r></w:p></w:body></w:document>`)

	data, filename, dctx, err := f.service.PopulateDocxTemplate(
		context.Background(), f.request(nil), document.DocTypeProformaInvoice)
	require.NoError(t, err)
	require.NotNil(t, dctx)

	body := readArchivePart(t, data, "word/document.xml")
	assert.Contains(t, body, "Client: Acme Trading")
	assert.Regexp(t, `^Proforma_Invoice_PF-[0-9a-f]{8}_Acme_Trading_\d{8}\.docx$`, filename)
}

func TestPopulateDocxTemplate_MissingTemplate(t *testing.T) {
	f := newServiceFixture(t)

	_, _, dctx, err := f.service.PopulateDocxTemplate(
		context.Background(), f.request(nil), document.DocTypePackingList)
	require.Error(t, err)

	var tmplErr *TemplateNotFoundError
	require.ErrorAs(t, err, &tmplErr)
	assert.Contains(t, tmplErr.Path, "packing_list_template.docx")
	assert.NotNil(t, dctx)
}

func TestSanitizeFilenamePart(t *testing.T) {
	cases := map[string]string{
		"Acme Trading":      "Acme_Trading",
		"INV-2026-00001":    "INV-2026-00001",
		"a/b\\c:d*e":        "a_b_c_d_e",
		"Ümläut & Söhne":    "_ml_ut_S_hne",
		"already_clean-123": "already_clean-123",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeFilenamePart(in), "sanitising %q", in)
	}
}
