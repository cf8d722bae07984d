package docgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/docgen/backend/internal/domain/document"
	"github.com/docgen/backend/internal/infrastructure/docx"
	"github.com/docgen/backend/internal/infrastructure/pdf"
	"github.com/docgen/backend/internal/infrastructure/render"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TemplateNotFoundError signals that no template file exists for the
// requested document type and language.
type TemplateNotFoundError struct {
	Path string
}

func (e *TemplateNotFoundError) Error() string {
	return "template not found: " + e.Path
}

var filenameSanitizer = regexp.MustCompile(`[^A-Za-z0-9\-_]+`)

// InvoiceService orchestrates the generation pipeline: context
// assembly, template selection, rendering, PDF conversion and optional
// persistence. Generation failures after assembly return the context
// alongside the error so callers can inspect what was built.
type InvoiceService struct {
	builder      *ContextBuilder
	renderer     *render.Engine
	converter    pdf.Converter
	populator    *docx.Populator
	persister    *ArtifactPersister
	templatesDir string
	now          func() time.Time
	logger       *zap.Logger
}

// NewInvoiceService creates the invoice orchestrator
func NewInvoiceService(
	builder *ContextBuilder,
	renderer *render.Engine,
	converter pdf.Converter,
	populator *docx.Populator,
	persister *ArtifactPersister,
	templatesDir string,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		builder:      builder,
		renderer:     renderer,
		converter:    converter,
		populator:    populator,
		persister:    persister,
		templatesDir: templatesDir,
		now:          time.Now,
		logger:       logger,
	}
}

// GenerateFinalInvoicePDF produces a final invoice PDF. lineItems are
// merged into the request's override bag. On failure after context
// assembly, the context is returned with nil bytes so the caller can
// still inspect it.
func (s *InvoiceService) GenerateFinalInvoicePDF(ctx context.Context, req BuildRequest, lineItems []LineItem) ([]byte, string, *document.Context, error) {
	if len(lineItems) > 0 {
		if req.Additional == nil {
			req.Additional = map[string]any{}
		}
		req.Additional[keyLineItems] = lineItems
	}

	dctx, err := s.builder.BuildFinalInvoiceContext(ctx, req)
	if err != nil {
		return nil, "", nil, err
	}

	pdfBytes, err := s.renderToPDF(ctx, dctx, document.DocTypeFinalInvoice, req.TargetLanguageCode)
	if err != nil {
		return nil, "", dctx, err
	}

	filename := s.buildFilename("Invoice", dctx.Doc.InvoiceNumber, dctx, req.ClientID)
	return pdfBytes, filename, dctx, nil
}

// GenerateProformaInvoicePDF produces a proforma invoice PDF
func (s *InvoiceService) GenerateProformaInvoicePDF(ctx context.Context, req BuildRequest) ([]byte, string, *document.Context, error) {
	dctx, err := s.builder.BuildProformaContext(ctx, req)
	if err != nil {
		return nil, "", nil, err
	}

	pdfBytes, err := s.renderToPDF(ctx, dctx, document.DocTypeProformaInvoice, req.TargetLanguageCode)
	if err != nil {
		return nil, "", dctx, err
	}

	filename := s.buildFilename("Proforma", dctx.Doc.ProformaID, dctx, req.ClientID)
	return pdfBytes, filename, dctx, nil
}

// GenerateAndPersistFinalInvoice generates a final invoice and stores
// the artifact under the client's folder
func (s *InvoiceService) GenerateAndPersistFinalInvoice(ctx context.Context, req BuildRequest, lineItems []LineItem, createdBy string) ([]byte, string, *document.Context, *PersistResult, error) {
	pdfBytes, filename, dctx, err := s.GenerateFinalInvoicePDF(ctx, req, lineItems)
	if err != nil {
		return nil, "", dctx, nil, err
	}

	result, err := s.persister.Persist(ctx, pdfBytes, req.ClientID, req.ProjectID, filename,
		document.DocTypeFinalInvoice, document.DocTypeFinalInvoice.TemplateBaseName(), createdBy)
	if err != nil {
		return nil, "", dctx, nil, err
	}
	return pdfBytes, filename, dctx, result, nil
}

// GenerateAndPersistProformaInvoice generates a proforma invoice and
// stores the artifact under the client's folder
func (s *InvoiceService) GenerateAndPersistProformaInvoice(ctx context.Context, req BuildRequest, createdBy string) ([]byte, string, *document.Context, *PersistResult, error) {
	pdfBytes, filename, dctx, err := s.GenerateProformaInvoicePDF(ctx, req)
	if err != nil {
		return nil, "", dctx, nil, err
	}

	result, err := s.persister.Persist(ctx, pdfBytes, req.ClientID, req.ProjectID, filename,
		document.DocTypeProformaInvoice, document.DocTypeProformaInvoice.TemplateBaseName(), createdBy)
	if err != nil {
		return nil, "", dctx, nil, err
	}
	return pdfBytes, filename, dctx, result, nil
}

// PopulateDocxTemplate builds a context and substitutes its
// placeholders into the DOCX template of the given document type. The
// populated bytes and suggested filename are returned.
func (s *InvoiceService) PopulateDocxTemplate(ctx context.Context, req BuildRequest, docType document.DocType) ([]byte, string, *document.Context, error) {
	var dctx *document.Context
	var err error
	if docType == document.DocTypeFinalInvoice {
		dctx, err = s.builder.BuildFinalInvoiceContext(ctx, req)
	} else {
		dctx, err = s.builder.BuildProformaContext(ctx, req)
	}
	if err != nil {
		return nil, "", nil, err
	}

	baseName := strings.TrimSuffix(docType.TemplateBaseName(), ".html") + ".docx"
	templatePath, err := s.findTemplate(req.TargetLanguageCode, baseName)
	if err != nil {
		return nil, "", dctx, err
	}

	out, err := os.CreateTemp("", "docgen-*.docx")
	if err != nil {
		return nil, "", dctx, fmt.Errorf("cannot create scratch file: %w", err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	if err := s.populator.Populate(templatePath, outPath, dctx.Placeholders); err != nil {
		return nil, "", dctx, err
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, "", dctx, fmt.Errorf("cannot read populated document: %w", err)
	}

	identifier := dctx.Doc.InvoiceNumber
	if identifier == "" {
		identifier = dctx.Doc.ProformaID
	}
	filename := s.buildFilenameWithExt(docType.DisplayName(), identifier, dctx, req.ClientID, "docx")
	return data, filename, dctx, nil
}

// renderToPDF selects the template, renders it and converts the result
func (s *InvoiceService) renderToPDF(ctx context.Context, dctx *document.Context, docType document.DocType, lang string) ([]byte, error) {
	templatePath, err := s.findTemplate(lang, docType.TemplateBaseName())
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read template %s: %w", templatePath, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("template %s is not valid UTF-8", templatePath)
	}

	rendered, err := s.renderer.Render(string(raw), dctx.Map())
	if err != nil {
		return nil, err
	}

	baseDir, err := filepath.Abs(filepath.Dir(templatePath))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve template directory: %w", err)
	}
	baseURL := "file://" + filepath.ToSlash(baseDir) + "/"

	return s.converter.Convert(ctx, rendered, baseURL)
}

// findTemplate locates <templates>/<lang>/<name>, falling back to the
// root of the template library with a warning.
func (s *InvoiceService) findTemplate(lang, name string) (string, error) {
	preferred := filepath.Join(s.templatesDir, lang, name)
	if _, err := os.Stat(preferred); err == nil {
		return preferred, nil
	}

	fallback := filepath.Join(s.templatesDir, name)
	if _, err := os.Stat(fallback); err == nil {
		s.logger.Warn("language-specific template missing, using root fallback",
			zap.String("language", lang),
			zap.String("template", name))
		return fallback, nil
	}

	return "", &TemplateNotFoundError{Path: preferred}
}

func (s *InvoiceService) buildFilename(prefix, identifier string, dctx *document.Context, clientID uuid.UUID) string {
	return s.buildFilenameWithExt(prefix, identifier, dctx, clientID, "pdf")
}

// buildFilenameWithExt assembles
// <prefix>_<identifier>_<client>_<YYYYMMDD>.<ext> with every segment
// sanitised. The client name falls back through company name,
// representative name, then the client ID.
func (s *InvoiceService) buildFilenameWithExt(prefix, identifier string, dctx *document.Context, clientID uuid.UUID, ext string) string {
	clientName := dctx.Client.CompanyName
	if clientName == "" || clientName == document.ErrorSentinel {
		clientName = dctx.Client.RepresentativeName
	}
	if clientName == "" {
		clientName = clientID.String()
	}

	return fmt.Sprintf("%s_%s_%s_%s.%s",
		sanitizeFilenamePart(prefix),
		sanitizeFilenamePart(identifier),
		sanitizeFilenamePart(clientName),
		s.now().Format("20060102"),
		ext)
}

// sanitizeFilenamePart replaces every run of characters outside
// [A-Za-z0-9-_] with a single underscore
func sanitizeFilenamePart(s string) string {
	return filenameSanitizer.ReplaceAllString(s, "_")
}
