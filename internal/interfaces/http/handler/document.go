package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/docgen/backend/internal/application/docgen"
	"github.com/docgen/backend/internal/domain/document"
	applogger "github.com/docgen/backend/internal/infrastructure/logger"
	"github.com/docgen/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DocumentHandler exposes the document generation pipeline over HTTP
type DocumentHandler struct {
	BaseHandler
	invoices *docgen.InvoiceService
	docs     document.GeneratedDocumentRepository
	logger   *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(invoices *docgen.InvoiceService, docs document.GeneratedDocumentRepository, logger *zap.Logger) *DocumentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentHandler{invoices: invoices, docs: docs, logger: logger}
}

// RegisterRoutes registers document routes on the API group
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	docs.GET("/types", h.ListDocumentTypes)
	docs.GET("", h.ListGeneratedDocuments)
	docs.POST("/invoices/final", h.GenerateFinalInvoice)
	docs.POST("/invoices/proforma", h.GenerateProformaInvoice)
	docs.POST("/docx", h.PopulateDocx)
}

// LineItemRequest is one invoice line in a generation request
type LineItemRequest struct {
	ProductID string  `json:"product_id" binding:"required,uuid"`
	Quantity  string  `json:"quantity" binding:"required"`
	UnitPrice *string `json:"unit_price"`
}

// GenerateInvoiceRequest is the request body for invoice generation
type GenerateInvoiceRequest struct {
	ClientID  string            `json:"client_id" binding:"required,uuid"`
	CompanyID string            `json:"company_id" binding:"required,uuid"`
	Language  string            `json:"language" binding:"required"`
	ProjectID *string           `json:"project_id" binding:"omitempty,uuid"`
	LineItems []LineItemRequest `json:"line_items"`
	Overrides map[string]any    `json:"overrides"`
	Persist   bool              `json:"persist"`
	CreatedBy string            `json:"created_by"`
}

// PopulateDocxRequest is the request body for DOCX population
type PopulateDocxRequest struct {
	GenerateInvoiceRequest
	DocumentType string `json:"document_type" binding:"required"`
}

// DocumentTypeResponse describes one supported document type
type DocumentTypeResponse struct {
	Code         string `json:"code"`
	DisplayName  string `json:"display_name"`
	TemplateName string `json:"template_name"`
}

// GeneratedDocumentResponse is one persisted artifact record
type GeneratedDocumentResponse struct {
	ID             string  `json:"id"`
	ClientID       string  `json:"client_id"`
	ProjectID      *string `json:"project_id,omitempty"`
	DisplayName    string  `json:"display_name"`
	FileNameOnDisk string  `json:"file_name_on_disk"`
	RelativePath   string  `json:"relative_path"`
	DocumentType   string  `json:"document_type"`
	CreatedAt      string  `json:"created_at"`
}

// ListDocumentTypes returns every supported document type
func (h *DocumentHandler) ListDocumentTypes(c *gin.Context) {
	types := document.AllDocTypes()
	resp := make([]DocumentTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, DocumentTypeResponse{
			Code:         string(t),
			DisplayName:  t.DisplayName(),
			TemplateName: t.TemplateBaseName(),
		})
	}
	h.Success(c, resp)
}

// ListGeneratedDocuments lists persisted artifacts for a client
func (h *DocumentHandler) ListGeneratedDocuments(c *gin.Context) {
	clientID, err := uuid.Parse(c.Query("client_id"))
	if err != nil {
		h.BadRequest(c, "client_id query parameter must be a UUID")
		return
	}

	records, err := h.docs.FindByClient(c.Request.Context(), clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]GeneratedDocumentResponse, 0, len(records))
	for _, r := range records {
		item := GeneratedDocumentResponse{
			ID:             r.ID.String(),
			ClientID:       r.ClientID.String(),
			DisplayName:    r.DisplayName,
			FileNameOnDisk: r.FileNameOnDisk,
			RelativePath:   r.RelativePath,
			DocumentType:   string(r.DocumentType),
			CreatedAt:      r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if r.ProjectID != nil {
			pid := r.ProjectID.String()
			item.ProjectID = &pid
		}
		resp = append(resp, item)
	}
	h.Success(c, resp)
}

// GenerateFinalInvoice generates a final invoice PDF and streams it
func (h *DocumentHandler) GenerateFinalInvoice(c *gin.Context) {
	var req GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	buildReq, lineItems, err := h.toBuildRequest(&req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var pdfBytes []byte
	var filename string
	if req.Persist {
		pdfBytes, filename, _, _, err = h.invoices.GenerateAndPersistFinalInvoice(
			c.Request.Context(), buildReq, lineItems, req.CreatedBy)
	} else {
		pdfBytes, filename, _, err = h.invoices.GenerateFinalInvoicePDF(
			c.Request.Context(), buildReq, lineItems)
	}
	if err != nil {
		h.handleGenerationError(c, err)
		return
	}

	servePDF(c, pdfBytes, filename)
}

// GenerateProformaInvoice generates a proforma invoice PDF and streams it
func (h *DocumentHandler) GenerateProformaInvoice(c *gin.Context) {
	var req GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	buildReq, lineItems, err := h.toBuildRequest(&req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if len(lineItems) > 0 {
		selected := make([]docgen.SelectedProduct, 0, len(lineItems))
		for _, item := range lineItems {
			selected = append(selected, docgen.SelectedProduct{
				ProductID:         item.ProductID,
				Quantity:          item.Quantity,
				UnitPriceOverride: item.UnitPrice,
			})
		}
		buildReq.Additional["lite_selected_products"] = selected
	}

	var pdfBytes []byte
	var filename string
	if req.Persist {
		pdfBytes, filename, _, _, err = h.invoices.GenerateAndPersistProformaInvoice(
			c.Request.Context(), buildReq, req.CreatedBy)
	} else {
		pdfBytes, filename, _, err = h.invoices.GenerateProformaInvoicePDF(c.Request.Context(), buildReq)
	}
	if err != nil {
		h.handleGenerationError(c, err)
		return
	}

	servePDF(c, pdfBytes, filename)
}

// PopulateDocx fills a DOCX template of the given document type and
// streams the result
func (h *DocumentHandler) PopulateDocx(c *gin.Context) {
	var req PopulateDocxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	docType := document.DocType(req.DocumentType)
	if !docType.IsValid() {
		h.BadRequest(c, fmt.Sprintf("unknown document type %q", req.DocumentType))
		return
	}

	buildReq, lineItems, err := h.toBuildRequest(&req.GenerateInvoiceRequest)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if len(lineItems) > 0 {
		buildReq.Additional["line_items"] = lineItems
	}

	data, filename, _, err := h.invoices.PopulateDocxTemplate(c.Request.Context(), buildReq, docType)
	if err != nil {
		h.handleGenerationError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", data)
}

// toBuildRequest converts the wire request into the application shape
func (h *DocumentHandler) toBuildRequest(req *GenerateInvoiceRequest) (docgen.BuildRequest, []docgen.LineItem, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return docgen.BuildRequest{}, nil, fmt.Errorf("invalid client_id: %w", err)
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return docgen.BuildRequest{}, nil, fmt.Errorf("invalid company_id: %w", err)
	}

	var projectID *uuid.UUID
	if req.ProjectID != nil {
		pid, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			return docgen.BuildRequest{}, nil, fmt.Errorf("invalid project_id: %w", err)
		}
		projectID = &pid
	}

	lineItems := make([]docgen.LineItem, 0, len(req.LineItems))
	for i, item := range req.LineItems {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return docgen.BuildRequest{}, nil, fmt.Errorf("line %d: invalid product_id: %w", i, err)
		}
		quantity, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			return docgen.BuildRequest{}, nil, fmt.Errorf("line %d: invalid quantity: %w", i, err)
		}
		var unitPrice *decimal.Decimal
		if item.UnitPrice != nil {
			p, err := decimal.NewFromString(*item.UnitPrice)
			if err != nil {
				return docgen.BuildRequest{}, nil, fmt.Errorf("line %d: invalid unit_price: %w", i, err)
			}
			unitPrice = &p
		}
		lineItems = append(lineItems, docgen.LineItem{
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
		})
	}

	additional := make(map[string]any, len(req.Overrides))
	for k, v := range req.Overrides {
		additional[k] = v
	}

	return docgen.BuildRequest{
		ClientID:           clientID,
		CompanyID:          companyID,
		TargetLanguageCode: req.Language,
		ProjectID:          projectID,
		Additional:         additional,
	}, lineItems, nil
}

// handleGenerationError maps pipeline errors to their HTTP codes
func (h *DocumentHandler) handleGenerationError(c *gin.Context, err error) {
	logger := applogger.GetGinLogger(c)

	var tmplErr *docgen.TemplateNotFoundError
	if errors.As(err, &tmplErr) {
		logger.Warn("template missing", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeTemplateNotFound, tmplErr.Error())
		return
	}

	var numErr *docgen.NumberingError
	if errors.As(err, &numErr) {
		logger.Error("invoice numbering failed", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeNumbering, "could not allocate an invoice number")
		return
	}

	var persistErr *docgen.PersistenceError
	if errors.As(err, &persistErr) {
		logger.Error("artifact persistence failed", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodePersistence, "generated document could not be stored")
		return
	}

	logger.Error("document generation failed", zap.Error(err))
	h.ErrorWithCode(c, dto.ErrCodePdfConversion, "document could not be generated")
}

func servePDF(c *gin.Context, data []byte, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
