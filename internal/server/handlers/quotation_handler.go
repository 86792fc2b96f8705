package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
	"github.com/Haizenx/Enginuity-Alpha/internal/service/quotation"
)

// QuotationService is the pricing and quotation surface exposed over HTTP.
type QuotationService interface {
	Compare(ctx context.Context, selections []models.Selection, candidates []string) (models.PriceComparison, error)
	Compute(ctx context.Context, req quotation.ComputeRequest) (models.QuotationCosting, *models.Supplier, error)
	Create(ctx context.Context, req quotation.CreateRequest) (models.Quotation, error)
	List(ctx context.Context) ([]models.Quotation, error)
	Get(ctx context.Context, id string) (models.Quotation, error)
	TierMarkups(ctx context.Context) (models.TierMarkupTable, error)
	UpdateTierMarkups(ctx context.Context, table models.TierMarkupTable) (models.TierMarkupTable, error)
	RenderPDF(ctx context.Context, id string) ([]byte, models.Quotation, error)
	RenderXLSX(ctx context.Context, id string) ([]byte, models.Quotation, error)
	Send(ctx context.Context, id, recipient, note string) error
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type compareRequest struct {
	Selections  []models.Selection `json:"selections"`
	SupplierIDs []string           `json:"supplierIds"`
}

type computeRequest struct {
	SupplierID string             `json:"supplierId"`
	Tier       models.Tier        `json:"tier"`
	Selections []models.Selection `json:"selections"`
}

func (r computeRequest) toService() quotation.ComputeRequest {
	return quotation.ComputeRequest{SupplierID: r.SupplierID, Tier: r.Tier, Selections: r.Selections}
}

type computeResponse struct {
	models.QuotationCosting
	Supplier *models.Supplier `json:"supplier"`
}

type createRequest struct {
	computeRequest
	Project models.ProjectDetails `json:"project"`
}

type sendRequest struct {
	To   string `json:"to" binding:"required,email"`
	Note string `json:"note"`
}

// QuotationHandler serves comparisons, quotations and the tier table.
type QuotationHandler struct {
	svc    QuotationService
	logger *zap.Logger
}

// NewQuotationHandler constructs the HTTP handler adapter.
func NewQuotationHandler(svc QuotationService, logger *zap.Logger) *QuotationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotationHandler{svc: svc, logger: logger}
}

// Compare ranks suppliers by total cost of the selection.
func (h *QuotationHandler) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	comparison, err := h.svc.Compare(c.Request.Context(), req.Selections, req.SupplierIDs)
	if err != nil {
		respondError(c, h.logger, "compare prices", err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// Compute prices the selection for one supplier and tier without saving it.
func (h *QuotationHandler) Compute(c *gin.Context) {
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	costing, supplier, err := h.svc.Compute(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, h.logger, "compute quotation", err)
		return
	}
	c.JSON(http.StatusOK, computeResponse{QuotationCosting: costing, Supplier: supplier})
}

// Create computes and saves a quotation.
func (h *QuotationHandler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	q, err := h.svc.Create(c.Request.Context(), quotation.CreateRequest{
		ComputeRequest: req.toService(),
		Project:        req.Project,
	})
	if err != nil {
		respondError(c, h.logger, "create quotation", err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

// List returns saved quotations, newest first.
func (h *QuotationHandler) List(c *gin.Context) {
	quotations, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list quotations", err)
		return
	}
	c.JSON(http.StatusOK, quotations)
}

// Get returns one saved quotation.
func (h *QuotationHandler) Get(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	q, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get quotation", err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// PDF downloads the quotation as PDF.
func (h *QuotationHandler) PDF(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	body, q, err := h.svc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "render quotation pdf", err)
		return
	}
	attachment(c, quotation.FileName(q, "pdf"), "application/pdf", body)
}

// XLSX downloads the quotation as a workbook.
func (h *QuotationHandler) XLSX(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	body, q, err := h.svc.RenderXLSX(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "render quotation xlsx", err)
		return
	}
	attachment(c, quotation.FileName(q, "xlsx"), xlsxContentType, body)
}

// Send emails the quotation PDF.
func (h *QuotationHandler) Send(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	if err := h.svc.Send(c.Request.Context(), id, req.To, req.Note); err != nil {
		respondError(c, h.logger, "send quotation", err)
		return
	}
	c.Status(http.StatusAccepted)
}

// TierMarkups returns the tier table used for costing.
func (h *QuotationHandler) TierMarkups(c *gin.Context) {
	table, err := h.svc.TierMarkups(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "get tier markups", err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// UpdateTierMarkups replaces the tier table.
func (h *QuotationHandler) UpdateTierMarkups(c *gin.Context) {
	var table models.TierMarkupTable
	if err := c.ShouldBindJSON(&table); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	saved, err := h.svc.UpdateTierMarkups(c.Request.Context(), table)
	if err != nil {
		respondError(c, h.logger, "update tier markups", err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
