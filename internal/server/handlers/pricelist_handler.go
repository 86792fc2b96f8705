package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Haizenx/Enginuity-Alpha/internal/service/pricelist"
)

// PriceListService imports supplier price lists.
type PriceListService interface {
	ImportFile(ctx context.Context, supplierID, filename string, r io.Reader) (pricelist.Report, error)
	ImportSheet(ctx context.Context, supplierID, sheetRange string) (pricelist.Report, error)
}

type sheetImportRequest struct {
	Range string `json:"range" binding:"required"`
}

// PriceListHandler serves price list uploads.
type PriceListHandler struct {
	svc    PriceListService
	logger *zap.Logger
}

// NewPriceListHandler constructs the HTTP handler adapter.
func NewPriceListHandler(svc PriceListService, logger *zap.Logger) *PriceListHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceListHandler{svc: svc, logger: logger}
}

// Upload imports the multipart "file" field (CSV or XLSX) for the supplier.
func (h *PriceListHandler) Upload(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.logger, "open price list", err)
		return
	}
	defer file.Close()

	report, err := h.svc.ImportFile(c.Request.Context(), id, header.Filename, file)
	if err != nil {
		respondError(c, h.logger, "import price list", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ImportSheet imports a range of the configured spreadsheet for the supplier.
func (h *PriceListHandler) ImportSheet(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req sheetImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	report, err := h.svc.ImportSheet(c.Request.Context(), id, req.Range)
	if err != nil {
		respondError(c, h.logger, "import price list sheet", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
