package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
	"github.com/Haizenx/Enginuity-Alpha/internal/service/catalog"
	"github.com/Haizenx/Enginuity-Alpha/internal/service/pricelist"
	"github.com/Haizenx/Enginuity-Alpha/internal/service/pricing"
	"github.com/Haizenx/Enginuity-Alpha/internal/service/quotation"
)

// StatusFor maps a service error to the HTTP status returned to clients.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, pricing.ErrInvalidInput),
		errors.Is(err, pricing.ErrInvalidTier),
		errors.Is(err, models.ErrInvalidID),
		errors.Is(err, catalog.ErrInvalidItem),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, catalog.ErrInvalidSupplier),
		errors.Is(err, pricelist.ErrUnsupportedFormat),
		errors.Is(err, pricelist.ErrEmptyPriceList):
		return http.StatusBadRequest
	case errors.Is(err, pricing.ErrUnknownSupplier),
		errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrSupplierNotFound),
		errors.Is(err, models.ErrQuotationNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateItemName):
		return http.StatusConflict
	case errors.Is(err, pricing.ErrInvalidConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, quotation.ErrMailerUnavailable),
		errors.Is(err, pricelist.ErrSheetsUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...}. Internal failures are logged and hidden from the client.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	logger.Debug(op+" rejected", zap.Error(err), zap.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}

func respondBindError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}
