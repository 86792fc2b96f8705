package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

// CatalogService is the catalog surface exposed over HTTP.
type CatalogService interface {
	ListItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, id string) (models.Item, error)
	UpsertItem(ctx context.Context, item models.Item) (models.Item, error)
	UpdateItem(ctx context.Context, item models.Item) (models.Item, error)
	DeleteItem(ctx context.Context, id string) error
	SetSupplierPrice(ctx context.Context, itemID, supplierID string, price decimal.Decimal, currency string) (models.Item, error)
	SupplierPrices(ctx context.Context, itemID string) ([]models.OfferDetail, error)
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	GetSupplier(ctx context.Context, id string) (models.Supplier, error)
	CreateSupplier(ctx context.Context, supplier models.Supplier) (models.Supplier, error)
	UpdateSupplier(ctx context.Context, supplier models.Supplier) (models.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
	Sweep(ctx context.Context, dryRun bool) (models.SweepReport, error)
}

type itemRequest struct {
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	MaterialCost decimal.Decimal `json:"materialCost"`
	LaborCost    decimal.Decimal `json:"laborCost"`
	Category     string          `json:"category"`
	ItemNo       string          `json:"itemNo"`
}

func (r itemRequest) toModel(id string) models.Item {
	return models.Item{
		ID:           id,
		Name:         r.Name,
		Unit:         r.Unit,
		MaterialCost: r.MaterialCost,
		LaborCost:    r.LaborCost,
		Category:     r.Category,
		ItemNo:       r.ItemNo,
	}
}

type supplierPriceRequest struct {
	SupplierID string           `json:"supplierId" binding:"required,objectid"`
	Price      *decimal.Decimal `json:"price" binding:"required"`
	Currency   string           `json:"currency" binding:"omitempty,len=3"`
}

type supplierRequest struct {
	Name          string `json:"name"`
	ContactEmail  string `json:"contactEmail" binding:"omitempty,email"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
}

func (r supplierRequest) toModel(id string) models.Supplier {
	return models.Supplier{
		ID:            id,
		Name:          r.Name,
		ContactEmail:  r.ContactEmail,
		ContactNumber: r.ContactNumber,
		Address:       r.Address,
	}
}

// CatalogHandler serves items, suppliers and catalog maintenance.
type CatalogHandler struct {
	svc    CatalogService
	logger *zap.Logger
}

// NewCatalogHandler constructs the HTTP handler adapter.
func NewCatalogHandler(svc CatalogService, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{svc: svc, logger: logger}
}

// ListItems returns every item sorted by name.
func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list items", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetItem returns one item.
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	item, err := h.svc.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpsertItem creates an item or returns the one with the same name.
func (h *CatalogHandler) UpsertItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	item, err := h.svc.UpsertItem(c.Request.Context(), req.toModel(""))
	if err != nil {
		respondError(c, h.logger, "upsert item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateItem replaces the editable fields of an item.
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	item, err := h.svc.UpdateItem(c.Request.Context(), req.toModel(id))
	if err != nil {
		respondError(c, h.logger, "update item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item.
func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete item", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetSupplierPrice adds or replaces the offer of one supplier on an item.
func (h *CatalogHandler) SetSupplierPrice(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req supplierPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	item, err := h.svc.SetSupplierPrice(c.Request.Context(), id, req.SupplierID, *req.Price, req.Currency)
	if err != nil {
		respondError(c, h.logger, "set supplier price", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// SupplierPrices lists an item's offers with the supplier details attached.
func (h *CatalogHandler) SupplierPrices(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	offers, err := h.svc.SupplierPrices(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "list supplier prices", err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

// ListSuppliers returns every supplier sorted by name.
func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.svc.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list suppliers", err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

// GetSupplier returns one supplier.
func (h *CatalogHandler) GetSupplier(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	supplier, err := h.svc.GetSupplier(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get supplier", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// CreateSupplier registers a supplier.
func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	supplier, err := h.svc.CreateSupplier(c.Request.Context(), req.toModel(""))
	if err != nil {
		respondError(c, h.logger, "create supplier", err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// UpdateSupplier replaces a supplier's details.
func (h *CatalogHandler) UpdateSupplier(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.logger, err)
		return
	}
	supplier, err := h.svc.UpdateSupplier(c.Request.Context(), req.toModel(id))
	if err != nil {
		respondError(c, h.logger, "update supplier", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier removes a supplier and its offers on every item.
func (h *CatalogHandler) DeleteSupplier(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "delete supplier", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Sweep deletes duplicate items and drops dangling offers. ?dryRun=true only reports.
func (h *CatalogHandler) Sweep(c *gin.Context) {
	dryRun := false
	if raw := c.Query("dryRun"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dryRun must be a boolean"})
			return
		}
		dryRun = parsed
	}

	report, err := h.svc.Sweep(c.Request.Context(), dryRun)
	if err != nil {
		respondError(c, h.logger, "catalog sweep", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
