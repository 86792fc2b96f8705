package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Haizenx/Enginuity-Alpha/internal/metrics"
	"github.com/Haizenx/Enginuity-Alpha/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Handlers groups the HTTP adapters mounted on the engine.
type Handlers struct {
	Catalog    *handlers.CatalogHandler
	PriceLists *handlers.PriceListHandler
	Quotations *handlers.QuotationHandler
	DB         handlers.Pinger
}

// New wires the Gin engine with required routes and middlewares.
func New(mode string, h Handlers, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware(m))

	r.GET("/healthz", handlers.Health(h.DB, logger))
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api")

	items := api.Group("/items")
	items.GET("", h.Catalog.ListItems)
	items.POST("", h.Catalog.UpsertItem)
	items.GET("/:id", h.Catalog.GetItem)
	items.PUT("/:id", h.Catalog.UpdateItem)
	items.DELETE("/:id", h.Catalog.DeleteItem)
	items.POST("/:id/supplier-price", h.Catalog.SetSupplierPrice)
	items.GET("/:id/supplier-prices", h.Catalog.SupplierPrices)

	suppliers := api.Group("/suppliers")
	suppliers.GET("", h.Catalog.ListSuppliers)
	suppliers.POST("", h.Catalog.CreateSupplier)
	suppliers.GET("/:id", h.Catalog.GetSupplier)
	suppliers.PUT("/:id", h.Catalog.UpdateSupplier)
	suppliers.DELETE("/:id", h.Catalog.DeleteSupplier)
	suppliers.POST("/:id/price-list", h.PriceLists.Upload)
	suppliers.POST("/:id/price-list/sheet", h.PriceLists.ImportSheet)

	quotations := api.Group("/quotations")
	quotations.POST("/compare", h.Quotations.Compare)
	quotations.POST("/compute", h.Quotations.Compute)
	quotations.POST("", h.Quotations.Create)
	quotations.GET("", h.Quotations.List)
	quotations.GET("/:id", h.Quotations.Get)
	quotations.GET("/:id/pdf", h.Quotations.PDF)
	quotations.GET("/:id/xlsx", h.Quotations.XLSX)
	quotations.POST("/:id/send", h.Quotations.Send)

	api.GET("/preferences/tier-markups", h.Quotations.TierMarkups)
	api.PUT("/preferences/tier-markups", h.Quotations.UpdateTierMarkups)

	api.POST("/admin/catalog/sweep", h.Catalog.Sweep)

	logger.Info("router initialized", zap.Int("routes", len(r.Routes())))

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
