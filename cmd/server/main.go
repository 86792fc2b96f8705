package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Haizenx/Enginuity-Alpha/internal/config"
	"github.com/Haizenx/Enginuity-Alpha/internal/metrics"
	"github.com/Haizenx/Enginuity-Alpha/internal/repository/mongodb"
	"github.com/Haizenx/Enginuity-Alpha/internal/repository/sheets"
	"github.com/Haizenx/Enginuity-Alpha/internal/scheduler"
	"github.com/Haizenx/Enginuity-Alpha/internal/server/handlers"
	"github.com/Haizenx/Enginuity-Alpha/internal/server/router"
	catalogsvc "github.com/Haizenx/Enginuity-Alpha/internal/service/catalog"
	pricelistsvc "github.com/Haizenx/Enginuity-Alpha/internal/service/pricelist"
	quotationsvc "github.com/Haizenx/Enginuity-Alpha/internal/service/quotation"
	"github.com/Haizenx/Enginuity-Alpha/pkg/clients/mailer"
	"github.com/Haizenx/Enginuity-Alpha/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	if err := handlers.RegisterValidators(); err != nil {
		baseLogger.Fatal("failed to register request validators", zap.Error(err))
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	mongoRepo, err := mongodb.NewRepository(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	// The unique name index cannot be built while duplicate items exist.
	if err := mongoRepo.EnsureIndexes(startupCtx); err != nil {
		baseLogger.Warn("failed to ensure mongodb indexes, run the catalog sweep to remove duplicate items", zap.Error(err))
	}

	appMetrics := metrics.New()

	catalogService := catalogsvc.NewService(mongoRepo.Items(), mongoRepo.Suppliers(), cfg.Pricing.DefaultCurrency, baseLogger.Named("svc.catalog"))

	quotationOpts := quotationsvc.Options{
		Currency: cfg.Pricing.DefaultCurrency,
		Metrics:  appMetrics,
	}

	var sheetReader pricelistsvc.SheetReader
	if cfg.Sheets.Enabled() {
		workbook, err := sheets.NewWorkbook(startupCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets workbook", zap.Error(err))
		}
		sheetReader = workbook
		if cfg.Sheets.LedgerRange != "" {
			quotationOpts.Ledger = workbook
			quotationOpts.LedgerRange = cfg.Sheets.LedgerRange
		}
		baseLogger.Info("google sheets integration enabled")
	} else {
		baseLogger.Warn("google sheets settings missing, sheet imports and the quotation ledger are disabled")
	}

	if cfg.Mail.Enabled() {
		mailClient, err := mailer.NewClient(mailer.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		}, baseLogger.Named("client.mailer"))
		if err != nil {
			baseLogger.Fatal("failed to init mailer", zap.Error(err))
		}
		quotationOpts.Mailer = mailClient
		baseLogger.Info("smtp mailer enabled", zap.String("host", cfg.Mail.Host))
	} else {
		baseLogger.Warn("smtp credentials missing, quotation emails are disabled")
	}

	priceListService := pricelistsvc.NewService(catalogService, sheetReader, baseLogger.Named("svc.pricelist"))
	quotationService := quotationsvc.NewService(
		catalogService,
		mongoRepo.Quotations(),
		mongoRepo.Preferences(),
		quotationOpts,
		baseLogger.Named("svc.quotation"),
	)

	engine := router.New(cfg.Server.GinMode, router.Handlers{
		Catalog:    handlers.NewCatalogHandler(catalogService, baseLogger.Named("handlers.catalog")),
		PriceLists: handlers.NewPriceListHandler(priceListService, baseLogger.Named("handlers.pricelist")),
		Quotations: handlers.NewQuotationHandler(quotationService, baseLogger.Named("handlers.quotation")),
		DB:         mongoRepo,
	}, appMetrics, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Maintenance, catalogService, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	sched.Stop(shutdownCtx)
}
