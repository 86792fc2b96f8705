package pricelist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

var (
	// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported price list format, expected .csv or .xlsx")
	// ErrEmptyPriceList is returned when the source holds no data rows.
	ErrEmptyPriceList = errors.New("price list has no rows")
	// ErrSheetsUnavailable is returned when no spreadsheet is configured.
	ErrSheetsUnavailable = errors.New("google sheets integration is not configured")
)

// Catalog is the subset of the catalog service used by the importer.
type Catalog interface {
	GetSupplier(ctx context.Context, id string) (models.Supplier, error)
	UpsertItem(ctx context.Context, item models.Item) (models.Item, error)
	SetSupplierPrice(ctx context.Context, itemID, supplierID string, price decimal.Decimal, currency string) (models.Item, error)
}

// SheetReader reads a range from the configured spreadsheet.
type SheetReader interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// RowError reports why one row was not imported.
type RowError struct {
	Row     int    `json:"row"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// Report summarizes an import.
type Report struct {
	SupplierID string     `json:"supplierId"`
	TotalRows  int        `json:"totalRows"`
	Imported   int        `json:"imported"`
	Errors     []RowError `json:"errors"`
}

// Service imports supplier price lists into the catalog.
type Service struct {
	catalog Catalog
	sheets  SheetReader
	logger  *zap.Logger
}

// NewService wires the importer. sheets may be nil when no spreadsheet is configured.
func NewService(catalog Catalog, sheets SheetReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: catalog, sheets: sheets, logger: logger}
}

// ImportFile parses an uploaded CSV or XLSX file and applies it.
func (s *Service) ImportFile(ctx context.Context, supplierID, filename string, r io.Reader) (Report, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = ParseCSV(r)
	case ".xlsx":
		records, err = ParseXLSX(r)
	default:
		return Report{}, ErrUnsupportedFormat
	}
	if err != nil {
		return Report{}, err
	}
	return s.apply(ctx, supplierID, records)
}

// ImportSheet reads a range of the configured spreadsheet and applies it.
func (s *Service) ImportSheet(ctx context.Context, supplierID, sheetRange string) (Report, error) {
	if s.sheets == nil {
		return Report{}, ErrSheetsUnavailable
	}
	values, err := s.sheets.ReadRange(ctx, sheetRange)
	if err != nil {
		return Report{}, fmt.Errorf("load price list range: %w", err)
	}
	return s.apply(ctx, supplierID, SheetValues(values))
}

func (s *Service) apply(ctx context.Context, supplierID string, records [][]string) (Report, error) {
	if _, err := s.catalog.GetSupplier(ctx, supplierID); err != nil {
		return Report{}, err
	}

	rows := ExtractRows(records)
	if len(rows) == 0 {
		return Report{}, ErrEmptyPriceList
	}

	report := Report{SupplierID: supplierID, TotalRows: len(rows), Errors: []RowError{}}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if row.Name == "" {
			report.Errors = append(report.Errors, RowError{Row: row.Line, Message: "name is required"})
			continue
		}
		price, err := NormalizePrice(row.Price)
		if err != nil {
			report.Errors = append(report.Errors, RowError{Row: row.Line, Name: row.Name, Message: err.Error()})
			continue
		}

		item, err := s.catalog.UpsertItem(ctx, models.Item{Name: row.Name, Unit: row.Unit})
		if err != nil {
			s.logger.Warn("price list row rejected", zap.Int("row", row.Line), zap.Error(err))
			report.Errors = append(report.Errors, RowError{Row: row.Line, Name: row.Name, Message: err.Error()})
			continue
		}
		if _, err := s.catalog.SetSupplierPrice(ctx, item.ID, supplierID, price, ""); err != nil {
			s.logger.Warn("price list row rejected", zap.Int("row", row.Line), zap.Error(err))
			report.Errors = append(report.Errors, RowError{Row: row.Line, Name: row.Name, Message: err.Error()})
			continue
		}
		report.Imported++
	}

	s.logger.Info("price list imported",
		zap.String("supplier_id", supplierID),
		zap.Int("rows", report.TotalRows),
		zap.Int("imported", report.Imported),
		zap.Int("errors", len(report.Errors)),
	)
	return report, nil
}
