package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/Haizenx/Enginuity-Alpha/internal/config"
)

// ErrEmptyRange is returned when an A1 range is not supplied.
var ErrEmptyRange = errors.New("sheet range must not be empty")

// Workbook is the spreadsheet shared with suppliers and the office. Supplier
// price lists are read from it and every saved quotation is appended to the
// ledger tab.
type Workbook struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewWorkbook authenticates with the service account credentials file.
func NewWorkbook(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*Workbook, error) {
	return newWorkbook(ctx, cfg.SpreadsheetID, logger,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
}

func newWorkbook(ctx context.Context, spreadsheetID string, logger *zap.Logger, opts ...option.ClientOption) (*Workbook, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id must not be empty")
	}

	service, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &Workbook{
		service:       service,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends one row below the table found in sheetRange.
func (w *Workbook) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return ErrEmptyRange
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := w.service.Spreadsheets.Values.Append(w.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return fmt.Errorf("append row into range %s: %w", sheetRange, err)
	}

	updated := ""
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	w.logger.Debug("row appended to sheet", zap.String("range", sheetRange), zap.String("updated_range", updated))
	return nil
}

// ReadRange returns the formatted cell values of sheetRange, row by row.
// Trailing empty cells are omitted by the API.
func (w *Workbook) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, ErrEmptyRange
	}

	resp, err := w.service.Spreadsheets.Values.Get(w.spreadsheetID, sheetRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	w.logger.Debug("range read from sheet", zap.String("range", sheetRange), zap.Int("rows", len(resp.Values)))
	return resp.Values, nil
}
