package pricelist

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ErrInvalidPrice marks a price cell that holds no number.
var ErrInvalidPrice = errors.New("price is not a number")

// Row is one price-list entry as read from the source.
type Row struct {
	Line  int
	Name  string
	Unit  string
	Price string
}

type columns struct {
	name, unit, price int
}

var defaultColumns = columns{name: 0, unit: 1, price: 2}

var headerLabels = map[string]string{
	"name":        "name",
	"item":        "name",
	"item name":   "name",
	"description": "name",
	"unit":        "unit",
	"uom":         "unit",
	"price":       "price",
	"unit price":  "price",
	"cost":        "price",
}

// ParseCSV reads every record of a CSV price list.
func ParseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return records, nil
}

// ParseXLSX reads every row of the first sheet of a workbook.
func ParseXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return rows, nil
}

// SheetValues converts a Sheets API value range into string records.
func SheetValues(values [][]interface{}) [][]string {
	records := make([][]string, 0, len(values))
	for _, v := range values {
		record := make([]string, len(v))
		for i, cell := range v {
			record[i] = fmt.Sprint(cell)
		}
		records = append(records, record)
	}
	return records
}

// ExtractRows maps raw records to rows. A first record made of known column
// labels is used as the header; otherwise columns are read as name, unit, price.
// Blank records are skipped. Line numbers are 1-based record positions.
func ExtractRows(records [][]string) []Row {
	if len(records) == 0 {
		return nil
	}

	cols := defaultColumns
	start := 0
	if mapped, ok := detectHeader(records[0]); ok {
		cols = mapped
		start = 1
	}

	var rows []Row
	for i := start; i < len(records); i++ {
		record := records[i]
		if isBlank(record) {
			continue
		}
		rows = append(rows, Row{
			Line:  i + 1,
			Name:  field(record, cols.name),
			Unit:  field(record, cols.unit),
			Price: field(record, cols.price),
		})
	}
	return rows
}

// NormalizePrice strips every character except digits and the decimal point,
// so "PHP 1,250.00" and "₱1250" both read as 1250.
func NormalizePrice(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)

	if cleaned == "" || cleaned == "." {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return d, nil
}

func detectHeader(record []string) (columns, bool) {
	cols := columns{name: -1, unit: -1, price: -1}
	for i, cell := range record {
		switch headerLabels[strings.ToLower(strings.TrimSpace(cell))] {
		case "name":
			cols.name = i
		case "unit":
			cols.unit = i
		case "price":
			cols.price = i
		}
	}
	if cols.name < 0 || cols.price < 0 {
		return defaultColumns, false
	}
	return cols, true
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
