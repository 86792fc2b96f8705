package pricelist

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

type fakeCatalog struct {
	suppliers map[string]bool
	items     map[string]models.Item
	prices    map[string]decimal.Decimal
}

func newFakeCatalog(supplierIDs ...string) *fakeCatalog {
	c := &fakeCatalog{suppliers: map[string]bool{}, items: map[string]models.Item{}, prices: map[string]decimal.Decimal{}}
	for _, id := range supplierIDs {
		c.suppliers[id] = true
	}
	return c
}

func (c *fakeCatalog) GetSupplier(_ context.Context, id string) (models.Supplier, error) {
	if !c.suppliers[id] {
		return models.Supplier{}, models.ErrSupplierNotFound
	}
	return models.Supplier{ID: id}, nil
}

func (c *fakeCatalog) UpsertItem(_ context.Context, item models.Item) (models.Item, error) {
	key := models.NormalizeName(item.Name)
	if existing, ok := c.items[key]; ok {
		return existing, nil
	}
	item.ID = key
	c.items[key] = item
	return item, nil
}

func (c *fakeCatalog) SetSupplierPrice(_ context.Context, itemID, supplierID string, price decimal.Decimal, _ string) (models.Item, error) {
	c.prices[itemID+"/"+supplierID] = price
	return c.items[itemID], nil
}

type fakeSheet struct {
	values [][]interface{}
	err    error
}

func (f fakeSheet) ReadRange(context.Context, string) ([][]interface{}, error) {
	return f.values, f.err
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "1250", want: "1250"},
		{raw: "PHP 1,250.50", want: "1250.5"},
		{raw: "₱ 99.99 / bag", want: "99.99"},
		{raw: "", wantErr: true},
		{raw: "n/a", wantErr: true},
		{raw: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizePrice(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestExtractRowsDetectsHeader(t *testing.T) {
	rows := ExtractRows([][]string{
		{"Price", "Item Name", "UOM"},
		{"10", "Cement", "bag"},
		{"", "", ""},
		{"5", "Sand", "m3"},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, Row{Line: 2, Name: "Cement", Unit: "bag", Price: "10"}, rows[0])
	assert.Equal(t, 4, rows[1].Line)
}

func TestExtractRowsWithoutHeader(t *testing.T) {
	rows := ExtractRows([][]string{
		{"Cement", "bag", "250"},
		{"Sand"},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "250", rows[0].Price)
	assert.Equal(t, Row{Line: 2, Name: "Sand"}, rows[1])
}

func TestImportFileCSV(t *testing.T) {
	catalog := newFakeCatalog("sup-1")
	svc := NewService(catalog, nil, nil)

	csv := "name,unit,price\nCement,bag,\"PHP 250.00\"\nSand,m3,abc\n,pc,5\ncement,sack,260\n"
	report, err := svc.ImportFile(context.Background(), "sup-1", "prices.CSV", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalRows)
	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, 3, report.Errors[0].Row)
	assert.Equal(t, "Sand", report.Errors[0].Name)
	assert.Equal(t, 4, report.Errors[1].Row)

	assert.Len(t, catalog.items, 1)
	assert.Equal(t, "260", catalog.prices["cement/sup-1"].String())
}

func TestImportFileXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Item", "Unit", "Unit Price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Plywood", "sheet", 480.75}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	catalog := newFakeCatalog("sup-1")
	report, err := NewService(catalog, nil, nil).ImportFile(context.Background(), "sup-1", "list.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, "480.75", catalog.prices["plywood/sup-1"].String())
}

func TestImportFileErrors(t *testing.T) {
	svc := NewService(newFakeCatalog("sup-1"), nil, nil)
	ctx := context.Background()

	_, err := svc.ImportFile(ctx, "sup-1", "prices.pdf", strings.NewReader(""))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = svc.ImportFile(ctx, "sup-1", "prices.csv", strings.NewReader("name,unit,price\n"))
	require.ErrorIs(t, err, ErrEmptyPriceList)

	_, err = svc.ImportFile(ctx, "ghost", "prices.csv", strings.NewReader("Cement,bag,1\n"))
	require.ErrorIs(t, err, models.ErrSupplierNotFound)
}

func TestImportSheet(t *testing.T) {
	catalog := newFakeCatalog("sup-1")
	sheet := fakeSheet{values: [][]interface{}{
		{"Name", "Unit", "Price"},
		{"Rebar 10mm", "pc", "185"},
	}}

	report, err := NewService(catalog, sheet, nil).ImportSheet(context.Background(), "sup-1", "Prices!A:C")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)

	_, err = NewService(catalog, nil, nil).ImportSheet(context.Background(), "sup-1", "Prices!A:C")
	require.ErrorIs(t, err, ErrSheetsUnavailable)

	boom := errors.New("quota exceeded")
	_, err = NewService(catalog, fakeSheet{err: boom}, nil).ImportSheet(context.Background(), "sup-1", "Prices!A:C")
	require.ErrorIs(t, err, boom)
}
