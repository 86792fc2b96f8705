package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

const quotationSheet = "Quotation"

var xlsxColumns = []string{"A", "B", "C", "D", "E", "F", "G"}

// QuotationXLSX renders the quotation as a single-sheet workbook. Amounts are
// written as numbers so the sheet stays editable.
func QuotationXLSX(q models.Quotation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), quotationSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	widths := []float64{10, 48, 8, 10, 16, 14, 18}
	for i, c := range xlsxColumns {
		if err := f.SetColWidth(quotationSheet, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", c, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C8C8C8"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	groupStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create group style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4, Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	last := xlsxColumns[len(xlsxColumns)-1]
	if err := f.MergeCell(quotationSheet, "A1", last+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(quotationSheet, "A1", sanitizeExcelCell(q.Project.ProjectTitle))
	f.SetCellStyle(quotationSheet, "A1", last+"1", titleStyle)

	details := [][2]string{
		{"Project owner", q.Project.ProjectOwner},
		{"Location", q.Project.Location},
		{"Project duration", q.Project.ProjectDuration},
		{"Supplier", q.SupplierName},
		{"Client tier", fmt.Sprintf("%d (%s%%)", int(q.Tier), q.MarkupPercent.String())},
		{"Currency", q.Currency},
	}
	rowIdx := 2
	for _, d := range details {
		f.SetCellValue(quotationSheet, cell("A", rowIdx), d[0])
		f.SetCellValue(quotationSheet, cell("B", rowIdx), sanitizeExcelCell(d[1]))
		rowIdx++
	}
	rowIdx++

	headers := []string{"Item No.", "Description", "Qty", "Unit", "Unit Price", "Markup", "Amount"}
	for i, h := range headers {
		f.SetCellValue(quotationSheet, cell(xlsxColumns[i], rowIdx), h)
	}
	f.SetCellStyle(quotationSheet, cell("A", rowIdx), cell(last, rowIdx), headerStyle)
	rowIdx++

	for _, group := range GroupLines(q.Lines) {
		f.SetCellValue(quotationSheet, cell("A", rowIdx), group.Heading)
		f.SetCellStyle(quotationSheet, cell("A", rowIdx), cell(last, rowIdx), groupStyle)
		rowIdx++

		for _, line := range group.Lines {
			name := line.Name
			if line.ItemMissing {
				name = line.ItemID + " (not in catalog)"
			}
			f.SetCellValue(quotationSheet, cell("A", rowIdx), sanitizeExcelCell(line.ItemNo))
			f.SetCellValue(quotationSheet, cell("B", rowIdx), sanitizeExcelCell(name))
			f.SetCellValue(quotationSheet, cell("C", rowIdx), line.Quantity)
			f.SetCellValue(quotationSheet, cell("D", rowIdx), sanitizeExcelCell(line.Unit))
			if line.PriceMissing {
				f.SetCellValue(quotationSheet, cell("E", rowIdx), "price unavailable")
			} else {
				f.SetCellValue(quotationSheet, cell("E", rowIdx), line.BasePrice.InexactFloat64())
				f.SetCellValue(quotationSheet, cell("F", rowIdx), line.MarkupAmount.InexactFloat64())
				f.SetCellValue(quotationSheet, cell("G", rowIdx), line.LineAmount.InexactFloat64())
				f.SetCellStyle(quotationSheet, cell("E", rowIdx), cell("G", rowIdx), moneyStyle)
			}
			rowIdx++
		}
	}

	rowIdx++
	f.SetCellValue(quotationSheet, cell("F", rowIdx), "TOTAL")
	f.SetCellValue(quotationSheet, cell("G", rowIdx), q.GrandTotal.InexactFloat64())
	f.SetCellStyle(quotationSheet, cell("F", rowIdx), cell("G", rowIdx), totalStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(column string, row int) string {
	return fmt.Sprintf("%s%d", column, row)
}

// sanitizeExcelCell prefixes values that a spreadsheet would evaluate as a formula.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
