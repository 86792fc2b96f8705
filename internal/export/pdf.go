package export

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

const dateLayout = "January 2, 2006"

var (
	grey      = &props.Color{Red: 80, Green: 80, Blue: 80}
	lightGrey = &props.Color{Red: 230, Green: 230, Blue: 230}
	headerBg  = &props.Color{Red: 200, Green: 200, Blue: 200}
)

// QuotationPDF renders the quotation as an A4 landscape PDF.
func QuotationPDF(q models.Quotation) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addProjectHeader(m, q)
	addLinesTable(m, q)
	addTotal(m, q)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addProjectHeader(m core.Maroto, q models.Quotation) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New("QUOTATION", props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}),
			),
		),
	)

	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}
	value := props.Text{Size: 9, Align: align.Left, Color: grey}

	pairs := [][2]string{
		{"PROJECT TITLE:", q.Project.ProjectTitle},
		{"PROJECT OWNER:", q.Project.ProjectOwner},
		{"LOCATION:", q.Project.Location},
		{"PROJECT DURATION:", q.Project.ProjectDuration},
		{"SUPPLIER:", q.SupplierName},
		{"CLIENT TIER:", fmt.Sprintf("Tier %d (%s%% markup)", int(q.Tier), q.MarkupPercent.String())},
	}
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		m.AddRows(
			row.New(6).Add(
				col.New(3).Add(text.New(p[0], label)),
				col.New(9).Add(text.New(p[1], value)),
			),
		)
	}

	if !q.CreatedAt.IsZero() {
		m.AddRows(
			row.New(6).Add(
				col.New(12).Add(text.New(q.CreatedAt.Format(dateLayout), props.Text{Size: 9, Align: align.Right, Color: grey})),
			),
		)
	}

	m.AddRows(row.New(4))
}

func addLinesTable(m core.Maroto, q models.Quotation) {
	headerCell := &props.Cell{BackgroundColor: headerBg}
	headerText := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center}

	headings := []struct {
		title string
		size  int
	}{
		{"ITEM NO.", 1}, {"ITEM DESCRIPTION", 4}, {"QTY", 1}, {"UNIT", 1},
		{"UNIT PRICE", 2}, {"MARKUP", 1}, {"AMOUNT", 2},
	}
	header := row.New(8)
	for _, h := range headings {
		header.Add(col.New(h.size).Add(text.New(h.title, headerText)).WithStyle(headerCell))
	}
	m.AddRows(header)

	if len(q.Lines) == 0 {
		m.AddRows(
			row.New(8).Add(
				col.New(12).Add(text.New("No items selected for this quotation.", props.Text{Size: 8, Align: align.Left})),
			),
		)
		return
	}

	center := props.Text{Size: 8, Align: align.Center}
	left := props.Text{Size: 8, Align: align.Left}
	right := props.Text{Size: 8, Align: align.Right}
	groupCell := &props.Cell{BackgroundColor: lightGrey}

	counter := 1
	for _, group := range GroupLines(q.Lines) {
		m.AddRows(
			row.New(7).Add(
				col.New(12).Add(text.New(group.Heading, props.Text{Size: 8.5, Style: fontstyle.Bold, Align: align.Left})).WithStyle(groupCell),
			),
		)

		for _, line := range group.Lines {
			itemNo := line.ItemNo
			if itemNo == "" {
				itemNo = strconv.Itoa(counter)
				counter++
			}

			name := line.Name
			if line.ItemMissing {
				name = line.ItemID + " (not in catalog)"
			}

			unitPrice, markup, amount := "price unavailable", "", ""
			if !line.PriceMissing {
				unitPrice = FormatMoney("", line.BasePrice)
				markup = FormatMoney("", line.MarkupAmount)
				amount = FormatMoney("", line.LineAmount)
			}

			m.AddRows(
				row.New(7).Add(
					col.New(1).Add(text.New(itemNo, center)),
					col.New(4).Add(text.New(name, left)),
					col.New(1).Add(text.New(strconv.Itoa(line.Quantity), right)),
					col.New(1).Add(text.New(line.Unit, center)),
					col.New(2).Add(text.New(unitPrice, right)),
					col.New(1).Add(text.New(markup, right)),
					col.New(2).Add(text.New(amount, right)),
				),
			)
		}
	}
}

func addTotal(m core.Maroto, q models.Quotation) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	bold := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(text.New("TOTAL PROJECT COST", bold)).WithStyle(summaryCell),
			col.New(4).Add(text.New(FormatMoney(q.Currency, q.GrandTotal), bold)).WithStyle(summaryCell),
		),
	)
}
