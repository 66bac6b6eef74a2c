package exchange

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/medstock/inventory-engine/ledger"
)

const (
	// ReportTitle heads the first page of the PDF report.
	ReportTitle = "Medical Inventory Report"

	// LinesPerPage is the number of item lines on each report page.
	LinesPerPage = 27

	lineHeight = 9
)

var colorTitle = &props.Color{Red: 0, Green: 70, Blue: 127}

// ReportLine renders one item as a report line.
func ReportLine(it ledger.InventoryItem) string {
	return fmt.Sprintf("%s - Batch: %s - Exp: %s - Stock: %d",
		it.ItemName, it.BatchNo, it.ExpiryDate, it.StockQuantity)
}

// ReportPages splits items into page-sized chunks. An empty inventory still
// yields one (empty) page.
func ReportPages(items []ledger.InventoryItem) [][]ledger.InventoryItem {
	if len(items) == 0 {
		return [][]ledger.InventoryItem{{}}
	}
	pages := make([][]ledger.InventoryItem, 0, (len(items)+LinesPerPage-1)/LinesPerPage)
	for start := 0; start < len(items); start += LinesPerPage {
		end := min(start+LinesPerPage, len(items))
		pages = append(pages, items[start:end])
	}
	return pages
}

// RenderPDF builds the inventory report and returns the document bytes.
func RenderPDF(items []ledger.InventoryItem) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 11}).
		WithTitle(ReportTitle, true).
		Build()

	m := maroto.New(cfg)

	for i, chunk := range ReportPages(items) {
		p := page.New()
		if i == 0 {
			p.Add(titleRow(), line.NewRow(2, props.Line{Color: colorTitle, Thickness: 0.4}))
		}
		for _, it := range chunk {
			p.Add(itemRow(it))
		}
		m.AddPages(p)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate report: %w", err)
	}
	return doc.GetBytes(), nil
}

func titleRow() core.Row {
	return row.New(14).Add(
		col.New(12).Add(text.New(ReportTitle, props.Text{
			Style: fontstyle.Bold, Size: 18, Color: colorTitle, Top: 2,
		})),
	)
}

func itemRow(it ledger.InventoryItem) core.Row {
	return row.New(lineHeight).Add(
		col.New(12).Add(text.New(ReportLine(it), props.Text{Size: 11, Top: 1})),
	)
}
