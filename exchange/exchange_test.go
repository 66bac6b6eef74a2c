package exchange_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/medstock/inventory-engine/exchange"
	"github.com/medstock/inventory-engine/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleItems(n int) []ledger.InventoryItem {
	items := make([]ledger.InventoryItem, n)
	for i := range items {
		items[i] = ledger.InventoryItem{
			ID:            ledger.ItemID(i + 1),
			ItemName:      "Item",
			BatchNo:       "B1",
			ExpiryDate:    "2025-12-31",
			MRP:           decimal.RequireFromString("12.5"),
			PurchasePrice: decimal.NewFromInt(10),
			NetPrice:      decimal.NewFromInt(11),
			StockQuantity: int64(i),
			CreatedAt:     time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC),
		}
	}
	return items
}

// =============================================================================
// CSV
// =============================================================================

func TestWriteCSV(t *testing.T) {
	items := sampleItems(1)
	items[0].ItemName = "Cough Syrup, 100ml"

	var buf bytes.Buffer
	require.NoError(t, exchange.WriteCSV(&buf, items))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, exchange.Columns, records[0])
	assert.Equal(t, []string{
		"1", "Cough Syrup, 100ml", "B1", "2025-12-31", "12.5", "10", "11", "0",
		"2025-01-02T03:04:05.000Z",
	}, records[1])
}

func TestWriteCSV_Empty_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exchange.WriteCSV(&buf, nil))

	assert.Equal(t, strings.Join(exchange.Columns, ",")+"\n", buf.String())
}

// =============================================================================
// XLSX
// =============================================================================

func TestWriteXLSX_RoundTripsThroughImportReader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exchange.WriteXLSX(&buf, sampleItems(2)))

	rows, err := exchange.ReadSpreadsheet(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Item", rows[0]["item_name"])
	assert.Equal(t, 12.5, rows[0]["mrp"])
	assert.Equal(t, 1.0, rows[1]["stock_quantity"])
	_, hasZeroStock := rows[0]["stock_quantity"]
	assert.True(t, hasZeroStock, "numeric zero is a value, not an empty cell")

	f, err := ledger.NormalizeRow(rows[1])
	require.NoError(t, err)
	assert.Equal(t, "Item", f.ItemName)
	assert.Equal(t, "2025-12-31", f.ExpiryDate)
	assert.True(t, f.MRP.Equal(decimal.RequireFromString("12.5")))
}

func TestWriteSample(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exchange.WriteSample(&buf))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{exchange.SampleSheet}, f.GetSheetList())

	rows, err := exchange.ReadSpreadsheet(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	fields, err := ledger.NormalizeRow(rows[0])
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", fields.ItemName)
	assert.Equal(t, "B123", fields.BatchNo)
	assert.Equal(t, "2025-12-31", fields.ExpiryDate)
	assert.True(t, fields.NetPrice.Equal(decimal.NewFromInt(45)))
	assert.Equal(t, int64(100), fields.StockQuantity)
}

func TestReadSpreadsheet_FirstSheetSerialDatesAndBlanks(t *testing.T) {
	// GIVEN: a workbook whose first sheet has a serial expiry date and a blank row
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Item Name", "Expiry Date", "Stock Quantity", ""}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Paracetamol", 46022, 5, "ignored"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"Ibuprofen", "31/12/2025", "7"}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Other", "A1", &[]any{"Item Name"}))
	require.NoError(t, f.SetSheetRow("Other", "A2", &[]any{"Not imported"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	// WHEN
	rows, err := exchange.ReadSpreadsheet(&buf)

	// THEN
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ledger.ImportRow{"Item Name": "Paracetamol", "Expiry Date": 46022.0, "Stock Quantity": 5.0}, rows[0])
	assert.Equal(t, "7", rows[1]["Stock Quantity"], "text cells stay text")

	first, err := ledger.NormalizeRow(rows[0])
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", first.ExpiryDate)

	second, err := ledger.NormalizeRow(rows[1])
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", second.ExpiryDate)
	assert.Equal(t, int64(7), second.StockQuantity)
}

func TestReadSpreadsheet_NotAWorkbook(t *testing.T) {
	_, err := exchange.ReadSpreadsheet(strings.NewReader("id,item_name\n1,x\n"))
	assert.Error(t, err)
}

// =============================================================================
// PDF
// =============================================================================

func TestReportLine(t *testing.T) {
	it := ledger.InventoryItem{ItemName: "Paracetamol", BatchNo: "B123", ExpiryDate: "2025-12-31", StockQuantity: 100}

	assert.Equal(t, "Paracetamol - Batch: B123 - Exp: 2025-12-31 - Stock: 100", exchange.ReportLine(it))
}

func TestReportPages(t *testing.T) {
	assert.Len(t, exchange.ReportPages(nil), 1)
	assert.Len(t, exchange.ReportPages(sampleItems(27)), 1)

	pages := exchange.ReportPages(sampleItems(55))
	require.Len(t, pages, 3)
	assert.Len(t, pages[0], 27)
	assert.Len(t, pages[1], 27)
	assert.Len(t, pages[2], 1)
}

func TestRenderPDF(t *testing.T) {
	data, err := exchange.RenderPDF(sampleItems(30))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
