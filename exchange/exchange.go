/*
Package exchange encodes inventory for export and decodes spreadsheets for
import.

FORMATS:
  CSV     header row + one record per item (csv.go)
  XLSX    same columns as CSV on sheet "Inventory"; import reads the first
          sheet of any workbook; the sample workbook shows the import
          layout (xlsx.go)
  PDF     "Medical Inventory Report", one line per item, fixed lines per
          page (pdf.go)

Export columns mirror the stored fields in schema order. Import columns use
the human labels from ledger.ImportColumns.
*/
package exchange

import (
	"strconv"

	"github.com/medstock/inventory-engine/ledger"
)

// Columns is the export header, one entry per stored field.
var Columns = []string{
	"id",
	"item_name",
	"batch_no",
	"expiry_date",
	"mrp",
	"purchase_price",
	"net_price",
	"stock_quantity",
	"created_at",
}

// Content types of the export formats.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// record renders one item as export strings in Columns order.
func record(it ledger.InventoryItem) []string {
	return []string{
		strconv.FormatInt(int64(it.ID), 10),
		it.ItemName,
		it.BatchNo,
		it.ExpiryDate,
		it.MRP.String(),
		it.PurchasePrice.String(),
		it.NetPrice.String(),
		strconv.FormatInt(it.StockQuantity, 10),
		createdAt(it),
	}
}

func createdAt(it ledger.InventoryItem) string {
	if it.CreatedAt.IsZero() {
		return ""
	}
	return ledger.FormatTimestamp(it.CreatedAt)
}
