/*
importer.go - Bulk import of externally sourced inventory rows

PURPOSE:
  Turns loosely typed rows (spreadsheet cells, JSON objects) into ItemFields
  and inserts them as one atomic batch.

ROW KEYS:
  Each field can come under a human label or a machine name. The human label
  wins when its value is truthy; otherwise the machine name is used.

    Item Name       item_name
    Batch No        batch_no
    Expiry Date     expiry_date       normalized by FormatDate
    MRP             mrp               default 0
    Purchase Price  purchase_price    default 0
    Net Price       net_price         default 0
    Stock Quantity  stock_quantity    default 0

  Text is trimmed. Negative prices reject the row like any other invalid
  value. A missing name or batch is stored as NULL. The store rejects a NULL name,
  which aborts the whole batch.

DATE NORMALIZATION (FormatDate):
  empty               -> ""
  number              -> spreadsheet serial date, YYYY-MM-DD
  D/M/YYYY            -> YYYY-MM-DD (separators / - .)
  YYYY/M/D            -> separators replaced by "-"
  anything else       -> unchanged
*/
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ImportRow is one externally sourced row keyed by column header.
type ImportRow map[string]any

// Column aliases, human label first.
var (
	ColItemName      = [2]string{"Item Name", "item_name"}
	ColBatchNo       = [2]string{"Batch No", "batch_no"}
	ColExpiryDate    = [2]string{"Expiry Date", "expiry_date"}
	ColMRP           = [2]string{"MRP", "mrp"}
	ColPurchasePrice = [2]string{"Purchase Price", "purchase_price"}
	ColNetPrice      = [2]string{"Net Price", "net_price"}
	ColStockQuantity = [2]string{"Stock Quantity", "stock_quantity"}
)

// ImportColumns lists the human labels in spreadsheet order.
var ImportColumns = []string{
	ColItemName[0], ColBatchNo[0], ColExpiryDate[0], ColMRP[0],
	ColPurchasePrice[0], ColNetPrice[0], ColStockQuantity[0],
}

// ImportItems normalizes rows and inserts them in a single batch.
// It returns the number of inserted rows. Nothing is inserted on error.
func (l *Ledger) ImportItems(ctx context.Context, rows []ImportRow) (int64, error) {
	fields := make([]ItemFields, 0, len(rows))
	for i, row := range rows {
		f, err := NormalizeRow(row)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Row = i + 1
			}
			return 0, err
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return 0, nil
	}
	return l.store.InsertItems(ctx, fields, l.clock.Now())
}

// NormalizeRow maps one row onto ItemFields.
func NormalizeRow(row ImportRow) (ItemFields, error) {
	var (
		f   ItemFields
		err error
	)

	f.ItemName = textValue(pick(row, ColItemName))
	f.BatchNo = textValue(pick(row, ColBatchNo))
	f.ExpiryDate = FormatDate(pick(row, ColExpiryDate))

	if f.MRP, err = decimalValue(ColMRP[1], pick(row, ColMRP)); err != nil {
		return f, err
	}
	if f.PurchasePrice, err = decimalValue(ColPurchasePrice[1], pick(row, ColPurchasePrice)); err != nil {
		return f, err
	}
	if f.NetPrice, err = decimalValue(ColNetPrice[1], pick(row, ColNetPrice)); err != nil {
		return f, err
	}

	qty, err := decimalValue(ColStockQuantity[1], pick(row, ColStockQuantity))
	if err != nil {
		return f, err
	}
	f.StockQuantity = qty.IntPart()

	return f, checkPrices(f)
}

// =============================================================================
// DATE NORMALIZATION
// =============================================================================

var (
	dayFirstDate  = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})[/.-](\d{4})$`)
	yearFirstDate = regexp.MustCompile(`^(\d{4})[/.-](\d{1,2})[/.-](\d{1,2})$`)
)

// spreadsheetEpoch is day zero of the 1900 date system.
var spreadsheetEpoch = time.Date(1899, time.December, 30, 12, 0, 0, 0, time.UTC)

// FormatDate normalizes an imported expiry value to YYYY-MM-DD where it can.
func FormatDate(value any) string {
	if !truthy(value) {
		return ""
	}

	if serial, ok := numberValue(value); ok {
		return serialDate(serial)
	}

	s, ok := value.(string)
	if !ok {
		return fmt.Sprint(value)
	}

	trimmed := strings.TrimSpace(s)
	if m := dayFirstDate.FindStringSubmatch(trimmed); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	}
	if yearFirstDate.MatchString(trimmed) {
		return strings.NewReplacer("/", "-", ".", "-").Replace(trimmed)
	}
	return s
}

// serialDate decodes a spreadsheet serial number. Values the spreadsheet
// decoder rejects fall back to plain day arithmetic from 1899-12-30 noon UTC.
func serialDate(serial float64) string {
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		days := math.Round(serial * 86400)
		t = spreadsheetEpoch.Add(time.Duration(days) * time.Second)
	}
	return t.Format(DateLayout)
}

// =============================================================================
// VALUE COERCION
// =============================================================================

func pick(row ImportRow, keys [2]string) any {
	if v := row[keys[0]]; truthy(v) {
		return v
	}
	if v := row[keys[1]]; truthy(v) {
		return v
	}
	return nil
}

// truthy treats nil, "", false and numeric zero as absent.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	}
	if n, ok := numberValue(v); ok {
		return n != 0 && !math.IsNaN(n)
	}
	return true
}

func numberValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case decimal.Decimal:
		return x.InexactFloat64(), true
	}
	return 0, false
}

func textValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func decimalValue(field string, v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return x, nil
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return decimal.Zero, invalid(field, "not a number: "+x.String())
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return decimal.Zero, invalid(field, "not a number: "+x)
		}
		return d, nil
	}
	if n, ok := numberValue(v); ok {
		return decimal.NewFromFloat(n), nil
	}
	return decimal.Zero, invalid(field, fmt.Sprintf("unsupported value %v", v))
}
