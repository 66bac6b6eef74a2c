package exchange

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/medstock/inventory-engine/ledger"
	"github.com/xuri/excelize/v2"
)

const (
	// InventorySheet is the sheet name of the spreadsheet export.
	InventorySheet = "Inventory"

	// SampleSheet is the sheet name of the import sample.
	SampleSheet = "Sample"

	defaultSheet = "Sheet1"
)

// ErrNoSheet is returned for a workbook without worksheets.
var ErrNoSheet = errors.New("workbook has no sheets")

// SampleRow is the single example row of the import sample, in
// ledger.ImportColumns order.
var SampleRow = []any{"Paracetamol", "B123", "2025-12-31", 50, 40, 45, 100}

// =============================================================================
// EXPORT
// =============================================================================

// WriteXLSX writes a workbook with a header row and one row per item.
// Money and stock are numeric cells.
func WriteXLSX(w io.Writer, items []ledger.InventoryItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, InventorySheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := writeHeader(f, InventorySheet, Columns); err != nil {
		return err
	}

	for i, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		values := []any{
			int64(it.ID),
			it.ItemName,
			it.BatchNo,
			it.ExpiryDate,
			it.MRP.InexactFloat64(),
			it.PurchasePrice.InexactFloat64(),
			it.NetPrice.InexactFloat64(),
			it.StockQuantity,
			createdAt(it),
		}
		if err := f.SetSheetRow(InventorySheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx: write item %d: %w", it.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}

// WriteSample writes the one-row import sample workbook.
func WriteSample(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, SampleSheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := writeHeader(f, SampleSheet, ledger.ImportColumns); err != nil {
		return err
	}

	row := append([]any(nil), SampleRow...)
	if err := f.SetSheetRow(SampleSheet, "A2", &row); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	return nil
}

// =============================================================================
// IMPORT
// =============================================================================

// ReadSpreadsheet reads the first sheet of a workbook into import rows.
//
// The first row is the header; each later row becomes an ImportRow keyed by
// header text. Numeric cells arrive as float64 (so serial dates reach
// ledger.FormatDate as numbers), booleans as bool, everything else as the
// raw string. Empty cells are omitted and blank rows skipped.
func ReadSpreadsheet(r io.Reader) ([]ledger.ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("xlsx: read %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []ledger.ImportRow{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	out := make([]ledger.ImportRow, 0, len(rows)-1)
	for r, cells := range rows[1:] {
		row := ledger.ImportRow{}
		for c, raw := range cells {
			if c >= len(header) || header[c] == "" || raw == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("xlsx: %w", err)
			}
			typ, err := f.GetCellType(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("xlsx: cell %s: %w", cell, err)
			}
			row[header[c]] = cellValue(typ, raw)
		}
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return out, nil
}

func cellValue(typ excelize.CellType, raw string) any {
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	}
	return raw
}
