package exchange

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/medstock/inventory-engine/ledger"
)

// WriteCSV writes the header and one record per item.
func WriteCSV(w io.Writer, items []ledger.InventoryItem) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, it := range items {
		if err := cw.Write(record(it)); err != nil {
			return fmt.Errorf("csv: write item %d: %w", it.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
