/*
Package ledger provides the inventory and sales ledger engine.

PURPOSE:
  Owns the two record kinds of the business (inventory items and sale
  transactions) and every operation that touches them: CRUD over items,
  the atomic sale recorder, the bulk importer, and the dashboard/sales
  aggregates. Persistence is delegated to a TxStore implementation.

KEY CONCEPTS IN THIS FILE (types.go):
  - InventoryItem: a stocked product batch (name, batch, expiry, prices, stock)
  - ItemFields: the mutable part of an item (everything except id/created_at)
  - SaleTransaction: an immutable sale with stored derived totals
  - DashboardStats / SalesStats: aggregate results

DESIGN PRINCIPLES:
  1. Money is decimal.Decimal, never float64
  2. Derived sale fields (total_amount, profit) are computed once at write
     time and stored; reads never recompute them
  3. sale.item_id is a soft reference; deleting an item keeps its sales

USAGE:
  l := ledger.New(store)
  res, err := l.AddItem(ctx, ledger.ItemFields{ItemName: "Paracetamol", StockQuantity: 10})
  sale, err := l.RecordSale(ctx, ledger.SaleRequest{ItemID: ledger.ItemID(res.LastInsertID), ...})

SEE ALSO:
  - ledger.go: CRUD operations
  - sale.go: Sale recorder
  - stats.go: Aggregation engine
  - importer.go: Bulk importer and date normalization
*/
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ItemID int64
type SaleID int64

// =============================================================================
// INVENTORY
// =============================================================================

// InventoryItem is one stocked batch of a product.
type InventoryItem struct {
	ID            ItemID
	ItemName      string
	BatchNo       string
	ExpiryDate    string // YYYY-MM-DD, or empty when unknown
	MRP           decimal.Decimal
	PurchasePrice decimal.Decimal
	NetPrice      decimal.Decimal
	StockQuantity int64 // may be negative after an oversell
	CreatedAt     time.Time
}

// ItemFields holds every replaceable column of an inventory row.
// Empty strings are persisted as NULL.
type ItemFields struct {
	ItemName      string
	BatchNo       string
	ExpiryDate    string
	MRP           decimal.Decimal
	PurchasePrice decimal.Decimal
	NetPrice      decimal.Decimal
	StockQuantity int64
}

// StockStatus selects inventory rows by expiry/stock classification.
// Categories are independent: an expired item with zero stock is both
// StatusExpired and StatusOutOfStock.
type StockStatus string

const (
	StatusAll          StockStatus = "all"
	StatusExpired      StockStatus = "expired"
	StatusExpiringSoon StockStatus = "expiring_soon"
	StatusOutOfStock   StockStatus = "out_of_stock"
)

// Valid reports whether s is a known status. Empty means all.
func (s StockStatus) Valid() bool {
	switch s {
	case "", StatusAll, StatusExpired, StatusExpiringSoon, StatusOutOfStock:
		return true
	}
	return false
}

// ItemFilter is the store-level selection of inventory rows.
// Today and Horizon are ISO dates; comparisons are lexicographic on the
// stored expiry_date text, which orders correctly for YYYY-MM-DD.
type ItemFilter struct {
	Status  StockStatus
	Today   string
	Horizon string
	Search  string
}

// Matches applies the filter to one item. SQL stores translate the same
// rules into WHERE clauses; this is the reference for in-memory stores.
func (f ItemFilter) Matches(it InventoryItem) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(it.ItemName), needle) &&
			!strings.Contains(strings.ToLower(it.BatchNo), needle) {
			return false
		}
	}

	switch f.Status {
	case StatusExpired:
		return it.ExpiryDate != "" && it.ExpiryDate < f.Today
	case StatusExpiringSoon:
		return it.ExpiryDate >= f.Today && it.ExpiryDate <= f.Horizon
	case StatusOutOfStock:
		return it.StockQuantity == 0
	}
	return true
}

// InventoryQuery is the caller-facing listing request.
type InventoryQuery struct {
	Search   string
	Status   StockStatus
	Page     int // 1-based; 0 returns everything
	PageSize int
}

// InventoryPage is one page of a listing plus the total matched count.
type InventoryPage struct {
	Items []InventoryItem
	Total int
}

// =============================================================================
// SALES
// =============================================================================

// SaleTransaction is an immutable sale record.
type SaleTransaction struct {
	ID          SaleID
	ItemID      ItemID // soft reference, not enforced
	ItemName    string // copy of the item name at sale time
	Quantity    int64
	SalePrice   decimal.Decimal // per unit
	TotalAmount decimal.Decimal // Quantity * SalePrice
	Profit      decimal.Decimal // (SalePrice - purchase price) * Quantity
	SaleDate    time.Time
}

// SaleRequest is the input of the sale recorder.
type SaleRequest struct {
	ItemID        ItemID
	ItemName      string
	Quantity      int64
	SalePrice     decimal.Decimal
	PurchasePrice decimal.Decimal
}

// SalePolicy controls oversell handling in the sale recorder.
type SalePolicy struct {
	// RejectOversell fails a sale whose quantity exceeds current stock.
	// When false, stock may go negative.
	RejectOversell bool
}

// =============================================================================
// RESULTS
// =============================================================================

// MutationResult reports the effect of a write.
type MutationResult struct {
	RowsAffected int64
	LastInsertID int64
}

// DashboardStats are the inventory counters shown on the dashboard.
type DashboardStats struct {
	Total        int
	Expired      int
	ExpiringSoon int
	OutOfStock   int
}

// SalesTotals is a profit/revenue pair. Both are zero for an empty bucket.
type SalesTotals struct {
	Profit  decimal.Decimal
	Revenue decimal.Decimal
}

// SalesStats buckets sales by local calendar day, month and year.
type SalesStats struct {
	Daily   SalesTotals
	Monthly SalesTotals
	Yearly  SalesTotals
}
