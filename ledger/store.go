/*
store.go - Persistence interface for inventory items and sales

PURPOSE:
  Defines the boundary between the ledger engine and the database. The
  engine computes dates, derived amounts and validation; the Store only
  reads and writes rows.

KEY INTERFACES:
  Store:   Row-level reads/writes for both record kinds
  TxStore: Store plus WithTx for atomic multi-step writes

ATOMICITY:
  - InsertItems is all-or-nothing on its own (the bulk import batch)
  - ClearAll is all-or-nothing on its own
  - The sale recorder uses WithTx to pair InsertSale with AdjustStock

IMPLEMENTATIONS:
  - store/sqlite: SQLite file, the production store
  - ledger/store: in-memory, for tests and dev

SEE ALSO:
  - ledger.go: Engine using Store
  - store/sqlite/sqlite.go: Concrete implementation
*/
package ledger

import (
	"context"
	"time"
)

// Store handles persistence of inventory items and sales.
type Store interface {
	// Initialize creates the schema if missing. Safe on every startup.
	Initialize(ctx context.Context) error

	// ListItems returns matching items, newest first.
	ListItems(ctx context.Context, filter ItemFilter) ([]InventoryItem, error)

	// CountItems counts matching items.
	CountItems(ctx context.Context, filter ItemFilter) (int, error)

	// GetItem returns nil without error when the id is absent.
	GetItem(ctx context.Context, id ItemID) (*InventoryItem, error)

	InsertItem(ctx context.Context, fields ItemFields, createdAt time.Time) (MutationResult, error)

	// InsertItems inserts every row or none.
	InsertItems(ctx context.Context, rows []ItemFields, createdAt time.Time) (int64, error)

	// UpdateItem replaces all mutable fields. Zero rows affected if absent.
	UpdateItem(ctx context.Context, id ItemID, fields ItemFields) (MutationResult, error)

	// DeleteItem removes one row. Zero rows affected if absent.
	DeleteItem(ctx context.Context, id ItemID) (MutationResult, error)

	// AdjustStock adds delta to stock_quantity. Zero rows affected if absent.
	AdjustStock(ctx context.Context, id ItemID, delta int64) (MutationResult, error)

	InsertSale(ctx context.Context, sale SaleTransaction) (MutationResult, error)

	// ListSales returns all sales, newest sale_date first.
	ListSales(ctx context.Context) ([]SaleTransaction, error)

	// SumSales totals profit and revenue of sales with from <= sale_date < to.
	SumSales(ctx context.Context, from, to time.Time) (SalesTotals, error)

	// ClearAll deletes every item and sale and restarts id assignment.
	ClearAll(ctx context.Context) error
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
