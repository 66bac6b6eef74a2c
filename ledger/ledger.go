/*
ledger.go - Inventory ledger service

PURPOSE:
  The Ledger is the single entry point the boundary layer (HTTP handlers,
  import/export jobs) uses to read and change persistent state. It owns a
  TxStore handle, a Clock and the sale policy.

OPERATIONS:
  Initialize       Create schema (idempotent)
  ListInventory    Items newest first, with optional search/status/paging
  GetItem          One item, ErrItemNotFound when absent
  AddItem          Validate + insert, assigns id and created_at
  UpdateItem       Validate + full replace of mutable fields
  DeleteItem       Remove one row (zero rows affected is not an error)
  ListSales        Sales newest first
  ClearAll         Delete everything and reset ids (irreversible)

  DashboardStats / SalesStats   see stats.go
  RecordSale                    see sale.go
  ImportItems                   see importer.go

SOFT POLICIES:
  Update and delete by a nonexistent id succeed with RowsAffected == 0.
  Callers that need to know should inspect the result.
*/
package ledger

import (
	"context"
	"strings"
	"time"
)

// Ledger implements every inventory and sales operation over a TxStore.
type Ledger struct {
	store  TxStore
	clock  Clock
	policy SalePolicy
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used for timestamps and calendar windows.
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithSalePolicy sets the oversell policy of the sale recorder.
func WithSalePolicy(p SalePolicy) Option {
	return func(l *Ledger) { l.policy = p }
}

// New creates a Ledger. The default policy is permissive.
func New(store TxStore, opts ...Option) *Ledger {
	l := &Ledger{store: store, clock: SystemClock}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the ledger clock's current time.
func (l *Ledger) Now() time.Time { return l.clock.Now() }

// Initialize ensures the schema exists.
func (l *Ledger) Initialize(ctx context.Context) error {
	return l.store.Initialize(ctx)
}

// =============================================================================
// INVENTORY
// =============================================================================

// ListInventory returns items newest first. A zero query returns every item.
func (l *Ledger) ListInventory(ctx context.Context, q InventoryQuery) (InventoryPage, error) {
	if !q.Status.Valid() {
		return InventoryPage{}, invalid("status", "unknown status "+string(q.Status))
	}
	if q.Page < 0 || q.PageSize < 0 {
		return InventoryPage{}, invalid("page", "must not be negative")
	}

	items, err := l.store.ListItems(ctx, l.filter(q.Status, q.Search))
	if err != nil {
		return InventoryPage{}, err
	}

	page := InventoryPage{Items: items, Total: len(items)}
	if q.Page > 0 && q.PageSize > 0 {
		start := (q.Page - 1) * q.PageSize
		if start >= len(items) {
			page.Items = []InventoryItem{}
		} else {
			end := min(start+q.PageSize, len(items))
			page.Items = items[start:end]
		}
	}
	return page, nil
}

// GetItem returns one item by id.
func (l *Ledger) GetItem(ctx context.Context, id ItemID) (InventoryItem, error) {
	item, err := l.store.GetItem(ctx, id)
	if err != nil {
		return InventoryItem{}, err
	}
	if item == nil {
		return InventoryItem{}, ErrItemNotFound
	}
	return *item, nil
}

// AddItem validates and inserts a new item.
func (l *Ledger) AddItem(ctx context.Context, fields ItemFields) (MutationResult, error) {
	fields, err := normalizeFields(fields)
	if err != nil {
		return MutationResult{}, err
	}
	return l.store.InsertItem(ctx, fields, l.clock.Now())
}

// UpdateItem validates and replaces every mutable field of the item.
func (l *Ledger) UpdateItem(ctx context.Context, id ItemID, fields ItemFields) (MutationResult, error) {
	fields, err := normalizeFields(fields)
	if err != nil {
		return MutationResult{}, err
	}
	return l.store.UpdateItem(ctx, id, fields)
}

// DeleteItem removes the item. Sales referencing it are kept.
func (l *Ledger) DeleteItem(ctx context.Context, id ItemID) (MutationResult, error) {
	return l.store.DeleteItem(ctx, id)
}

// =============================================================================
// SALES / RESET
// =============================================================================

// ListSales returns every sale, newest first.
func (l *Ledger) ListSales(ctx context.Context) ([]SaleTransaction, error) {
	return l.store.ListSales(ctx)
}

// ClearAll deletes all items and sales and resets id assignment.
// Authorization is the caller's responsibility.
func (l *Ledger) ClearAll(ctx context.Context) error {
	return l.store.ClearAll(ctx)
}

func (l *Ledger) filter(status StockStatus, search string) ItemFilter {
	today, horizon := ExpiryWindow(l.clock.Now())
	return ItemFilter{
		Status:  status,
		Today:   today,
		Horizon: horizon,
		Search:  strings.TrimSpace(search),
	}
}

// normalizeFields trims text fields and enforces the add/update invariants.
func normalizeFields(f ItemFields) (ItemFields, error) {
	f.ItemName = strings.TrimSpace(f.ItemName)
	f.BatchNo = strings.TrimSpace(f.BatchNo)
	f.ExpiryDate = strings.TrimSpace(f.ExpiryDate)

	if f.ItemName == "" {
		return f, invalid("item_name", "is required")
	}
	if f.ExpiryDate != "" {
		if _, err := time.Parse(DateLayout, f.ExpiryDate); err != nil {
			return f, invalid("expiry_date", "must be YYYY-MM-DD")
		}
	}
	return f, checkPrices(f)
}

// checkPrices rejects negative money fields.
func checkPrices(f ItemFields) error {
	if f.MRP.IsNegative() {
		return invalid("mrp", "must not be negative")
	}
	if f.PurchasePrice.IsNegative() {
		return invalid("purchase_price", "must not be negative")
	}
	if f.NetPrice.IsNegative() {
		return invalid("net_price", "must not be negative")
	}
	return nil
}
