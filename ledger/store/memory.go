// Package store provides Store implementations.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/medstock/inventory-engine/ledger"
	"github.com/shopspring/decimal"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is a ledger.TxStore kept in maps. WithTx snapshots the state and
// restores it when fn fails, giving the same all-or-nothing behaviour as the
// SQLite store.
type Memory struct {
	mu    sync.RWMutex
	state memState

	// FailOn, when set, is consulted before every write. A non-nil return
	// aborts that write. Tests use it to inject failures mid-transaction.
	FailOn func(op string) error
}

type memState struct {
	items      map[ledger.ItemID]ledger.InventoryItem
	sales      []ledger.SaleTransaction
	nextItemID ledger.ItemID
	nextSaleID ledger.SaleID
}

var errNameRequired = errors.New("NOT NULL constraint failed: inventory.item_name")

func NewMemory() *Memory {
	m := &Memory{}
	m.state = freshState()
	return m
}

func freshState() memState {
	return memState{
		items:      make(map[ledger.ItemID]ledger.InventoryItem),
		nextItemID: 1,
		nextSaleID: 1,
	}
}

func (s memState) clone() memState {
	c := memState{
		items:      make(map[ledger.ItemID]ledger.InventoryItem, len(s.items)),
		sales:      append([]ledger.SaleTransaction(nil), s.sales...),
		nextItemID: s.nextItemID,
		nextSaleID: s.nextSaleID,
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	return c
}

// Initialize is a no-op; the maps exist from construction.
func (m *Memory) Initialize(_ context.Context) error { return nil }

// WithTx runs fn against the store and rolls the state back if fn fails.
func (m *Memory) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(&memTx{m: m}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

func (m *Memory) ListItems(_ context.Context, filter ledger.ItemFilter) ([]ledger.InventoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(filter), nil
}

func (m *Memory) CountItems(_ context.Context, filter ledger.ItemFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.listLocked(filter)), nil
}

func (m *Memory) GetItem(_ context.Context, id ledger.ItemID) (*ledger.InventoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLocked(id), nil
}

func (m *Memory) ListSales(_ context.Context) ([]ledger.SaleTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.salesLocked(), nil
}

func (m *Memory) SumSales(_ context.Context, from, to time.Time) (ledger.SalesTotals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sumLocked(from, to), nil
}

func (m *Memory) listLocked(filter ledger.ItemFilter) []ledger.InventoryItem {
	items := make([]ledger.InventoryItem, 0, len(m.state.items))
	for _, it := range m.state.items {
		if filter.Matches(it) {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items
}

func (m *Memory) getLocked(id ledger.ItemID) *ledger.InventoryItem {
	it, ok := m.state.items[id]
	if !ok {
		return nil
	}
	return &it
}

func (m *Memory) salesLocked() []ledger.SaleTransaction {
	sales := append([]ledger.SaleTransaction(nil), m.state.sales...)
	sort.SliceStable(sales, func(i, j int) bool {
		if !sales[i].SaleDate.Equal(sales[j].SaleDate) {
			return sales[i].SaleDate.After(sales[j].SaleDate)
		}
		return sales[i].ID > sales[j].ID
	})
	return sales
}

func (m *Memory) sumLocked(from, to time.Time) ledger.SalesTotals {
	totals := ledger.SalesTotals{Profit: decimal.Zero, Revenue: decimal.Zero}
	for _, s := range m.state.sales {
		if !s.SaleDate.Before(from) && s.SaleDate.Before(to) {
			totals.Profit = totals.Profit.Add(s.Profit)
			totals.Revenue = totals.Revenue.Add(s.TotalAmount)
		}
	}
	return totals
}

// =============================================================================
// WRITES
// =============================================================================

func (m *Memory) InsertItem(_ context.Context, fields ledger.ItemFields, createdAt time.Time) (ledger.MutationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(fields, createdAt)
}

// InsertItems adds multiple items atomically.
func (m *Memory) InsertItems(_ context.Context, rows []ledger.ItemFields, createdAt time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	for _, f := range rows {
		if _, err := m.insertLocked(f, createdAt); err != nil {
			m.state = snapshot
			return 0, err
		}
	}
	return int64(len(rows)), nil
}

func (m *Memory) UpdateItem(_ context.Context, id ledger.ItemID, fields ledger.ItemFields) (ledger.MutationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateLocked(id, fields)
}

func (m *Memory) DeleteItem(_ context.Context, id ledger.ItemID) (ledger.MutationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked(id)
}

func (m *Memory) AdjustStock(_ context.Context, id ledger.ItemID, delta int64) (ledger.MutationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adjustLocked(id, delta)
}

func (m *Memory) InsertSale(_ context.Context, sale ledger.SaleTransaction) (ledger.MutationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertSaleLocked(sale)
}

// ClearAll drops everything and restarts both id sequences at 1.
func (m *Memory) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("clear_all"); err != nil {
		return err
	}
	m.state = freshState()
	return nil
}

func (m *Memory) fail(op string) error {
	if m.FailOn == nil {
		return nil
	}
	return m.FailOn(op)
}

func (m *Memory) insertLocked(f ledger.ItemFields, createdAt time.Time) (ledger.MutationResult, error) {
	if err := m.fail("insert_item"); err != nil {
		return ledger.MutationResult{}, err
	}
	if f.ItemName == "" {
		return ledger.MutationResult{}, errNameRequired
	}
	id := m.state.nextItemID
	m.state.nextItemID++
	m.state.items[id] = ledger.InventoryItem{
		ID:            id,
		ItemName:      f.ItemName,
		BatchNo:       f.BatchNo,
		ExpiryDate:    f.ExpiryDate,
		MRP:           f.MRP,
		PurchasePrice: f.PurchasePrice,
		NetPrice:      f.NetPrice,
		StockQuantity: f.StockQuantity,
		CreatedAt:     createdAt.UTC().Truncate(time.Millisecond),
	}
	return ledger.MutationResult{RowsAffected: 1, LastInsertID: int64(id)}, nil
}

func (m *Memory) updateLocked(id ledger.ItemID, f ledger.ItemFields) (ledger.MutationResult, error) {
	if err := m.fail("update_item"); err != nil {
		return ledger.MutationResult{}, err
	}
	it, ok := m.state.items[id]
	if !ok {
		return ledger.MutationResult{}, nil
	}
	it.ItemName = f.ItemName
	it.BatchNo = f.BatchNo
	it.ExpiryDate = f.ExpiryDate
	it.MRP = f.MRP
	it.PurchasePrice = f.PurchasePrice
	it.NetPrice = f.NetPrice
	it.StockQuantity = f.StockQuantity
	m.state.items[id] = it
	return ledger.MutationResult{RowsAffected: 1}, nil
}

func (m *Memory) deleteLocked(id ledger.ItemID) (ledger.MutationResult, error) {
	if err := m.fail("delete_item"); err != nil {
		return ledger.MutationResult{}, err
	}
	if _, ok := m.state.items[id]; !ok {
		return ledger.MutationResult{}, nil
	}
	delete(m.state.items, id)
	return ledger.MutationResult{RowsAffected: 1}, nil
}

func (m *Memory) adjustLocked(id ledger.ItemID, delta int64) (ledger.MutationResult, error) {
	if err := m.fail("adjust_stock"); err != nil {
		return ledger.MutationResult{}, err
	}
	it, ok := m.state.items[id]
	if !ok {
		return ledger.MutationResult{}, nil
	}
	it.StockQuantity += delta
	m.state.items[id] = it
	return ledger.MutationResult{RowsAffected: 1}, nil
}

func (m *Memory) insertSaleLocked(sale ledger.SaleTransaction) (ledger.MutationResult, error) {
	if err := m.fail("insert_sale"); err != nil {
		return ledger.MutationResult{}, err
	}
	sale.ID = m.state.nextSaleID
	m.state.nextSaleID++
	m.state.sales = append(m.state.sales, sale)
	return ledger.MutationResult{RowsAffected: 1, LastInsertID: int64(sale.ID)}, nil
}

// =============================================================================
// TRANSACTION VIEW
// =============================================================================

// memTx is the Store handed to WithTx callbacks. The parent lock is already
// held, so it calls the *Locked helpers directly.
type memTx struct {
	m *Memory
}

func (t *memTx) Initialize(_ context.Context) error { return nil }

func (t *memTx) ListItems(_ context.Context, filter ledger.ItemFilter) ([]ledger.InventoryItem, error) {
	return t.m.listLocked(filter), nil
}

func (t *memTx) CountItems(_ context.Context, filter ledger.ItemFilter) (int, error) {
	return len(t.m.listLocked(filter)), nil
}

func (t *memTx) GetItem(_ context.Context, id ledger.ItemID) (*ledger.InventoryItem, error) {
	return t.m.getLocked(id), nil
}

func (t *memTx) InsertItem(_ context.Context, fields ledger.ItemFields, createdAt time.Time) (ledger.MutationResult, error) {
	return t.m.insertLocked(fields, createdAt)
}

func (t *memTx) InsertItems(_ context.Context, rows []ledger.ItemFields, createdAt time.Time) (int64, error) {
	for _, f := range rows {
		if _, err := t.m.insertLocked(f, createdAt); err != nil {
			return 0, err
		}
	}
	return int64(len(rows)), nil
}

func (t *memTx) UpdateItem(_ context.Context, id ledger.ItemID, fields ledger.ItemFields) (ledger.MutationResult, error) {
	return t.m.updateLocked(id, fields)
}

func (t *memTx) DeleteItem(_ context.Context, id ledger.ItemID) (ledger.MutationResult, error) {
	return t.m.deleteLocked(id)
}

func (t *memTx) AdjustStock(_ context.Context, id ledger.ItemID, delta int64) (ledger.MutationResult, error) {
	return t.m.adjustLocked(id, delta)
}

func (t *memTx) InsertSale(_ context.Context, sale ledger.SaleTransaction) (ledger.MutationResult, error) {
	return t.m.insertSaleLocked(sale)
}

func (t *memTx) ListSales(_ context.Context) ([]ledger.SaleTransaction, error) {
	return t.m.salesLocked(), nil
}

func (t *memTx) SumSales(_ context.Context, from, to time.Time) (ledger.SalesTotals, error) {
	return t.m.sumLocked(from, to), nil
}

func (t *memTx) ClearAll(_ context.Context) error {
	if err := t.m.fail("clear_all"); err != nil {
		return err
	}
	t.m.state = freshState()
	return nil
}

var (
	_ ledger.TxStore = (*Memory)(nil)
	_ ledger.Store   = (*memTx)(nil)
)
