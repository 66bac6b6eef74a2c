package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/medstock/inventory-engine/ledger"
	"github.com/medstock/inventory-engine/ledger/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// 2025-01-15 + 3 months = 2025-04-15
var today = time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)

func newTestLedger(opts ...ledger.Option) (*ledger.Ledger, *store.Memory) {
	mem := store.NewMemory()
	opts = append([]ledger.Option{ledger.WithClock(ledger.FixedClock(today))}, opts...)
	return ledger.New(mem, opts...), mem
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fields(name, batch, expiry string, stock int64) ledger.ItemFields {
	return ledger.ItemFields{
		ItemName:      name,
		BatchNo:       batch,
		ExpiryDate:    expiry,
		MRP:           dec("50"),
		PurchasePrice: dec("40"),
		NetPrice:      dec("45"),
		StockQuantity: stock,
	}
}

func mustAdd(t *testing.T, l *ledger.Ledger, f ledger.ItemFields) ledger.ItemID {
	t.Helper()
	res, err := l.AddItem(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.RowsAffected)
	return ledger.ItemID(res.LastInsertID)
}

// =============================================================================
// ADD / UPDATE VALIDATION
// =============================================================================

func TestAddItem_AssignsIDAndCreatedAt(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	id := mustAdd(t, l, fields("Paracetamol", "B123", "2025-12-31", 100))
	assert.Equal(t, ledger.ItemID(1), id)

	got, err := l.GetItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", got.ItemName)
	assert.Equal(t, today, got.CreatedAt)
	assert.True(t, got.NetPrice.Equal(dec("45")))
}

func TestAddItem_TrimsText(t *testing.T) {
	l, _ := newTestLedger()

	id := mustAdd(t, l, fields("  Aspirin ", " B9 ", "", 1))

	got, err := l.GetItem(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", got.ItemName)
	assert.Equal(t, "B9", got.BatchNo)
}

func TestAddItem_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ledger.ItemFields)
		field  string
	}{
		{"blank name", func(f *ledger.ItemFields) { f.ItemName = "   " }, "item_name"},
		{"bad expiry", func(f *ledger.ItemFields) { f.ExpiryDate = "31/12/2025" }, "expiry_date"},
		{"negative mrp", func(f *ledger.ItemFields) { f.MRP = dec("-1") }, "mrp"},
		{"negative purchase price", func(f *ledger.ItemFields) { f.PurchasePrice = dec("-0.01") }, "purchase_price"},
		{"negative net price", func(f *ledger.ItemFields) { f.NetPrice = dec("-3") }, "net_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLedger()
			f := fields("Paracetamol", "B1", "2025-12-31", 1)
			tt.mutate(&f)

			_, err := l.AddItem(context.Background(), f)

			require.ErrorIs(t, err, ledger.ErrValidation)
			var ve *ledger.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.True(t, ledger.IsClientError(err))
		})
	}
}

func TestUpdateItem_MissingID_IsSoftNoOp(t *testing.T) {
	l, _ := newTestLedger()

	res, err := l.UpdateItem(context.Background(), 404, fields("Ghost", "", "", 0))

	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RowsAffected)
}

func TestUpdateItem_ValidatesLikeAdd(t *testing.T) {
	l, _ := newTestLedger()
	id := mustAdd(t, l, fields("Paracetamol", "B1", "", 1))

	_, err := l.UpdateItem(context.Background(), id, fields("", "B1", "", 1))
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestDeleteItem_KeepsSales(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	id := mustAdd(t, l, fields("Paracetamol", "B1", "", 10))
	_, err := l.RecordSale(ctx, ledger.SaleRequest{
		ItemID: id, ItemName: "Paracetamol", Quantity: 1,
		SalePrice: dec("50"), PurchasePrice: dec("40"),
	})
	require.NoError(t, err)

	res, err := l.DeleteItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	sales, err := l.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "Paracetamol", sales[0].ItemName)
	assert.Equal(t, id, sales[0].ItemID)
}

func TestGetItem_Missing(t *testing.T) {
	l, _ := newTestLedger()

	_, err := l.GetItem(context.Background(), 7)

	assert.ErrorIs(t, err, ledger.ErrItemNotFound)
	assert.True(t, ledger.IsNotFound(err))
}

// =============================================================================
// LISTING
// =============================================================================

func TestListInventory_SearchStatusAndPaging(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	mustAdd(t, l, fields("Paracetamol", "PCM-1", "2025-01-01", 5))  // expired
	mustAdd(t, l, fields("Amoxicillin", "AMX-1", "2025-02-01", 0))  // expiring, out of stock
	mustAdd(t, l, fields("Cough Syrup", "pcm-2", "2026-01-01", 10)) // batch matches "pcm"
	mustAdd(t, l, fields("Bandage", "", "", 3))

	page, err := l.ListInventory(ctx, ledger.InventoryQuery{Search: "PCM"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = l.ListInventory(ctx, ledger.InventoryQuery{Status: ledger.StatusExpired})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Paracetamol", page.Items[0].ItemName)

	page, err = l.ListInventory(ctx, ledger.InventoryQuery{Status: ledger.StatusOutOfStock})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Amoxicillin", page.Items[0].ItemName)

	page, err = l.ListInventory(ctx, ledger.InventoryQuery{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ledger.ItemID(1), page.Items[0].ID, "oldest item lands on the last page")

	page, err = l.ListInventory(ctx, ledger.InventoryQuery{Page: 9, PageSize: 3})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 4, page.Total)
}

func TestListInventory_RejectsUnknownStatus(t *testing.T) {
	l, _ := newTestLedger()

	_, err := l.ListInventory(context.Background(), ledger.InventoryQuery{Status: "stale"})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

// =============================================================================
// RESET
// =============================================================================

func TestClearAll_ResetsIdentifiers(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	id := mustAdd(t, l, fields("A", "", "", 5))
	mustAdd(t, l, fields("B", "", "", 5))
	_, err := l.RecordSale(ctx, ledger.SaleRequest{
		ItemID: id, ItemName: "A", Quantity: 1, SalePrice: dec("1"), PurchasePrice: dec("0"),
	})
	require.NoError(t, err)

	require.NoError(t, l.ClearAll(ctx))

	page, err := l.ListInventory(ctx, ledger.InventoryQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	sales, err := l.ListSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)

	assert.Equal(t, ledger.ItemID(1), mustAdd(t, l, fields("C", "", "", 1)))
	sale, err := l.RecordSale(ctx, ledger.SaleRequest{
		ItemID: 1, ItemName: "C", Quantity: 1, SalePrice: dec("1"), PurchasePrice: dec("0"),
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.SaleID(1), sale.ID)
}
