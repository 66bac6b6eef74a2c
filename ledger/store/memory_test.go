package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medstock/inventory-engine/ledger"
	"github.com/medstock/inventory-engine/ledger/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)

func dec(t *testing.T, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestMemory_WithTx_RollsBackOnError(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	_, err := mem.InsertItem(ctx, ledger.ItemFields{ItemName: "Kept", StockQuantity: 4}, created)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = mem.WithTx(ctx, func(tx ledger.Store) error {
		if _, err := tx.InsertItem(ctx, ledger.ItemFields{ItemName: "Dropped"}, created); err != nil {
			return err
		}
		if _, err := tx.AdjustStock(ctx, 1, -4); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	items, err := mem.ListItems(ctx, ledger.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(4), items[0].StockQuantity)

	res, err := mem.InsertItem(ctx, ledger.ItemFields{ItemName: "Next"}, created)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.LastInsertID, "rolled back ids are reused")
}

func TestMemory_InsertItems_Atomic(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	_, err := mem.InsertItems(ctx, []ledger.ItemFields{
		{ItemName: "A"},
		{ItemName: ""},
	}, created)
	require.Error(t, err)

	n, err := mem.CountItems(ctx, ledger.ItemFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemory_SumSales_HalfOpen(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	from := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	for _, at := range []time.Time{from, to.Add(-time.Millisecond), to} {
		_, err := mem.InsertSale(ctx, ledger.SaleTransaction{
			ItemName:    "X",
			Quantity:    1,
			TotalAmount: dec(t, "10"),
			Profit:      dec(t, "1"),
			SaleDate:    at,
		})
		require.NoError(t, err)
	}

	totals, err := mem.SumSales(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, "20", totals.Revenue.String())
	assert.Equal(t, "2", totals.Profit.String())
}
