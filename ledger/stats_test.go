package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/medstock/inventory-engine/ledger"
	"github.com/medstock/inventory-engine/ledger/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settableClock struct{ now time.Time }

func (c *settableClock) Now() time.Time { return c.now }

func newClockedLedger() (*ledger.Ledger, *settableClock) {
	clock := &settableClock{now: today}
	return ledger.New(store.NewMemory(), ledger.WithClock(clock)), clock
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestDashboardStats_Classification(t *testing.T) {
	// GIVEN: today = 2025-01-15, horizon = 2025-04-15
	l, _ := newTestLedger()
	ctx := context.Background()

	mustAdd(t, l, fields("Yesterday", "", "2025-01-14", 0)) // expired + out of stock
	mustAdd(t, l, fields("Today", "", "2025-01-15", 1))     // expiring (inclusive)
	mustAdd(t, l, fields("Horizon", "", "2025-04-15", 1))   // expiring (inclusive)
	mustAdd(t, l, fields("After", "", "2025-04-16", 1))     // neither
	mustAdd(t, l, fields("Unknown", "", "", 0))             // out of stock only

	// WHEN
	stats, err := l.DashboardStats(ctx)

	// THEN: categories overlap and an empty expiry is never expired
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 2, stats.ExpiringSoon)
	assert.Equal(t, 2, stats.OutOfStock)
}

func TestDashboardStats_NegativeStockIsNotOutOfStock(t *testing.T) {
	l, _ := newTestLedger()
	ctx := context.Background()

	id := mustAdd(t, l, fields("Paracetamol", "", "", 1))
	_, err := l.RecordSale(ctx, saleOf(id, 2, "1", "1"))
	require.NoError(t, err)

	stats, err := l.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.OutOfStock)
}

func TestDashboardStats_Empty(t *testing.T) {
	l, _ := newTestLedger()

	stats, err := l.DashboardStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ledger.DashboardStats{}, stats)
}

// =============================================================================
// SALES
// =============================================================================

func TestSalesStats_Buckets(t *testing.T) {
	l, clock := newClockedLedger()
	ctx := context.Background()
	id := mustAdd(t, l, fields("Paracetamol", "", "", 100))

	sellAt := func(at time.Time, qty int64) {
		clock.now = at
		_, err := l.RecordSale(ctx, saleOf(id, qty, "12.50", "10.00"))
		require.NoError(t, err)
	}

	sellAt(time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC), 1) // last year
	sellAt(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), 2)      // this year, this month
	sellAt(time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), 4)     // today, at midnight

	clock.now = today
	stats, err := l.SalesStats(ctx)
	require.NoError(t, err)

	assert.True(t, stats.Daily.Profit.Equal(dec("10")), stats.Daily.Profit.String())
	assert.True(t, stats.Daily.Revenue.Equal(dec("50")))
	assert.True(t, stats.Monthly.Profit.Equal(dec("15")))
	assert.True(t, stats.Monthly.Revenue.Equal(dec("75")))
	assert.True(t, stats.Yearly.Profit.Equal(dec("15")))
	assert.True(t, stats.Yearly.Revenue.Equal(dec("75")))
}

func TestSalesStats_UsesClockLocation(t *testing.T) {
	// GIVEN: a clock in UTC+05:30
	ist := time.FixedZone("IST", 5*3600+1800)
	l, clock := newClockedLedger()
	ctx := context.Background()
	id := mustAdd(t, l, fields("Paracetamol", "", "", 100))

	// 00:30 local on Jan 15 is still Jan 14 in UTC
	clock.now = time.Date(2025, time.January, 15, 0, 30, 0, 0, ist)
	_, err := l.RecordSale(ctx, saleOf(id, 1, "5", "3"))
	require.NoError(t, err)

	// WHEN: stats are read later the same local day
	clock.now = time.Date(2025, time.January, 15, 18, 0, 0, 0, ist)
	stats, err := l.SalesStats(ctx)

	// THEN
	require.NoError(t, err)
	assert.True(t, stats.Daily.Profit.Equal(dec("2")))
	assert.True(t, stats.Daily.Revenue.Equal(dec("5")))
}

func TestSalesStats_NoSales_ZeroNotMissing(t *testing.T) {
	l, _ := newTestLedger()

	stats, err := l.SalesStats(context.Background())

	require.NoError(t, err)
	assert.True(t, stats.Daily.Profit.IsZero())
	assert.True(t, stats.Monthly.Revenue.IsZero())
	assert.True(t, stats.Yearly.Profit.IsZero())
}

// =============================================================================
// CALENDAR HELPERS
// =============================================================================

func TestExpiryWindow_ClampsMonthEnd(t *testing.T) {
	today, horizon := ledger.ExpiryWindow(time.Date(2025, time.November, 30, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, "2025-11-30", today)
	assert.Equal(t, "2026-03-02", horizon, "Go normalizes Feb 30 to Mar 2")
}

func TestExpiryWindow_AtLeastNinetyDays(t *testing.T) {
	now := time.Date(2025, time.February, 28, 9, 0, 0, 0, time.UTC)

	_, horizon := ledger.ExpiryWindow(now)

	assert.Equal(t, "2025-05-29", horizon, "May 28 is only 89 days ahead")
	assert.Equal(t, now.AddDate(0, 0, 90).Format(ledger.DateLayout), horizon)
}

func TestMonthOf_HalfOpen(t *testing.T) {
	p := ledger.MonthOf(time.Date(2025, time.February, 10, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), p.End)
}
