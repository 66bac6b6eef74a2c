package ledger

import (
	"context"
	"fmt"
)

// DashboardStats counts items by expiry and stock classification.
//
//   - Expired: non-empty expiry_date strictly before today
//   - ExpiringSoon: expiry_date within [today, today + 3 months], both inclusive
//   - OutOfStock: stock_quantity exactly zero (NULL counts as zero)
//
// The categories overlap freely. Values are computed on every call.
func (l *Ledger) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats

	counters := []struct {
		status StockStatus
		dst    *int
	}{
		{StatusAll, &stats.Total},
		{StatusExpired, &stats.Expired},
		{StatusExpiringSoon, &stats.ExpiringSoon},
		{StatusOutOfStock, &stats.OutOfStock},
	}

	for _, c := range counters {
		n, err := l.store.CountItems(ctx, l.filter(c.status, ""))
		if err != nil {
			return DashboardStats{}, fmt.Errorf("count %s: %w", c.status, err)
		}
		*c.dst = n
	}
	return stats, nil
}

// SalesStats sums profit and revenue over the local calendar day, month and
// year containing now. Empty buckets are zero, never missing.
func (l *Ledger) SalesStats(ctx context.Context) (SalesStats, error) {
	now := l.clock.Now()

	var stats SalesStats
	buckets := []struct {
		name   string
		period Period
		dst    *SalesTotals
	}{
		{"daily", DayOf(now), &stats.Daily},
		{"monthly", MonthOf(now), &stats.Monthly},
		{"yearly", YearOf(now), &stats.Yearly},
	}

	for _, b := range buckets {
		totals, err := l.store.SumSales(ctx, b.period.Start, b.period.End)
		if err != nil {
			return SalesStats{}, fmt.Errorf("sum %s sales: %w", b.name, err)
		}
		*b.dst = totals
	}
	return stats, nil
}
