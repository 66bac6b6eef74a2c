/*
monitor.go - Background expiry monitor

PURPOSE:
  Periodically counts expired and expiring-soon batches and logs a warning
  when either is non-zero, so an operator sees stock that should be pulled
  without opening the dashboard.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Checks once immediately on start
  - Reads counts through the same DashboardStats the dashboard uses

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether the monitor is active (default: true)

USAGE:
  monitor := NewExpiryMonitor(ledger, log)
  monitor.Start()
  // ... later
  monitor.Stop()

SEE ALSO:
  - ledger/stats.go: DashboardStats
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/medstock/inventory-engine/ledger"
	"github.com/medstock/inventory-engine/logger"
)

// StatsSource provides the dashboard counters.
type StatsSource interface {
	DashboardStats(ctx context.Context) (ledger.DashboardStats, error)
}

// ExpiryMonitor periodically reports expired and expiring stock.
type ExpiryMonitor struct {
	Source        StatsSource
	Log           *logger.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	last    ledger.DashboardStats
	lastRun time.Time
}

// NewExpiryMonitor creates a monitor with a one hour interval.
func NewExpiryMonitor(source StatsSource, log *logger.Logger) *ExpiryMonitor {
	return &ExpiryMonitor{
		Source:        source,
		Log:           log.Component("expiry_monitor"),
		CheckInterval: time.Hour,
		Enabled:       true,
	}
}

// Start begins the monitor.
func (m *ExpiryMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Enabled || m.CheckInterval <= 0 {
		m.Log.Info().Msg("expiry monitor disabled")
		return
	}
	if m.ticker != nil {
		return
	}

	m.ticker = time.NewTicker(m.CheckInterval)
	m.stop = make(chan struct{})
	m.wg.Add(1)

	go m.run(m.ticker, m.stop)

	m.Log.Info().Dur("interval", m.CheckInterval).Msg("expiry monitor started")
}

// Stop stops the monitor and waits for an in-flight check.
func (m *ExpiryMonitor) Stop() {
	m.mu.Lock()
	ticker, stop := m.ticker, m.stop
	m.ticker, m.stop = nil, nil
	m.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
		close(stop)
		m.wg.Wait()
		m.Log.Info().Msg("expiry monitor stopped")
	}
}

func (m *ExpiryMonitor) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer m.wg.Done()

	m.check()

	for {
		select {
		case <-ticker.C:
			m.check()
		case <-stop:
			return
		}
	}
}

func (m *ExpiryMonitor) check() {
	if _, err := m.RunNow(context.Background()); err != nil {
		m.Log.Error().Err(err).Msg("expiry check failed")
	}
}

// RunNow performs one check and returns the counters it saw.
func (m *ExpiryMonitor) RunNow(ctx context.Context) (ledger.DashboardStats, error) {
	stats, err := m.Source.DashboardStats(ctx)
	if err != nil {
		return ledger.DashboardStats{}, err
	}

	m.mu.Lock()
	m.last = stats
	m.lastRun = time.Now()
	m.mu.Unlock()

	if stats.Expired > 0 || stats.ExpiringSoon > 0 {
		m.Log.Warn().
			Int("expired", stats.Expired).
			Int("expiring_soon", stats.ExpiringSoon).
			Msg("inventory has expired or expiring batches")
	} else {
		m.Log.Debug().Msg("no expired or expiring batches")
	}
	return stats, nil
}

// Last returns the result of the most recent check and when it ran.
// The time is zero before the first check.
func (m *ExpiryMonitor) Last() (ledger.DashboardStats, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.lastRun
}
