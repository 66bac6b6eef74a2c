package api

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/medstock/inventory-engine/ledger"
	"github.com/medstock/inventory-engine/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls atomic.Int32
	stats ledger.DashboardStats
	err   error
}

func (s *countingSource) DashboardStats(context.Context) (ledger.DashboardStats, error) {
	s.calls.Add(1)
	return s.stats, s.err
}

func TestExpiryMonitor_RunNowLogsWarning(t *testing.T) {
	// GIVEN: two expired and one expiring batch
	var buf bytes.Buffer
	source := &countingSource{stats: ledger.DashboardStats{Total: 5, Expired: 2, ExpiringSoon: 1}}
	m := NewExpiryMonitor(source, logger.NewWithWriter(logger.Config{Env: "production", Level: "info"}, &buf))

	// WHEN
	stats, err := m.RunNow(context.Background())

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Expired)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"expired":2`)
	assert.Contains(t, buf.String(), `"expiring_soon":1`)
	assert.Contains(t, buf.String(), `"component":"expiry_monitor"`)

	last, at := m.Last()
	assert.Equal(t, source.stats, last)
	assert.False(t, at.IsZero())
}

func TestExpiryMonitor_RunNowError(t *testing.T) {
	source := &countingSource{err: errors.New("disk gone")}
	m := NewExpiryMonitor(source, logger.Nop())

	_, err := m.RunNow(context.Background())

	assert.Error(t, err)
	_, at := m.Last()
	assert.True(t, at.IsZero())
}

func TestExpiryMonitor_StartChecksImmediatelyAndStops(t *testing.T) {
	source := &countingSource{}
	m := NewExpiryMonitor(source, logger.Nop())
	m.CheckInterval = 10 * time.Millisecond

	m.Start()
	assert.Eventually(t, func() bool { return source.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	m.Stop()

	calls := source.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, source.calls.Load(), "no checks after Stop")

	m.Stop()
}

func TestExpiryMonitor_RestartAfterStop(t *testing.T) {
	// GIVEN: a monitor that was started and stopped once
	source := &countingSource{}
	m := NewExpiryMonitor(source, logger.Nop())
	m.CheckInterval = 10 * time.Millisecond

	m.Start()
	assert.Eventually(t, func() bool { return source.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	m.Stop()
	stopped := source.calls.Load()

	// WHEN: starting it again
	m.Start()

	// THEN: checks resume and a second Stop does not panic
	assert.Eventually(t, func() bool { return source.calls.Load() > stopped+1 }, time.Second, 5*time.Millisecond)
	assert.NotPanics(t, m.Stop)

	calls := source.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, source.calls.Load(), "no checks after Stop")
}

func TestExpiryMonitor_Disabled(t *testing.T) {
	source := &countingSource{}
	m := NewExpiryMonitor(source, logger.Nop())
	m.CheckInterval = 0

	m.Start()
	m.Stop()

	assert.Equal(t, int32(0), source.calls.Load())
}
