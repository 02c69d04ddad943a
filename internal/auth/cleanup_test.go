package auth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
)

type countingCleaner struct {
	calls atomic.Int32
}

func (c *countingCleaner) ScanAndClean(_ context.Context) int {
	c.calls.Add(1)
	return 3
}

func TestStartSessionCleanup(t *testing.T) {
	cleaner := &countingCleaner{}
	metricsManager := metrics.NewTestManager()

	c, err := StartSessionCleanup(context.Background(), cleaner, "@every 1s", metricsManager)
	require.NoError(t, err)
	defer c.Stop()

	require.Eventually(t, func() bool {
		return cleaner.calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(metricsManager.CounterSessionsCleaned), float64(3))
}

func TestStartSessionCleanup_InvalidSchedule(t *testing.T) {
	c, err := StartSessionCleanup(context.Background(), &countingCleaner{}, "every now and then", nil)
	require.Error(t, err)
	assert.Nil(t, c)
}
