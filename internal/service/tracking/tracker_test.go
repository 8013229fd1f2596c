package tracking

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmed2300/triptracker/pkg/logger"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	require.NoError(t, err)
	return NewTracker(10*time.Millisecond, log)
}

func TestTracker_TicksUntilStopped(t *testing.T) {
	tr := newTestTracker(t)
	defer tr.Shutdown()

	var ticks int64
	tr.Start("ride-1", func(ctx context.Context) bool {
		atomic.AddInt64(&ticks, 1)
		return true
	})

	assert.True(t, tr.IsTracking("ride-1"))

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&ticks) >= 3
	}, time.Second, 5*time.Millisecond)

	tr.Stop("ride-1")
	assert.False(t, tr.IsTracking("ride-1"))
}

func TestTracker_TickReturningFalseStopsLoop(t *testing.T) {
	tr := newTestTracker(t)
	defer tr.Shutdown()

	var ticks int64
	tr.Start("ride-2", func(ctx context.Context) bool {
		atomic.AddInt64(&ticks, 1)
		return false
	})

	assert.Eventually(t, func() bool {
		return !tr.IsTracking("ride-2")
	}, time.Second, 5*time.Millisecond)

	// the loop must not tick again after declining to continue
	final := atomic.LoadInt64(&ticks)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, final, atomic.LoadInt64(&ticks))
}

func TestTracker_RestartReplacesLoop(t *testing.T) {
	tr := newTestTracker(t)
	defer tr.Shutdown()

	var first, second int64
	tr.Start("ride-3", func(ctx context.Context) bool {
		atomic.AddInt64(&first, 1)
		return true
	})
	tr.Start("ride-3", func(ctx context.Context) bool {
		atomic.AddInt64(&second, 1)
		return true
	})

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&second) >= 2
	}, time.Second, 5*time.Millisecond)

	tr.Stop("ride-3")

	// the replaced loop stops near-immediately, so it stays well behind
	assert.Less(t, atomic.LoadInt64(&first), atomic.LoadInt64(&second)+2)
}

func TestTracker_StopUnknownRideIsNoop(t *testing.T) {
	tr := newTestTracker(t)
	defer tr.Shutdown()

	assert.NotPanics(t, func() { tr.Stop("never-started") })
	assert.False(t, tr.IsTracking("never-started"))
}

func TestTracker_ShutdownStopsEverything(t *testing.T) {
	tr := newTestTracker(t)

	for _, id := range []string{"a", "b", "c"} {
		tr.Start(id, func(ctx context.Context) bool { return true })
	}

	tr.Shutdown()

	for _, id := range []string{"a", "b", "c"} {
		assert.False(t, tr.IsTracking(id))
	}
}

func TestTracker_DefaultInterval(t *testing.T) {
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	require.NoError(t, err)

	tr := NewTracker(0, log)
	assert.Equal(t, 5*time.Second, tr.Interval())
}
