package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/Ahmed2300/triptracker/pkg/logger"
)

// TickFunc runs once per tracking interval. Returning false stops the loop.
type TickFunc func(ctx context.Context) bool

// Tracker runs one ticker goroutine per trip that needs server-driven
// progress. It backs the simulated-mileage fallback: when a driver's device
// can't report its position, the trip still advances on the same interval
// the real location polling uses.
type Tracker struct {
	interval time.Duration
	logger   *logger.Logger

	mu    sync.Mutex
	stops map[string]chan struct{}
	wg    sync.WaitGroup
}

// NewTracker creates a tracker with the given tick interval
func NewTracker(interval time.Duration, log *logger.Logger) *Tracker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Tracker{
		interval: interval,
		logger:   log,
		stops:    make(map[string]chan struct{}),
	}
}

// Interval returns the tick interval
func (t *Tracker) Interval() time.Duration {
	return t.interval
}

// Start begins ticking for a ride. A second Start for the same ride
// replaces the previous loop.
func (t *Tracker) Start(rideID string, tick TickFunc) {
	t.mu.Lock()
	if stop, ok := t.stops[rideID]; ok {
		close(stop)
	}
	stop := make(chan struct{})
	t.stops[rideID] = stop
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run(rideID, stop, tick)

	t.logger.Info("Tracking started",
		logger.String("ride_id", rideID),
		logger.Float64("interval_seconds", t.interval.Seconds()),
	)
}

// Stop halts the ticker for a ride, if one is running
func (t *Tracker) Stop(rideID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if stop, ok := t.stops[rideID]; ok {
		close(stop)
		delete(t.stops, rideID)
	}
}

// IsTracking reports whether a ride has an active ticker
func (t *Tracker) IsTracking(rideID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.stops[rideID]
	return ok
}

// Shutdown stops every ticker and waits for the loops to exit
func (t *Tracker) Shutdown() {
	t.mu.Lock()
	for id, stop := range t.stops {
		close(stop)
		delete(t.stops, id)
	}
	t.mu.Unlock()
	t.wg.Wait()
}

func (t *Tracker) run(rideID string, stop chan struct{}, tick TickFunc) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), t.interval)
			keepGoing := tick(ctx)
			cancel()
			if !keepGoing {
				t.mu.Lock()
				if cur, ok := t.stops[rideID]; ok && cur == stop {
					delete(t.stops, rideID)
				}
				t.mu.Unlock()
				t.logger.Info("Tracking finished", logger.String("ride_id", rideID))
				return
			}
		}
	}
}
