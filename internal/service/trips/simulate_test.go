package trips

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ahmed2300/triptracker/internal/domain/ride"
	"github.com/Ahmed2300/triptracker/internal/service/geo"
)

func TestStepToward(t *testing.T) {
	from := testPickup
	dest := testDestination // two miles north

	t.Run("partial step covers the step distance", func(t *testing.T) {
		next := stepToward(from, dest, 0.5)
		assert.InDelta(t, 0.5, geo.DistanceMiles(from, next), 1e-6)
		assert.InDelta(t, 1.5, geo.DistanceMiles(next, dest), 1e-6)
	})

	t.Run("step past the destination lands on it", func(t *testing.T) {
		next := stepToward(from, dest, 5)
		assert.Equal(t, dest, next)
	})

	t.Run("already there stays there", func(t *testing.T) {
		next := stepToward(dest, dest, 1)
		assert.Equal(t, dest, next)
	})
}

func TestSimulation_DrivesTripToDestination(t *testing.T) {
	svc, _, notifier := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")

	started, err := svc.StartTrip(context.Background(), r.ID, "driver-1", testPickup, true)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusStarted, started.Status)
	assert.True(t, svc.tracker.IsTracking(r.ID.String()))

	// the synthetic driver covers the whole trip, then parks
	assert.Eventually(t, func() bool {
		return !svc.tracker.IsTracking(r.ID.String())
	}, 2*time.Second, 10*time.Millisecond)

	got, err := svc.GetRide(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusStarted, got.Status, "simulation never completes the trip by itself")
	require.NotNil(t, got.CurrentDriverLocation)
	assert.True(t, geo.WithinRadius(*got.CurrentDriverLocation, testDestination, 0.2))
	assert.InDelta(t, 2.0, got.CalculatedMileage, 0.01)
	assert.True(t, notifier.hasEvent("driver_location"))

	// the driver still ends the trip explicitly
	completed, err := svc.EndTrip(context.Background(), r.ID, "driver-1", *got.CurrentDriverLocation)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusCompleted, completed.Status)
}

func TestRealLocationUpdateStopsSimulation(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := requestTestRide(t, svc)
	acceptTestRide(t, svc, r.ID, "driver-1")

	_, err := svc.StartTrip(context.Background(), r.ID, "driver-1", testPickup, true)
	require.NoError(t, err)

	_, err = svc.UpdateLocation(context.Background(), r.ID, "driver-1", milesNorthOfPickup(0.5))
	require.NoError(t, err)

	assert.False(t, svc.tracker.IsTracking(r.ID.String()))
}
