package trips

import (
	"context"

	"github.com/Ahmed2300/triptracker/internal/domain/ride"
	"github.com/Ahmed2300/triptracker/internal/service/geo"
	"github.com/Ahmed2300/triptracker/pkg/logger"
	"github.com/google/uuid"
)

// startSimulation drives a synthetic position toward the destination on the
// tracking interval. It is the fallback for drivers whose device cannot
// report a position: the trip still accrues mileage instead of failing.
// The simulation stops at the destination, when a real location update
// arrives, or when the trip leaves the started state; the driver still has
// to end the trip explicitly.
func (s *Service) startSimulation(rideID uuid.UUID) {
	stepMiles := s.config.SimulatedSpeedMPH * s.tracker.Interval().Hours()

	s.tracker.Start(rideID.String(), func(ctx context.Context) bool {
		r, err := s.repo.GetByID(ctx, rideID)
		if err != nil || !r.CanComplete() || r.StartTripLocation == nil {
			return false
		}

		from := *r.StartTripLocation
		if r.CurrentDriverLocation != nil {
			from = *r.CurrentDriverLocation
		}

		next := stepToward(from, r.DestinationLocation, stepMiles)
		mileage := geo.DistanceMiles(*r.StartTripLocation, next)

		updated, err := s.repo.UpdateProgress(ctx, rideID, next, mileage)
		if err != nil {
			s.logger.Warn("Simulated tick failed",
				logger.String("ride_id", rideID.String()),
				logger.Err(err),
			)
			return false
		}

		s.notifier.RideUpdated("driver_location", updated)

		// park once the synthetic driver reaches the destination
		return !geo.WithinRadius(next, r.DestinationLocation, s.config.ProximityRadiusMiles)
	})
}

// stepToward moves at most stepMiles along the straight line from a point
// to the destination. Linear interpolation is fine at trip scale.
func stepToward(from, dest ride.Location, stepMiles float64) ride.Location {
	remaining := geo.DistanceMiles(from, dest)
	if remaining <= stepMiles || remaining == 0 {
		return dest
	}

	f := stepMiles / remaining
	return ride.Location{
		Latitude:  from.Latitude + (dest.Latitude-from.Latitude)*f,
		Longitude: from.Longitude + (dest.Longitude-from.Longitude)*f,
	}
}
