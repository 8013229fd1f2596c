package trips

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ahmed2300/triptracker/internal/domain/ride"
	"github.com/Ahmed2300/triptracker/internal/service/geo"
	"github.com/Ahmed2300/triptracker/internal/service/pricing"
	"github.com/Ahmed2300/triptracker/internal/service/tracking"
	"github.com/Ahmed2300/triptracker/pkg/logger"
	"github.com/Ahmed2300/triptracker/pkg/monitoring"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Proximity gate failures. The gate uses a single reported position; there
// is no retry or GPS-noise filtering.
var (
	ErrTooFarFromPickup      = errors.New("driver is not within pickup range")
	ErrTooFarFromDestination = errors.New("driver is not within destination range")
	ErrBadCoordinates        = errors.New("coordinates out of range")
)

const (
	pendingGeoKey = "rides:pending:pickups"
	driverRideKey = "driver:%s:current_ride"
)

// Config holds trip lifecycle configuration
type Config struct {
	ProximityRadiusMiles float64
	GeohashPrecision     uint
	SimulatedSpeedMPH    float64
}

// Service owns the ride lifecycle: pending -> accepted -> started ->
// completed, with the accepted -> pending cancellation path. All status
// transitions in the system go through here.
type Service struct {
	repo     ride.Repository
	redis    *redis.Client
	pricing  *pricing.Calculator
	tracker  *tracking.Tracker
	notifier Notifier
	monitor  *monitoring.NewRelicApp
	logger   *logger.Logger
	config   Config
}

// NewService creates the trip lifecycle service. redis and monitor may be
// nil; the fast-path index and APM events are skipped when they are.
func NewService(repo ride.Repository, redisClient *redis.Client, calc *pricing.Calculator,
	tracker *tracking.Tracker, notifier Notifier, monitor *monitoring.NewRelicApp,
	log *logger.Logger, cfg Config) *Service {

	if cfg.ProximityRadiusMiles <= 0 {
		cfg.ProximityRadiusMiles = geo.DefaultProximityRadiusMiles
	}
	if cfg.GeohashPrecision == 0 {
		cfg.GeohashPrecision = 5
	}
	if cfg.SimulatedSpeedMPH <= 0 {
		cfg.SimulatedSpeedMPH = 30
	}

	return &Service{
		repo:     repo,
		redis:    redisClient,
		pricing:  calc,
		tracker:  tracker,
		notifier: notifier,
		monitor:  monitor,
		logger:   log,
		config:   cfg,
	}
}

// RequestInput carries everything the customer supplies when asking for a ride
type RequestInput struct {
	CustomerID             string
	CustomerName           string
	PickupLocation         ride.Location
	DestinationLocation    ride.Location
	PickupAddress          string
	PickupDescription      string
	DestinationAddress     string
	DestinationDescription string
}

// RequestRide creates a pending ride and announces it on the pending feed.
// The price estimate is computed here and locked into the record.
func (s *Service) RequestRide(ctx context.Context, in RequestInput) (*ride.Request, error) {
	if !geo.ValidCoordinates(in.PickupLocation) || !geo.ValidCoordinates(in.DestinationLocation) {
		return nil, ErrBadCoordinates
	}

	distance := geo.DistanceMiles(in.PickupLocation, in.DestinationLocation)
	estimate := s.pricing.EstimatePrice(distance)

	r := &ride.Request{
		ID:                     uuid.New(),
		Status:                 ride.StatusPending,
		CustomerID:             in.CustomerID,
		CustomerName:           in.CustomerName,
		PickupLocation:         in.PickupLocation,
		DestinationLocation:    in.DestinationLocation,
		PickupAddress:          in.PickupAddress,
		PickupDescription:      in.PickupDescription,
		DestinationAddress:     in.DestinationAddress,
		DestinationDescription: in.DestinationDescription,
		PickupGeohash:          geo.RegionHash(in.PickupLocation, s.config.GeohashPrecision),
		EstimatedPrice:         estimate.Total,
		RequestTime:            ride.NowMillis(),
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create ride: %w", err)
	}

	s.indexPendingPickup(ctx, r)
	s.notifier.RideAnnounced(r)
	if s.monitor != nil {
		s.monitor.RecordRideRequested(r.ID.String(), r.EstimatedPrice)
	}

	s.logger.Info("Ride requested",
		logger.String("ride_id", r.ID.String()),
		logger.String("customer_id", r.CustomerID),
		logger.Float64("estimated_price", r.EstimatedPrice),
		logger.String("region", r.PickupGeohash),
	)

	return r, nil
}

// Accept claims a pending ride for a driver. The claim is an optimistic
// conditional write: of two drivers tapping accept at once, exactly one
// wins and the other gets ride.ErrAlreadyClaimed.
func (s *Service) Accept(ctx context.Context, rideID uuid.UUID, driverID, driverName string) (*ride.Request, error) {
	r, err := s.repo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !r.CanAccept() {
		return nil, ride.ErrAlreadyClaimed
	}

	// A driver holds at most one accepted or started ride at a time.
	if active, err := s.repo.GetActiveByDriver(ctx, driverID); err != nil && !errors.Is(err, ride.ErrNotFound) {
		return nil, err
	} else if active != nil {
		return nil, ride.ErrDriverBusy
	}

	if !s.markDriverBusy(ctx, driverID, rideID.String()) {
		return nil, ride.ErrDriverBusy
	}

	claimed, err := s.repo.Claim(ctx, rideID, driverID, driverName, ride.NowMillis())
	if err != nil {
		s.clearDriverBusy(ctx, driverID)
		return nil, err
	}

	s.dropPendingPickup(ctx, rideID)
	s.notifier.RideUpdated("ride_accepted", claimed)
	s.notifier.RideWithdrawn(claimed)
	if s.monitor != nil {
		s.monitor.RecordRideAccepted(rideID.String(), driverID)
	}

	s.logger.Info("Ride accepted",
		logger.String("ride_id", rideID.String()),
		logger.String("driver_id", driverID),
	)

	return claimed, nil
}

// StartTrip begins the trip. The driver must be the one who accepted the
// ride and must be within the proximity radius of the pickup point.
// simulate enables the server-side mileage fallback for drivers without a
// working position source.
func (s *Service) StartTrip(ctx context.Context, rideID uuid.UUID, driverID string, at ride.Location, simulate bool) (*ride.Request, error) {
	if !geo.ValidCoordinates(at) {
		return nil, ErrBadCoordinates
	}

	r, err := s.repo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !r.IsAssignedTo(driverID) {
		return nil, ride.ErrWrongDriver
	}
	if !r.CanStart() {
		return nil, ride.ErrInvalidStatus
	}
	if !geo.WithinRadius(at, r.PickupLocation, s.config.ProximityRadiusMiles) {
		if s.monitor != nil {
			s.monitor.RecordProximityRejection("start")
		}
		return nil, ErrTooFarFromPickup
	}

	started, err := s.repo.Start(ctx, rideID, driverID, at, ride.NowMillis())
	if err != nil {
		return nil, err
	}

	s.notifier.RideUpdated("trip_started", started)
	if s.monitor != nil {
		s.monitor.RecordTripStarted(rideID.String())
	}

	if simulate && s.tracker != nil {
		s.startSimulation(rideID)
	}

	s.logger.Info("Trip started",
		logger.String("ride_id", rideID.String()),
		logger.String("driver_id", driverID),
		logger.Bool("simulated", simulate),
	)

	return started, nil
}

// UpdateLocation records a driver position tick for a started trip and
// recomputes the mileage as the Haversine distance from the trip origin.
// A real position update supersedes any running simulation.
func (s *Service) UpdateLocation(ctx context.Context, rideID uuid.UUID, driverID string, at ride.Location) (*ride.Request, error) {
	if !geo.ValidCoordinates(at) {
		return nil, ErrBadCoordinates
	}

	r, err := s.repo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !r.IsAssignedTo(driverID) {
		return nil, ride.ErrWrongDriver
	}
	if !r.CanComplete() {
		return nil, ride.ErrNotStarted
	}

	if s.tracker != nil {
		s.tracker.Stop(rideID.String())
	}

	mileage := geo.DistanceMiles(*r.StartTripLocation, at)
	updated, err := s.repo.UpdateProgress(ctx, rideID, at, mileage)
	if err != nil {
		return nil, err
	}

	s.notifier.RideUpdated("driver_location", updated)
	if s.monitor != nil {
		s.monitor.RecordLocationUpdate()
	}

	return updated, nil
}

// EndTrip completes a started trip. The driver must be within the
// proximity radius of the destination.
func (s *Service) EndTrip(ctx context.Context, rideID uuid.UUID, driverID string, at ride.Location) (*ride.Request, error) {
	if !geo.ValidCoordinates(at) {
		return nil, ErrBadCoordinates
	}

	r, err := s.repo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !r.IsAssignedTo(driverID) {
		return nil, ride.ErrWrongDriver
	}
	if !r.CanComplete() {
		return nil, ride.ErrInvalidStatus
	}
	if !geo.WithinRadius(at, r.DestinationLocation, s.config.ProximityRadiusMiles) {
		if s.monitor != nil {
			s.monitor.RecordProximityRejection("end")
		}
		return nil, ErrTooFarFromDestination
	}

	mileage := geo.DistanceMiles(*r.StartTripLocation, at)
	completed, err := s.repo.Complete(ctx, rideID, driverID, at, mileage, ride.NowMillis())
	if err != nil {
		return nil, err
	}

	if s.tracker != nil {
		s.tracker.Stop(rideID.String())
	}
	s.clearDriverBusy(ctx, driverID)

	s.notifier.RideUpdated("trip_completed", completed)
	if s.monitor != nil {
		s.monitor.RecordTripCompleted(rideID.String(), mileage)
	}

	s.logger.Info("Trip completed",
		logger.String("ride_id", rideID.String()),
		logger.String("driver_id", driverID),
		logger.Float64("mileage", mileage),
	)

	return completed, nil
}

// Cancel hands an accepted ride back to the pending pool. Only the
// accepting driver may cancel, and only before the trip starts.
func (s *Service) Cancel(ctx context.Context, rideID uuid.UUID, driverID string) (*ride.Request, error) {
	r, err := s.repo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !r.IsAssignedTo(driverID) {
		return nil, ride.ErrWrongDriver
	}
	if !r.CanCancel() {
		return nil, ride.ErrInvalidStatus
	}

	released, err := s.repo.Release(ctx, rideID, driverID)
	if err != nil {
		return nil, err
	}

	s.clearDriverBusy(ctx, driverID)
	s.indexPendingPickup(ctx, released)

	s.notifier.RideUpdated("ride_cancelled", released)
	s.notifier.RideAnnounced(released)
	if s.monitor != nil {
		s.monitor.RecordRideCancelled(rideID.String())
	}

	s.logger.Info("Ride returned to pending pool",
		logger.String("ride_id", rideID.String()),
		logger.String("driver_id", driverID),
	)

	return released, nil
}

// GetRide fetches a ride by ID
func (s *Service) GetRide(ctx context.Context, rideID uuid.UUID) (*ride.Request, error) {
	return s.repo.GetByID(ctx, rideID)
}

// ActiveForDriver returns the driver's accepted or started ride, if any
func (s *Service) ActiveForDriver(ctx context.Context, driverID string) (*ride.Request, error) {
	return s.repo.GetActiveByDriver(ctx, driverID)
}

// ActiveForCustomer returns the customer's not-yet-completed ride, if any
func (s *Service) ActiveForCustomer(ctx context.Context, customerID string) (*ride.Request, error) {
	return s.repo.GetActiveByCustomer(ctx, customerID)
}

// PendingRides lists rides waiting for a driver. With a near point it uses
// the Redis pickup geo index to keep the feed local to the driver; without
// one (or without Redis) it falls back to the full pending collection.
func (s *Service) PendingRides(ctx context.Context, near *ride.Location, radiusMiles float64) ([]*ride.Request, error) {
	if near == nil || s.redis == nil {
		return s.repo.ListPending(ctx)
	}
	if radiusMiles <= 0 {
		radiusMiles = 10
	}

	results, err := s.redis.GeoRadius(ctx, pendingGeoKey, near.Longitude, near.Latitude, &redis.GeoRadiusQuery{
		Radius: radiusMiles,
		Unit:   "mi",
		Sort:   "ASC",
	}).Result()
	if err != nil {
		s.logger.Warn("Pending geo search failed, falling back to full list", logger.Err(err))
		return s.repo.ListPending(ctx)
	}

	rides := make([]*ride.Request, 0, len(results))
	for _, result := range results {
		id, err := uuid.Parse(result.Name)
		if err != nil {
			continue
		}
		r, err := s.repo.GetByID(ctx, id)
		if err != nil || r.Status != ride.StatusPending {
			// stale index entry, drop it
			s.dropPendingPickup(ctx, id)
			continue
		}
		rides = append(rides, r)
	}
	return rides, nil
}

// Shutdown stops all tracking goroutines
func (s *Service) Shutdown() {
	if s.tracker != nil {
		s.tracker.Shutdown()
	}
}

// Redis fast paths. All best-effort: the conditional writes in the
// repository remain the source of truth.

func (s *Service) indexPendingPickup(ctx context.Context, r *ride.Request) {
	if s.redis == nil {
		return
	}
	err := s.redis.GeoAdd(ctx, pendingGeoKey, &redis.GeoLocation{
		Name:      r.ID.String(),
		Longitude: r.PickupLocation.Longitude,
		Latitude:  r.PickupLocation.Latitude,
	}).Err()
	if err != nil {
		s.logger.Warn("Failed to index pending pickup", logger.Err(err))
	}
}

func (s *Service) dropPendingPickup(ctx context.Context, rideID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.ZRem(ctx, pendingGeoKey, rideID.String()).Err(); err != nil {
		s.logger.Warn("Failed to drop pending pickup from index", logger.Err(err))
	}
}

func (s *Service) markDriverBusy(ctx context.Context, driverID, rideID string) bool {
	if s.redis == nil {
		return true
	}
	key := fmt.Sprintf(driverRideKey, driverID)
	// 24h expiry so an abandoned trip doesn't wedge the driver forever
	ok, err := s.redis.SetNX(ctx, key, rideID, 24*time.Hour).Result()
	if err != nil {
		s.logger.Warn("Failed to mark driver busy", logger.String("driver_id", driverID), logger.Err(err))
		return true
	}
	return ok
}

func (s *Service) clearDriverBusy(ctx context.Context, driverID string) {
	if s.redis == nil {
		return
	}
	key := fmt.Sprintf(driverRideKey, driverID)
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("Failed to clear driver busy key", logger.String("driver_id", driverID), logger.Err(err))
	}
}
