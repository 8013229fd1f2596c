package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ahmed2300/triptracker/internal/domain/ride"
	"github.com/google/uuid"
)

const rideColumns = `
	id, status, customer_id, customer_name, driver_id, driver_name,
	pickup_latitude, pickup_longitude, destination_latitude, destination_longitude,
	pickup_address, pickup_description, destination_address, destination_description,
	pickup_geohash, estimated_price,
	request_time, accept_time, start_time, end_time,
	start_trip_latitude, start_trip_longitude,
	current_driver_latitude, current_driver_longitude,
	calculated_mileage`

// RideRepository is the PostgreSQL implementation of ride.Repository.
// Every transition is a single conditional UPDATE so concurrent claims
// resolve in the database, not in application code.
type RideRepository struct {
	db *sql.DB
}

// NewRideRepository creates a ride repository
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{db: db}
}

// Create persists a new pending ride
func (r *RideRepository) Create(ctx context.Context, req *ride.Request) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ride_requests (
			id, status, customer_id, customer_name,
			pickup_latitude, pickup_longitude, destination_latitude, destination_longitude,
			pickup_address, pickup_description, destination_address, destination_description,
			pickup_geohash, estimated_price, request_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		req.ID, req.Status, req.CustomerID, req.CustomerName,
		req.PickupLocation.Latitude, req.PickupLocation.Longitude,
		req.DestinationLocation.Latitude, req.DestinationLocation.Longitude,
		req.PickupAddress, req.PickupDescription,
		req.DestinationAddress, req.DestinationDescription,
		req.PickupGeohash, req.EstimatedPrice, req.RequestTime,
	)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	return nil
}

// GetByID retrieves a ride by ID
func (r *RideRepository) GetByID(ctx context.Context, id uuid.UUID) (*ride.Request, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+rideColumns+` FROM ride_requests WHERE id = $1`, id)
	return scanRide(row)
}

// ListPending returns all rides still waiting for a driver, oldest first
func (r *RideRepository) ListPending(ctx context.Context) ([]*ride.Request, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+rideColumns+` FROM ride_requests WHERE status = $1 ORDER BY request_time`,
		ride.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending rides: %w", err)
	}
	defer rows.Close()

	var rides []*ride.Request
	for rows.Next() {
		req, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, req)
	}
	return rides, rows.Err()
}

// Claim moves a pending ride to accepted for the given driver
func (r *RideRepository) Claim(ctx context.Context, id uuid.UUID, driverID, driverName string, acceptTime int64) (*ride.Request, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE ride_requests
		SET status = $2, driver_id = $3, driver_name = $4, accept_time = $5
		WHERE id = $1 AND status = $6
		RETURNING `+rideColumns,
		id, ride.StatusAccepted, driverID, driverName, acceptTime, ride.StatusPending)

	req, err := scanRide(row)
	if errors.Is(err, ride.ErrNotFound) {
		return nil, r.explainMiss(ctx, id, "", ride.ErrAlreadyClaimed)
	}
	return req, err
}

// Release returns an accepted ride to the pending pool, clearing the
// driver fields and accept time
func (r *RideRepository) Release(ctx context.Context, id uuid.UUID, driverID string) (*ride.Request, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE ride_requests
		SET status = $3, driver_id = NULL, driver_name = NULL, accept_time = NULL
		WHERE id = $1 AND driver_id = $2 AND status = $4
		RETURNING `+rideColumns,
		id, driverID, ride.StatusPending, ride.StatusAccepted)

	req, err := scanRide(row)
	if errors.Is(err, ride.ErrNotFound) {
		return nil, r.explainMiss(ctx, id, driverID, ride.ErrInvalidStatus)
	}
	return req, err
}

// Start moves an accepted ride to started and records the trip origin
func (r *RideRepository) Start(ctx context.Context, id uuid.UUID, driverID string, loc ride.Location, startTime int64) (*ride.Request, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE ride_requests
		SET status = $3, start_time = $4,
		    start_trip_latitude = $5, start_trip_longitude = $6,
		    current_driver_latitude = $5, current_driver_longitude = $6,
		    calculated_mileage = 0
		WHERE id = $1 AND driver_id = $2 AND status = $7
		RETURNING `+rideColumns,
		id, driverID, ride.StatusStarted, startTime,
		loc.Latitude, loc.Longitude, ride.StatusAccepted)

	req, err := scanRide(row)
	if errors.Is(err, ride.ErrNotFound) {
		return nil, r.explainMiss(ctx, id, driverID, ride.ErrInvalidStatus)
	}
	return req, err
}

// UpdateProgress overwrites the driver position and mileage of a started ride
func (r *RideRepository) UpdateProgress(ctx context.Context, id uuid.UUID, loc ride.Location, mileage float64) (*ride.Request, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE ride_requests
		SET current_driver_latitude = $2, current_driver_longitude = $3,
		    calculated_mileage = $4
		WHERE id = $1 AND status = $5
		RETURNING `+rideColumns,
		id, loc.Latitude, loc.Longitude, mileage, ride.StatusStarted)

	req, err := scanRide(row)
	if errors.Is(err, ride.ErrNotFound) {
		return nil, r.explainMiss(ctx, id, "", ride.ErrInvalidStatus)
	}
	return req, err
}

// Complete moves a started ride to completed
func (r *RideRepository) Complete(ctx context.Context, id uuid.UUID, driverID string, loc ride.Location, mileage float64, endTime int64) (*ride.Request, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE ride_requests
		SET status = $3, end_time = $4,
		    current_driver_latitude = $5, current_driver_longitude = $6,
		    calculated_mileage = $7
		WHERE id = $1 AND driver_id = $2 AND status = $8
		RETURNING `+rideColumns,
		id, driverID, ride.StatusCompleted, endTime,
		loc.Latitude, loc.Longitude, mileage, ride.StatusStarted)

	req, err := scanRide(row)
	if errors.Is(err, ride.ErrNotFound) {
		return nil, r.explainMiss(ctx, id, driverID, ride.ErrInvalidStatus)
	}
	return req, err
}

// GetActiveByDriver returns the driver's accepted or started ride, if any
func (r *RideRepository) GetActiveByDriver(ctx context.Context, driverID string) (*ride.Request, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+rideColumns+` FROM ride_requests
		 WHERE driver_id = $1 AND status IN ($2, $3)
		 LIMIT 1`,
		driverID, ride.StatusAccepted, ride.StatusStarted)
	return scanRide(row)
}

// GetActiveByCustomer returns the customer's not-yet-completed ride, if any
func (r *RideRepository) GetActiveByCustomer(ctx context.Context, customerID string) (*ride.Request, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+rideColumns+` FROM ride_requests
		 WHERE customer_id = $1 AND status IN ($2, $3, $4)
		 ORDER BY request_time DESC
		 LIMIT 1`,
		customerID, ride.StatusPending, ride.StatusAccepted, ride.StatusStarted)
	return scanRide(row)
}

// explainMiss turns a zero-row conditional update into the right domain
// error: not found, held by someone else, or wrong state.
func (r *RideRepository) explainMiss(ctx context.Context, id uuid.UUID, driverID string, stateErr error) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if driverID != "" && !current.IsAssignedTo(driverID) {
		return ride.ErrWrongDriver
	}
	return stateErr
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRide(row rowScanner) (*ride.Request, error) {
	var (
		req                    ride.Request
		driverID, driverName   sql.NullString
		acceptT, startT, endT  sql.NullInt64
		startLat, startLng     sql.NullFloat64
		currentLat, currentLng sql.NullFloat64
	)

	err := row.Scan(
		&req.ID, &req.Status, &req.CustomerID, &req.CustomerName,
		&driverID, &driverName,
		&req.PickupLocation.Latitude, &req.PickupLocation.Longitude,
		&req.DestinationLocation.Latitude, &req.DestinationLocation.Longitude,
		&req.PickupAddress, &req.PickupDescription,
		&req.DestinationAddress, &req.DestinationDescription,
		&req.PickupGeohash, &req.EstimatedPrice,
		&req.RequestTime, &acceptT, &startT, &endT,
		&startLat, &startLng, &currentLat, &currentLng,
		&req.CalculatedMileage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ride.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan ride: %w", err)
	}

	req.DriverID = driverID.String
	req.DriverName = driverName.String
	req.AcceptTime = acceptT.Int64
	req.StartTime = startT.Int64
	req.EndTime = endT.Int64
	if startLat.Valid && startLng.Valid {
		req.StartTripLocation = &ride.Location{Latitude: startLat.Float64, Longitude: startLng.Float64}
	}
	if currentLat.Valid && currentLng.Valid {
		req.CurrentDriverLocation = &ride.Location{Latitude: currentLat.Float64, Longitude: currentLng.Float64}
	}
	return &req, nil
}
