package ride

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for ride persistence.
//
// The mutating methods are conditional writes: each one only applies when
// the ride is in the expected state (and, where relevant, held by the
// expected driver), and returns ErrAlreadyClaimed / ErrInvalidStatus /
// ErrWrongDriver when the condition no longer holds. Concurrent claims of
// the same pending ride are resolved here, not by the callers.
type Repository interface {
	// Create persists a new pending ride
	Create(ctx context.Context, r *Request) error

	// GetByID retrieves a ride by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)

	// ListPending returns all rides still waiting for a driver
	ListPending(ctx context.Context) ([]*Request, error)

	// Claim moves a pending ride to accepted for the given driver
	Claim(ctx context.Context, id uuid.UUID, driverID, driverName string, acceptTime int64) (*Request, error)

	// Release returns an accepted ride to the pending pool
	Release(ctx context.Context, id uuid.UUID, driverID string) (*Request, error)

	// Start moves an accepted ride to started and records the trip origin
	Start(ctx context.Context, id uuid.UUID, driverID string, loc Location, startTime int64) (*Request, error)

	// UpdateProgress overwrites the driver position and mileage of a started ride
	UpdateProgress(ctx context.Context, id uuid.UUID, loc Location, mileage float64) (*Request, error)

	// Complete moves a started ride to completed
	Complete(ctx context.Context, id uuid.UUID, driverID string, loc Location, mileage float64, endTime int64) (*Request, error)

	// GetActiveByDriver returns the driver's accepted or started ride, if any
	GetActiveByDriver(ctx context.Context, driverID string) (*Request, error)

	// GetActiveByCustomer returns the customer's not-yet-completed ride, if any
	GetActiveByCustomer(ctx context.Context, customerID string) (*Request, error)
}
