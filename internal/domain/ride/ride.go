package ride

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a ride request
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
)

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusStarted, StatusCompleted:
		return true
	}
	return false
}

// Location is a latitude/longitude pair
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Request is the single record that carries a ride through its whole
// lifecycle. Timestamps are epoch milliseconds, the format the mobile
// clients already speak.
type Request struct {
	ID                     uuid.UUID `json:"id"`
	Status                 Status    `json:"status"`
	CustomerID             string    `json:"customer_id"`
	CustomerName           string    `json:"customer_name"`
	DriverID               string    `json:"driver_id,omitempty"`
	DriverName             string    `json:"driver_name,omitempty"`
	PickupLocation         Location  `json:"pickup_location"`
	DestinationLocation    Location  `json:"destination_location"`
	PickupAddress          string    `json:"pickup_address,omitempty"`
	PickupDescription      string    `json:"pickup_description,omitempty"`
	DestinationAddress     string    `json:"destination_address,omitempty"`
	DestinationDescription string    `json:"destination_description,omitempty"`
	PickupGeohash          string    `json:"pickup_geohash,omitempty"`
	EstimatedPrice         float64   `json:"estimated_price"`
	RequestTime            int64     `json:"request_time"`
	AcceptTime             int64     `json:"accept_time,omitempty"`
	StartTime              int64     `json:"start_time,omitempty"`
	EndTime                int64     `json:"end_time,omitempty"`
	StartTripLocation      *Location `json:"start_trip_location,omitempty"`
	CurrentDriverLocation  *Location `json:"current_driver_location,omitempty"`
	CalculatedMileage      float64   `json:"calculated_mileage"`
}

// Transition guards. Every handler goes through these instead of
// re-deriving validity at each call site.

// CanAccept reports whether a driver may claim this ride
func (r *Request) CanAccept() bool {
	return r.Status == StatusPending
}

// CanStart reports whether the trip may begin
func (r *Request) CanStart() bool {
	return r.Status == StatusAccepted
}

// CanComplete reports whether the trip may end
func (r *Request) CanComplete() bool {
	return r.Status == StatusStarted
}

// CanCancel reports whether the accepting driver may hand the ride back.
// Cancellation is only allowed before the trip starts.
func (r *Request) CanCancel() bool {
	return r.Status == StatusAccepted
}

// IsActive reports whether the ride currently occupies a driver
func (r *Request) IsActive() bool {
	return r.Status == StatusAccepted || r.Status == StatusStarted
}

// IsAssignedTo reports whether driverID is the driver holding this ride
func (r *Request) IsAssignedTo(driverID string) bool {
	return r.DriverID != "" && r.DriverID == driverID
}

// NowMillis returns the current time as epoch milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
