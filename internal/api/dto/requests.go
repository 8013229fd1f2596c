package dto

// RequestRideRequest creates a new pending ride
type RequestRideRequest struct {
	CustomerID             string  `json:"customer_id" binding:"required"`
	CustomerName           string  `json:"customer_name"`
	// coordinates are not tagged required: zero is a legitimate value on
	// the equator or prime meridian, and range checks happen in the service
	PickupLatitude         float64 `json:"pickup_latitude"`
	PickupLongitude        float64 `json:"pickup_longitude"`
	DestinationLatitude    float64 `json:"destination_latitude"`
	DestinationLongitude   float64 `json:"destination_longitude"`
	PickupAddress          string  `json:"pickup_address"`
	PickupDescription      string  `json:"pickup_description"`
	DestinationAddress     string  `json:"destination_address"`
	DestinationDescription string  `json:"destination_description"`
}

// AcceptRideRequest claims a pending ride for a driver
type AcceptRideRequest struct {
	DriverID   string `json:"driver_id" binding:"required"`
	DriverName string `json:"driver_name"`
}

// StartTripRequest starts an accepted trip at the driver's position
type StartTripRequest struct {
	DriverID  string  `json:"driver_id" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Simulate enables server-driven mileage when the device has no
	// usable position source
	Simulate bool `json:"simulate"`
}

// UpdateLocationRequest is a driver position tick during a started trip
type UpdateLocationRequest struct {
	DriverID  string  `json:"driver_id" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EndTripRequest completes a started trip at the driver's position
type EndTripRequest struct {
	DriverID  string  `json:"driver_id" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CancelTripRequest hands an accepted ride back to the pending pool
type CancelTripRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
}
