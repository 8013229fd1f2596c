package monitoring

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
}

// NewRelicApp wraps the New Relic application
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a New Relic application, or a disabled no-op wrapper
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return &NewRelicApp{nil, false}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// IsEnabled returns whether New Relic is enabled
func (nr *NewRelicApp) IsEnabled() bool {
	return nr.enabled
}

// Shutdown flushes and shuts down the agent
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.Shutdown(timeout)
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// RecordCustomMetric records a custom metric
func (nr *NewRelicApp) RecordCustomMetric(name string, value float64) {
	if !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomMetric(name, value)
}

// Ride lifecycle events

// RecordRideRequested records a new pending ride
func (nr *NewRelicApp) RecordRideRequested(rideID string, estimatedPrice float64) {
	nr.RecordCustomEvent("RideRequested", map[string]interface{}{
		"ride_id":         rideID,
		"estimated_price": estimatedPrice,
		"timestamp":       time.Now().Unix(),
	})
}

// RecordRideAccepted records a driver claiming a pending ride
func (nr *NewRelicApp) RecordRideAccepted(rideID, driverID string) {
	nr.RecordCustomEvent("RideAccepted", map[string]interface{}{
		"ride_id":   rideID,
		"driver_id": driverID,
	})
}

// RecordTripStarted records a trip start
func (nr *NewRelicApp) RecordTripStarted(rideID string) {
	nr.RecordCustomEvent("TripStarted", map[string]interface{}{
		"ride_id": rideID,
	})
}

// RecordTripCompleted records a completed trip with its final mileage
func (nr *NewRelicApp) RecordTripCompleted(rideID string, mileage float64) {
	nr.RecordCustomEvent("TripCompleted", map[string]interface{}{
		"ride_id": rideID,
		"mileage": mileage,
	})
}

// RecordRideCancelled records a ride returned to the pending pool
func (nr *NewRelicApp) RecordRideCancelled(rideID string) {
	nr.RecordCustomEvent("RideCancelled", map[string]interface{}{
		"ride_id": rideID,
	})
}

// RecordLocationUpdate counts driver location ticks
func (nr *NewRelicApp) RecordLocationUpdate() {
	nr.RecordCustomMetric("custom/trip/location_update", 1)
}

// RecordProximityRejection counts start/end attempts blocked by the proximity gate
func (nr *NewRelicApp) RecordProximityRejection(action string) {
	nr.RecordCustomMetric(fmt.Sprintf("custom/trip/proximity_rejection/%s", action), 1)
}
