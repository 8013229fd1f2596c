package dto

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindJSON(t *testing.T, body string, dst interface{}) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return binding.JSON.Bind(req, dst)
}

func TestRequestRideRequest_ZeroCoordinatesBind(t *testing.T) {
	// a pickup on the equator/prime meridian is a real coordinate
	body := `{
		"customer_id": "customer-1",
		"pickup_latitude": 0, "pickup_longitude": 0,
		"destination_latitude": 0.5, "destination_longitude": 0.5
	}`

	var req RequestRideRequest
	require.NoError(t, bindJSON(t, body, &req))
	assert.Zero(t, req.PickupLatitude)
	assert.Zero(t, req.PickupLongitude)
	assert.Equal(t, 0.5, req.DestinationLatitude)
}

func TestRequestRideRequest_MissingCustomerRejected(t *testing.T) {
	var req RequestRideRequest
	err := bindJSON(t, `{"pickup_latitude": 1, "pickup_longitude": 1}`, &req)
	assert.Error(t, err)
}

func TestTripRequests_ZeroCoordinatesBind(t *testing.T) {
	body := `{"driver_id": "driver-1", "latitude": 0, "longitude": 0}`

	var start StartTripRequest
	require.NoError(t, bindJSON(t, body, &start))
	assert.Zero(t, start.Latitude)

	var update UpdateLocationRequest
	require.NoError(t, bindJSON(t, body, &update))

	var end EndTripRequest
	require.NoError(t, bindJSON(t, body, &end))
}

func TestTripRequests_MissingDriverRejected(t *testing.T) {
	body := `{"latitude": 1, "longitude": 1}`

	var start StartTripRequest
	assert.Error(t, bindJSON(t, body, &start))

	var cancel CancelTripRequest
	assert.Error(t, bindJSON(t, `{}`, &cancel))
}
