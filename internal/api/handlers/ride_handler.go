package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Ahmed2300/triptracker/internal/api/dto"
	"github.com/Ahmed2300/triptracker/internal/domain/ride"
	"github.com/Ahmed2300/triptracker/internal/service/geo"
	"github.com/Ahmed2300/triptracker/internal/service/trips"
	"github.com/Ahmed2300/triptracker/pkg/logger"
)

// RequestRide handles POST /v1/rides
func (h *Handlers) RequestRide(c *gin.Context) {
	var req dto.RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	r, err := h.Trips.RequestRide(c.Request.Context(), trips.RequestInput{
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		PickupLocation: ride.Location{
			Latitude:  req.PickupLatitude,
			Longitude: req.PickupLongitude,
		},
		DestinationLocation: ride.Location{
			Latitude:  req.DestinationLatitude,
			Longitude: req.DestinationLongitude,
		},
		PickupAddress:          req.PickupAddress,
		PickupDescription:      req.PickupDescription,
		DestinationAddress:     req.DestinationAddress,
		DestinationDescription: req.DestinationDescription,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, r)
}

// GetRide handles GET /v1/rides/:id
func (h *Handlers) GetRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ride id"})
		return
	}

	r, err := h.Trips.GetRide(c.Request.Context(), rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// ListPendingRides handles GET /v1/rides/pending.
// With ?lat=&lng= (and optional &radius_miles=) the feed is limited to
// pickups near the driver.
func (h *Handlers) ListPendingRides(c *gin.Context) {
	var near *ride.Location
	radius := 0.0

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil || !geo.ValidCoordinates(ride.Location{Latitude: lat, Longitude: lng}) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		near = &ride.Location{Latitude: lat, Longitude: lng}
		if r, err := strconv.ParseFloat(c.Query("radius_miles"), 64); err == nil {
			radius = r
		}
	}

	rides, err := h.Trips.PendingRides(c.Request.Context(), near, radius)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if rides == nil {
		rides = []*ride.Request{}
	}

	c.JSON(http.StatusOK, gin.H{"rides": rides, "count": len(rides)})
}

// ActiveRideForCustomer handles GET /v1/customers/:id/active
func (h *Handlers) ActiveRideForCustomer(c *gin.Context) {
	r, err := h.Trips.ActiveForCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ActiveRideForDriver handles GET /v1/drivers/:id/active
func (h *Handlers) ActiveRideForDriver(c *gin.Context) {
	r, err := h.Trips.ActiveForDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// EstimatePrice handles GET /v1/estimate
func (h *Handlers) EstimatePrice(c *gin.Context) {
	from, ok1 := parsePoint(c, "pickup_lat", "pickup_lng")
	to, ok2 := parsePoint(c, "destination_lat", "destination_lng")
	if !ok1 || !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
		return
	}

	distance := geo.DistanceMiles(from, to)
	estimate := h.Pricing.EstimatePrice(distance)

	h.Logger.Debug("Price estimated",
		logger.Float64("distance_miles", distance),
		logger.Float64("total", estimate.Total),
	)

	c.JSON(http.StatusOK, estimate)
}

func parsePoint(c *gin.Context, latKey, lngKey string) (ride.Location, bool) {
	lat, latErr := strconv.ParseFloat(c.Query(latKey), 64)
	lng, lngErr := strconv.ParseFloat(c.Query(lngKey), 64)
	loc := ride.Location{Latitude: lat, Longitude: lng}
	if latErr != nil || lngErr != nil || !geo.ValidCoordinates(loc) {
		return ride.Location{}, false
	}
	return loc, true
}
