package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Ahmed2300/triptracker/internal/api/dto"
	"github.com/Ahmed2300/triptracker/internal/domain/ride"
	"github.com/Ahmed2300/triptracker/pkg/logger"
)

// AcceptRide handles POST /v1/rides/:id/accept
func (h *Handlers) AcceptRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ride id"})
		return
	}

	var req dto.AcceptRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	h.Logger.Info("Driver accepting ride",
		logger.String("ride_id", rideID.String()),
		logger.String("driver_id", req.DriverID),
	)

	r, err := h.Trips.Accept(c.Request.Context(), rideID, req.DriverID, req.DriverName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// StartTrip handles POST /v1/rides/:id/start
func (h *Handlers) StartTrip(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ride id"})
		return
	}

	var req dto.StartTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	at := ride.Location{Latitude: req.Latitude, Longitude: req.Longitude}
	r, err := h.Trips.StartTrip(c.Request.Context(), rideID, req.DriverID, at, req.Simulate)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// UpdateTripLocation handles POST /v1/rides/:id/location
func (h *Handlers) UpdateTripLocation(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ride id"})
		return
	}

	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	at := ride.Location{Latitude: req.Latitude, Longitude: req.Longitude}
	r, err := h.Trips.UpdateLocation(c.Request.Context(), rideID, req.DriverID, at)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ride_id":            r.ID,
		"status":             r.Status,
		"current_location":   r.CurrentDriverLocation,
		"calculated_mileage": r.CalculatedMileage,
	})
}

// EndTrip handles POST /v1/rides/:id/end
func (h *Handlers) EndTrip(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ride id"})
		return
	}

	var req dto.EndTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	at := ride.Location{Latitude: req.Latitude, Longitude: req.Longitude}
	r, err := h.Trips.EndTrip(c.Request.Context(), rideID, req.DriverID, at)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Logger.Info("Trip ended",
		logger.String("ride_id", rideID.String()),
		logger.Float64("mileage", r.CalculatedMileage),
	)

	c.JSON(http.StatusOK, r)
}

// CancelTrip handles POST /v1/rides/:id/cancel
func (h *Handlers) CancelTrip(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ride id"})
		return
	}

	var req dto.CancelTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	r, err := h.Trips.Cancel(c.Request.Context(), rideID, req.DriverID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}
