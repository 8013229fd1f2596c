package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahmed2300/triptracker/internal/domain/ride"
	"github.com/Ahmed2300/triptracker/internal/service/pricing"
	"github.com/Ahmed2300/triptracker/internal/service/trips"
	apperrors "github.com/Ahmed2300/triptracker/pkg/errors"
	"github.com/Ahmed2300/triptracker/pkg/logger"
	"github.com/Ahmed2300/triptracker/pkg/websocket"
)

// Handlers holds all handler dependencies
type Handlers struct {
	Trips   *trips.Service
	Pricing *pricing.Calculator
	Hub     *websocket.Hub
	Logger  *logger.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(tripService *trips.Service, calc *pricing.Calculator, hub *websocket.Hub, log *logger.Logger) *Handlers {
	return &Handlers{
		Trips:   tripService,
		Pricing: calc,
		Hub:     hub,
		Logger:  log,
	}
}

// respondError maps service errors to the API error vocabulary
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := h.toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed", logger.Err(err))
	}
	c.JSON(appErr.Status, appErr)
}

func (h *Handlers) toAppError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, ride.ErrNotFound):
		return apperrors.ErrRideNotFound
	case errors.Is(err, ride.ErrAlreadyClaimed):
		return apperrors.ErrRideAlreadyTaken
	case errors.Is(err, ride.ErrDriverBusy):
		return apperrors.ErrDriverBusy
	case errors.Is(err, ride.ErrWrongDriver):
		return apperrors.ErrNotAssignedDriver
	case errors.Is(err, ride.ErrInvalidStatus), errors.Is(err, ride.ErrNotStarted):
		return apperrors.ErrInvalidTransition
	case errors.Is(err, trips.ErrTooFarFromPickup):
		return apperrors.ErrNotNearPickup
	case errors.Is(err, trips.ErrTooFarFromDestination):
		return apperrors.ErrNotNearDropoff
	case errors.Is(err, trips.ErrBadCoordinates):
		return apperrors.ErrInvalidCoordinates
	default:
		return apperrors.GetAppError(err)
	}
}
