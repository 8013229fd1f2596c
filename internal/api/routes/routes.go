package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/Ahmed2300/triptracker/internal/api/handlers"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, nrApp *newrelic.Application) {
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	v1 := r.Group("/v1")
	{
		v1.GET("/ws", h.HandleWebSocket)
		v1.GET("/estimate", h.EstimatePrice)

		rides := v1.Group("/rides")
		{
			rides.POST("", h.RequestRide)
			rides.GET("/pending", h.ListPendingRides)
			rides.GET("/:id", h.GetRide)
			rides.POST("/:id/accept", h.AcceptRide)
			rides.POST("/:id/start", h.StartTrip)
			rides.POST("/:id/location", h.UpdateTripLocation)
			rides.POST("/:id/end", h.EndTrip)
			rides.POST("/:id/cancel", h.CancelTrip)
		}

		v1.GET("/customers/:id/active", h.ActiveRideForCustomer)
		v1.GET("/drivers/:id/active", h.ActiveRideForDriver)
	}
}
