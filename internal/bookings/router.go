package bookings

import (
	"festpass/internal/shared/config"
	"festpass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	bookings := rg.Group("/bookings")
	{
		// guests may check out; a valid token books under the account
		bookings.POST("/initiate", middleware.OptionalAuthWithConfig(cfg), controller.InitiateBooking)
		bookings.GET("/:reference", middleware.JWTAuthWithConfig(cfg), controller.GetBooking)
	}

	users := rg.Group("/users")
	users.Use(middleware.JWTAuthWithConfig(cfg))
	{
		users.GET("/tickets", controller.GetUserTickets) // GET /api/v1/users/tickets
	}
}

// Route definitions for reference:
//
// POST   /api/v1/bookings/initiate      - Reserve daily capacity, create PENDING tickets, return PayU form
// Request body: { "eventId": "...", "user": {...}, "quantity": 2, "bookingType": "DAILY", "selectedDates": ["2026-12-01"] }
//
// GET    /api/v1/bookings/:reference    - Tickets of one booking (owner or staff)
// GET    /api/v1/users/tickets          - Caller's tickets, filter by status, event_id, date
//
// Settlement is not an HTTP route: payment results arrive on the payment-results topic.
