package events

import (
	"festpass/internal/shared/config"
	"festpass/internal/shared/middleware"
	"festpass/internal/users"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public routes - anyone can browse events
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.GetAllEvents)                     // GET /api/v1/events
		publicEvents.GET("/:id", controller.GetEvent)                     // GET /api/v1/events/:id (id or slug)
		publicEvents.GET("/:id/availability", controller.GetAvailability) // GET /api/v1/events/:id/availability
	}

	// Management routes - admins and venue managers
	adminEvents := router.Group("/admin/events")
	adminEvents.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRoles(users.RoleAdmin, users.RoleVenueManager))
	{
		adminEvents.POST("", controller.CreateEvent)       // POST /api/v1/admin/events
		adminEvents.PUT("/:id", controller.UpdateEvent)    // PUT /api/v1/admin/events/:id
		adminEvents.DELETE("/:id", controller.DeleteEvent) // DELETE /api/v1/admin/events/:id
		adminEvents.GET("", controller.GetAllEvents)
		adminEvents.GET("/:id", controller.GetEvent)
	}
}
