package checkins

import (
	"festpass/internal/shared/config"
	"festpass/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCheckInRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	checkins := rg.Group("/checkins")
	checkins.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireStaff())
	{
		checkins.POST("", controller.CheckIn) // POST /api/v1/checkins
	}
}
