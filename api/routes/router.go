// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"festpass/docs"
	"festpass/internal/auth"
	"festpass/internal/bookings"
	"festpass/internal/checkins"
	"festpass/internal/events"
	"festpass/internal/payments"
	"festpass/internal/shared/config"
	"festpass/internal/shared/database"
	"festpass/internal/users"
	"festpass/pkg/cache"
	"festpass/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	notifier bookings.TicketNotifier

	cacheService   cache.Service
	eventRepo      events.Repository
	bookingService bookings.Service
}

// NewRouter builds the domain services. notifier may be nil when Kafka is off.
func NewRouter(cfg *config.Config, db *database.DB, notifier bookings.TicketNotifier) *Router {
	r := &Router{
		config:    cfg,
		db:        db,
		notifier:  notifier,
		eventRepo: events.NewRepository(db.PostgreSQL),
	}
	if db.Redis != nil {
		r.cacheService = cache.NewService(db.Redis)
	}

	r.bookingService = bookings.NewService(bookings.ServiceDeps{
		Repo:         bookings.NewRepository(db.PostgreSQL),
		EventRepo:    r.eventRepo,
		UserRepo:     users.NewRepository(db.PostgreSQL),
		Gateway:      payments.NewGateway(cfg.Payment),
		Notifier:     notifier,
		CacheService: r.cacheService,
		Config:       cfg.Booking,
	})
	return r
}

// BookingService is shared with the payment-result consumer and the expiry job.
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	docs.SwaggerInfo.BasePath = r.config.GetAPIBasePath()
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET("/metrics", metrics.Handler())

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupEventRoutes(api)
		r.setupBookingRoutes(api)
		r.setupCheckInRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "festpass-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "festpass-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "operational",
			"api_version":   r.config.APIVersion,
			"notifications": r.notifier != nil,
			"timestamp":     time.Now(),
		})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.PostgreSQL)
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	auth.NewRouter(authController, r.config).SetupRoutes(rg)
}

func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventService := events.NewService(r.eventRepo, r.cacheService, r.config.Booking.DefaultDailyCapacity)
	events.SetupEventRoutes(rg, events.NewController(eventService), r.config)
}

func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookings.SetupBookingRoutes(rg, bookings.NewController(r.bookingService), r.config)
}

func (r *Router) setupCheckInRoutes(rg *gin.RouterGroup) {
	checkInService := checkins.NewService(checkins.NewRepository(r.db.PostgreSQL), r.config.Booking.Location())
	checkins.SetupCheckInRoutes(rg, checkins.NewController(checkInService), r.config)
}
