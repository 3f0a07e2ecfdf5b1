// @title Festpass API
// @version 1.0
// @description Multi-day festival ticketing: daily capacity, PayU checkout and gate check-in.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"festpass/api/routes"
	"festpass/internal/bookings"
	"festpass/internal/notifications"
	"festpass/internal/shared/config"
	"festpass/internal/shared/database"
	"festpass/internal/shared/utils/validation"
	"festpass/pkg/kafka"
	"festpass/pkg/logger"
	"festpass/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	validation.Register()

	appLogger.Info("starting festpass",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	db, err := database.InitDB(rootCtx, cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
			Enabled:                 cfg.RateLimit.Enabled,
			WindowDuration:          cfg.RateLimit.WindowDuration,
			DefaultRequests:         cfg.RateLimit.DefaultRequests,
			PublicRequests:          cfg.RateLimit.PublicRequests,
			AuthRequests:            cfg.RateLimit.AuthRequests,
			BookingRequests:         cfg.RateLimit.BookingRequests,
			BookingCriticalRequests: cfg.RateLimit.BookingCriticalRequests,
			CheckInRequests:         cfg.RateLimit.CheckInRequests,
			AdminRequests:           cfg.RateLimit.AdminRequests,
			UserRequests:            cfg.RateLimit.UserRequests,
			HealthRequests:          cfg.RateLimit.HealthRequests,
			WhitelistedIPs:          cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Ticket notifications and payment results both ride on Kafka.
	var notifier bookings.TicketNotifier
	if cfg.Kafka.Enabled {
		notificationService, err := notifications.NewService(cfg.Kafka, cfg.Email)
		if err != nil {
			appLogger.Error("Failed to initialize notification service", slog.Any("error", err))
			appLogger.Info("Continuing without ticket notifications")
		} else {
			if err := notificationService.Start(rootCtx); err != nil {
				appLogger.Error("Failed to start notification service", slog.Any("error", err))
			}
			notifier = notificationService.Publisher
			defer func() {
				appLogger.Info("Stopping notification service...")
				if err := notificationService.Stop(); err != nil {
					appLogger.Error("Error stopping notification service", slog.Any("error", err))
				}
			}()
		}
	}

	appRouter := routes.NewRouter(cfg, db, notifier)
	bookingService := appRouter.BookingService()

	if cfg.Kafka.Enabled {
		paymentConsumer, err := kafka.NewConsumer(
			kafka.DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.Kafka.PaymentGroupID, cfg.Kafka.PaymentResultTopic),
			bookings.PaymentResultHandler(bookingService),
		)
		if err != nil {
			appLogger.Error("Failed to start payment result consumer", slog.Any("error", err))
		} else {
			paymentConsumer.Start(rootCtx, cfg.Kafka.ConsumerWorkers)
			defer func() {
				if err := paymentConsumer.Stop(); err != nil {
					appLogger.Error("Error stopping payment result consumer", slog.Any("error", err))
				}
			}()
		}
	} else {
		appLogger.Warn("Kafka disabled: payment results will not be settled")
	}

	scheduler, err := bookings.NewExpiryScheduler(bookingService, cfg.Booking.ExpiryInterval, 30*time.Second)
	if err != nil {
		appLogger.Error("Failed to create expiry scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer shutdownScheduler(scheduler, appLogger)

	router := setupRouter(appRouter, rateLimiter)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_base", cfg.GetAPIBasePath()),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
			slog.Bool("kafka", cfg.Kafka.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func shutdownScheduler(s gocron.Scheduler, l *logger.Logger) {
	if err := s.Shutdown(); err != nil {
		l.Error("Error stopping expiry scheduler", slog.Any("error", err))
	}
}

func setupRouter(appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter.SetupRoutes(engine)
	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}
