package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
	Email     EmailConfig
	Payment   PaymentConfig
	Booking   BookingConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	DSN         string
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	CacheTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	JWTExpiresIn     time.Duration
	RefreshExpiresIn time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled                 bool
	WindowDuration          time.Duration
	DefaultRequests         int
	PublicRequests          int
	AuthRequests            int
	BookingRequests         int
	BookingCriticalRequests int
	CheckInRequests         int
	AdminRequests           int
	UserRequests            int
	HealthRequests          int
	WhitelistedIPs          []string
}

// KafkaConfig holds broker and topic settings for notifications and payment results
type KafkaConfig struct {
	Enabled             bool
	Brokers             []string
	NotificationTopic   string
	PaymentResultTopic  string
	NotificationGroupID string
	PaymentGroupID      string
	ConsumerWorkers     int
}

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// PaymentConfig holds PayU merchant credentials and redirect URLs
type PaymentConfig struct {
	Key        string
	Salt       string
	Env        string
	SuccessURL string
	FailureURL string
}

// MaxTicketsPerBooking is the hard upper bound on tickets in one booking.
// BOOKING_MAX_QUANTITY may lower it but never raise it.
const MaxTicketsPerBooking = 10

// BookingConfig holds booking policy knobs
type BookingConfig struct {
	TaxRate              decimal.Decimal
	DefaultDailyCapacity int
	MaxQuantity          int
	Timezone             string
	PendingTTL           time.Duration
	ExpiryInterval       time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			Name:        getEnv("DB_NAME", "festpass_db"),
			User:        getEnv("DB_USER", "festpass_user"),
			Password:    getEnv("DB_PASSWORD", "festpass_password"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			AutoMigrate: getBoolEnv("DB_AUTO_MIGRATE", true),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			CacheTTL: getDurationEnv("REDIS_CACHE_TTL", 5*time.Minute),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret:           getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
			JWTExpiresIn:     getDurationEnvSeconds("JWT_EXPIRES_IN", 15*time.Minute),
			RefreshExpiresIn: getDurationEnvSeconds("JWT_REFRESH_EXPIRES_IN", 24*time.Hour),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:                 getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:          getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:         getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:          getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			AuthRequests:            getIntEnv("RATE_LIMIT_AUTH_REQUESTS", 10),
			BookingRequests:         getIntEnv("RATE_LIMIT_BOOKING_REQUESTS", 30),
			BookingCriticalRequests: getIntEnv("RATE_LIMIT_BOOKING_CRITICAL_REQUESTS", 10),
			CheckInRequests:         getIntEnv("RATE_LIMIT_CHECKIN_REQUESTS", 300),
			AdminRequests:           getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			UserRequests:            getIntEnv("RATE_LIMIT_USER_REQUESTS", 60),
			HealthRequests:          getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 600),
			WhitelistedIPs:          getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		Kafka: KafkaConfig{
			Enabled:             getBoolEnv("KAFKA_ENABLED", true),
			Brokers:             getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			NotificationTopic:   getEnv("KAFKA_NOTIFICATION_TOPIC", "notifications"),
			PaymentResultTopic:  getEnv("KAFKA_PAYMENT_RESULT_TOPIC", "payment-results"),
			NotificationGroupID: getEnv("KAFKA_NOTIFICATION_GROUP_ID", "festpass-notification-workers"),
			PaymentGroupID:      getEnv("KAFKA_PAYMENT_GROUP_ID", "festpass-payment-workers"),
			ConsumerWorkers:     getIntEnv("KAFKA_CONSUMER_WORKERS", 2),
		},

		// Email configuration
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getIntEnv("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "tickets@festpass.in"),
			FromName:     getEnv("FROM_NAME", "FestPass Tickets"),
		},

		Payment: PaymentConfig{
			Key:        getEnv("PAYU_KEY", ""),
			Salt:       getEnv("PAYU_SALT", ""),
			Env:        getEnv("PAYU_ENV", "test"),
			SuccessURL: getEnv("PAYU_SUCCESS_URL", "http://localhost:3000/payment/success"),
			FailureURL: getEnv("PAYU_FAILURE_URL", "http://localhost:3000/payment/failure"),
		},

		Booking: BookingConfig{
			TaxRate:              getDecimalEnv("BOOKING_TAX_RATE", decimal.RequireFromString("0.18")),
			DefaultDailyCapacity: getIntEnv("BOOKING_DEFAULT_DAILY_CAPACITY", 500),
			MaxQuantity:          clampMaxQuantity(getIntEnv("BOOKING_MAX_QUANTITY", MaxTicketsPerBooking)),
			Timezone:             getEnv("BOOKING_TIMEZONE", "Asia/Kolkata"),
			PendingTTL:           getDurationEnv("BOOKING_PENDING_TTL", 30*time.Minute),
			ExpiryInterval:       getDurationEnv("BOOKING_EXPIRY_INTERVAL", time.Minute),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

func clampMaxQuantity(n int) int {
	if n < 1 || n > MaxTicketsPerBooking {
		return MaxTicketsPerBooking
	}
	return n
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDecimalEnv gets a decimal environment variable with a fallback value
func getDecimalEnv(key string, fallback decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getDurationEnvSeconds gets an environment variable as seconds (int) and converts to time.Duration
func getDurationEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}

// Location resolves the booking timezone, falling back to UTC when the zone is unknown.
func (b BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction reports whether payments go to the live PayU endpoint.
func (p PaymentConfig) IsProduction() bool {
	return strings.EqualFold(p.Env, "production") || strings.EqualFold(p.Env, "prod")
}
