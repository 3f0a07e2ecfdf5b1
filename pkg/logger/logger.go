package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// text is easier to read in a terminal
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent tags every record with the emitting component
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("component", component)),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Business logic logging methods

// LogEventCreated logs when an event is created
func (l *Logger) LogEventCreated(ctx context.Context, eventID, userID string) {
	l.Logger.InfoContext(ctx,
		"Event Created",
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)
}

// LogBookingInitiated logs a booking whose tickets were reserved and handed to the gateway
func (l *Logger) LogBookingInitiated(ctx context.Context, reference, eventID, userID, bookingType string, tickets int) {
	l.Logger.InfoContext(ctx,
		"Booking Initiated",
		slog.String("booking_reference", reference),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
		slog.String("booking_type", bookingType),
		slog.Int("tickets", tickets),
	)
}

// LogBookingRejected logs a booking refused before any ticket was written
func (l *Logger) LogBookingRejected(ctx context.Context, eventID, code string, err error) {
	l.Logger.WarnContext(ctx,
		"Booking Rejected",
		slog.String("event_id", eventID),
		slog.String("code", code),
		slog.String("reason", err.Error()),
	)
}

// LogPaymentSettled logs a payment result applied to a booking
func (l *Logger) LogPaymentSettled(ctx context.Context, reference, status string, tickets int64) {
	l.Logger.InfoContext(ctx,
		"Payment Settled",
		slog.String("booking_reference", reference),
		slog.String("status", status),
		slog.Int64("tickets", tickets),
	)
}

// LogTicketCheckedIn logs a successful gate redemption
func (l *Logger) LogTicketCheckedIn(ctx context.Context, ticketID, eventID, date, staffID string) {
	l.Logger.InfoContext(ctx,
		"Ticket Checked In",
		slog.String("ticket_id", ticketID),
		slog.String("event_id", eventID),
		slog.String("date", date),
		slog.String("checked_in_by", staffID),
	)
}

// Security logging methods

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
