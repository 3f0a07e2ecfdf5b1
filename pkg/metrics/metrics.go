package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	bookingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "festpass_booking_requests_total",
			Help: "Booking initiation attempts by booking type and outcome",
		},
		[]string{"booking_type", "result"},
	)

	ticketsReserved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "festpass_tickets_reserved_total",
			Help: "Tickets materialized in PENDING state",
		},
		[]string{"booking_type"},
	)

	bookingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "festpass_booking_duration_seconds",
			Help:    "Latency of the normalize, reserve and materialize pipeline",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	paymentSettlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "festpass_payment_settlements_total",
			Help: "Payment results applied to bookings",
		},
		[]string{"status"},
	)

	ticketsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "festpass_tickets_expired_total",
			Help: "Pending tickets released by the expiry job",
		},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "festpass_checkins_total",
			Help: "Check-in attempts by outcome",
		},
		[]string{"result"},
	)

	notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "festpass_notifications_total",
			Help: "Ticket notifications by stage and outcome",
		},
		[]string{"stage", "result"},
	)
)

// ObserveBooking records the outcome of one booking initiation.
func ObserveBooking(bookingType, result string, started time.Time) {
	bookingRequests.WithLabelValues(bookingType, result).Inc()
	bookingDuration.WithLabelValues(result).Observe(time.Since(started).Seconds())
}

func AddTicketsReserved(bookingType string, n int) {
	ticketsReserved.WithLabelValues(bookingType).Add(float64(n))
}

func IncSettlement(status string) {
	paymentSettlements.WithLabelValues(status).Inc()
}

func AddExpired(n int64) {
	ticketsExpired.Add(float64(n))
}

func IncCheckIn(result string) {
	checkIns.WithLabelValues(result).Inc()
}

// IncNotification counts notifications; stage is "publish" or "deliver".
func IncNotification(stage, result string) {
	notifications.WithLabelValues(stage, result).Inc()
}

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
