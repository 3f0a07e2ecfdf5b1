package bookings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"festpass/pkg/logger"

	"github.com/go-co-op/gocron/v2"
)

const expiryJobName = "expire-pending-tickets"

// NewExpiryScheduler runs ExpirePending every interval. Overlapping runs are
// skipped rather than queued.
func NewExpiryScheduler(svc Service, interval, timeout time.Duration) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	log := logger.GetDefault().WithComponent("bookings.expiry")

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			runExpiry(svc, timeout, log)
		}),
		gocron.WithName(expiryJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule %s: %w", expiryJobName, err)
	}

	return scheduler, nil
}

func runExpiry(svc Service, timeout time.Duration, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := svc.ExpirePending(ctx); err != nil {
		log.ErrorContext(ctx, "pending ticket expiry failed", slog.Any("error", err))
	}
}
