package notifications

import (
	"context"
	"encoding/json"
	"log/slog"

	"festpass/pkg/kafka"
	"festpass/pkg/logger"
	"festpass/pkg/metrics"

	"github.com/IBM/sarama"
	"github.com/tidwall/gjson"
)

// Handler routes notification messages by type and delivers them over sender.
func Handler(sender EmailSender) kafka.Handler {
	log := logger.GetDefault().WithComponent("notifications.consumer")

	return func(ctx context.Context, message *sarama.ConsumerMessage) error {
		if !gjson.ValidBytes(message.Value) {
			log.WarnContext(ctx, "dropping malformed notification", slog.Int64("offset", message.Offset))
			metrics.IncNotification("consume", "malformed")
			return kafka.ErrSkip
		}

		switch NotificationType(gjson.GetBytes(message.Value, "type").String()) {
		case NotificationTypeTicketIssued:
			return deliverTicket(ctx, sender, message.Value, log)
		default:
			metrics.IncNotification("consume", "unknown_type")
			return kafka.ErrSkip
		}
	}
}

func deliverTicket(ctx context.Context, sender EmailSender, payload []byte, log *logger.Logger) error {
	var notification EmailNotification
	if err := json.Unmarshal(payload, &notification); err != nil {
		metrics.IncNotification("consume", "malformed")
		return kafka.ErrSkip
	}

	email, err := RenderTicketEmail(&notification)
	if err != nil {
		log.WarnContext(ctx, "cannot render ticket email",
			slog.String("notification_id", notification.ID.String()), slog.Any("error", err))
		metrics.IncNotification("consume", "malformed")
		return kafka.ErrSkip
	}

	if err := sender.Send(ctx, email); err != nil {
		metrics.IncNotification("send", "error")
		return err
	}

	metrics.IncNotification("send", "success")
	log.InfoContext(ctx, "ticket email sent",
		slog.String("notification_id", notification.ID.String()),
		slog.String("booking_reference", notification.Ticket.BookingReference))
	return nil
}
