package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"festpass/internal/bookings"
	"festpass/internal/events"
	"festpass/pkg/calendar"
	"festpass/pkg/kafka"
	"festpass/pkg/logger"
	"festpass/pkg/metrics"
)

const headerMessageType = "message-type"

// TicketPublisher queues one TICKET_ISSUED email per paid ticket.
type TicketPublisher struct {
	publisher kafka.Publisher
	topic     string
	log       *logger.Logger
}

func NewTicketPublisher(publisher kafka.Publisher, topic string) *TicketPublisher {
	return &TicketPublisher{
		publisher: publisher,
		topic:     topic,
		log:       logger.GetDefault().WithComponent("notifications.producer"),
	}
}

// TicketsIssued implements bookings.TicketNotifier.
func (p *TicketPublisher) TicketsIssued(ctx context.Context, event *events.Event, tickets []bookings.Ticket) error {
	var errs []error
	for i := range tickets {
		notification := BuildTicketIssued(event, &tickets[i])

		if err := p.publish(ctx, notification); err != nil {
			metrics.IncNotification("publish", "error")
			errs = append(errs, fmt.Errorf("ticket %s: %w", tickets[i].ID, err))
			continue
		}
		metrics.IncNotification("publish", "success")
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	p.log.InfoContext(ctx, "ticket notifications queued",
		slog.String("event_id", event.ID.String()), slog.Int("tickets", len(tickets)))
	return nil
}

func (p *TicketPublisher) publish(ctx context.Context, notification *EmailNotification) error {
	payload, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	return p.publisher.Publish(ctx, p.topic, notification.GetPartitionKey(), payload, map[string]string{
		headerMessageType: string(notification.Type),
		"priority":        string(notification.Priority),
	})
}

func (p *TicketPublisher) Close() error {
	return p.publisher.Close()
}

// BuildTicketIssued renders a paid ticket into its delivery notification.
func BuildTicketIssued(event *events.Event, ticket *bookings.Ticket) *EmailNotification {
	return NewNotificationBuilder().
		WithType(NotificationTypeTicketIssued).
		WithRecipient(ticket.BuyerDetails.Email, ticket.BuyerDetails.Name).
		WithSubject(fmt.Sprintf("Your ticket for %s", event.Title)).
		WithTicket(TicketDetails{
			TicketID:         ticket.ID.String(),
			BookingReference: ticket.BookingReference,
			EventID:          event.ID.String(),
			EventTitle:       event.Title,
			Venue:            event.Venue,
			BookingType:      string(ticket.BookingType),
			Dates:            calendar.Strings(ticket.SelectedDates),
			OTP:              ticket.OTP,
			QRCodeHash:       ticket.QRCodeHash,
			AmountPaid:       ticket.AmountPaid.StringFixed(2),
			Currency:         ticket.Currency,
		}).
		Build()
}
