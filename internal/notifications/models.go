package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeTicketIssued NotificationType = "TICKET_ISSUED"
)

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityMedium NotificationPriority = "MEDIUM"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

// TicketDetails is everything the holder needs at the gate.
type TicketDetails struct {
	TicketID         string   `json:"ticket_id"`
	BookingReference string   `json:"booking_reference"`
	EventID          string   `json:"event_id"`
	EventTitle       string   `json:"event_title"`
	Venue            string   `json:"venue,omitempty"`
	BookingType      string   `json:"booking_type"`
	Dates            []string `json:"dates"`
	OTP              string   `json:"otp"`
	QRCodeHash       string   `json:"qr_code_hash"`
	AmountPaid       string   `json:"amount_paid"`
	Currency         string   `json:"currency"`
}

type EmailNotification struct {
	ID       uuid.UUID            `json:"id"`
	Type     NotificationType     `json:"type"`
	Priority NotificationPriority `json:"priority"`

	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`
	Subject        string `json:"subject"`

	Ticket *TicketDetails `json:"ticket,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type NotificationBuilder struct {
	notification *EmailNotification
}

func NewNotificationBuilder() *NotificationBuilder {
	return &NotificationBuilder{
		notification: &EmailNotification{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
	}
}

func (nb *NotificationBuilder) WithType(notType NotificationType) *NotificationBuilder {
	nb.notification.Type = notType
	nb.notification.Priority = GetDefaultPriority(notType)
	return nb
}

func (nb *NotificationBuilder) WithRecipient(email, name string) *NotificationBuilder {
	nb.notification.RecipientEmail = email
	nb.notification.RecipientName = name
	return nb
}

func (nb *NotificationBuilder) WithSubject(subject string) *NotificationBuilder {
	nb.notification.Subject = subject
	return nb
}

func (nb *NotificationBuilder) WithTicket(ticket TicketDetails) *NotificationBuilder {
	nb.notification.Ticket = &ticket
	return nb
}

func (nb *NotificationBuilder) Build() *EmailNotification {
	return nb.notification
}

func GetDefaultPriority(notType NotificationType) NotificationPriority {
	switch notType {
	case NotificationTypeTicketIssued:
		return NotificationPriorityHigh
	default:
		return NotificationPriorityMedium
	}
}

// GetPartitionKey keeps every notification of a booking on one partition.
func (en *EmailNotification) GetPartitionKey() string {
	if en.Ticket != nil && en.Ticket.BookingReference != "" {
		return en.Ticket.BookingReference
	}
	return en.RecipientEmail
}

func (en *EmailNotification) ToJSON() ([]byte, error) {
	return json.Marshal(en)
}
