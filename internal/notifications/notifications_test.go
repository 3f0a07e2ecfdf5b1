package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"festpass/internal/bookings"
	"festpass/internal/events"
	"festpass/internal/shared/config"
	"festpass/pkg/calendar"
	"festpass/pkg/kafka"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() *events.Event {
	return &events.Event{
		ID:        uuid.New(),
		Title:     "Sunburn Goa",
		Venue:     "Vagator Beach",
		StartDate: calendar.MustParse("2026-12-01"),
		EndDate:   calendar.MustParse("2026-12-03"),
	}
}

func paidTicket(eventID uuid.UUID) bookings.Ticket {
	return bookings.Ticket{
		ID:               uuid.New(),
		EventID:          eventID,
		BookingReference: "TXN_1764547200_ABCDEF12",
		BookingType:      bookings.BookingTypeDaily,
		AmountPaid:       decimal.RequireFromString("1180.0000"),
		Currency:         "INR",
		PaymentStatus:    bookings.PaymentStatusSuccess,
		BuyerDetails:     bookings.BuyerDetails{Name: "Asha Rao", Email: "asha@example.com"},
		SelectedDates:    []calendar.Date{"2026-12-01", "2026-12-02"},
		OTP:              "482913",
		QRCodeHash:       "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
	}
}

func TestBuildTicketIssued(t *testing.T) {
	event := sampleEvent()
	ticket := paidTicket(event.ID)

	n := BuildTicketIssued(event, &ticket)

	assert.Equal(t, NotificationTypeTicketIssued, n.Type)
	assert.Equal(t, NotificationPriorityHigh, n.Priority)
	assert.Equal(t, "asha@example.com", n.RecipientEmail)
	assert.Equal(t, ticket.BookingReference, n.GetPartitionKey())
	require.NotNil(t, n.Ticket)
	assert.Equal(t, "1180.00", n.Ticket.AmountPaid)
	assert.Equal(t, []string{"2026-12-01", "2026-12-02"}, n.Ticket.Dates)
}

func TestTicketPublisher_PublishesOnePerTicket(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()
	producer.ExpectSendMessageAndSucceed()

	event := sampleEvent()
	publisher := NewTicketPublisher(kafka.NewSyncPublisherFromProducer(producer), "notifications")

	err := publisher.TicketsIssued(context.Background(), event, []bookings.Ticket{paidTicket(event.ID), paidTicket(event.ID)})

	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestTicketPublisher_ReportsFailures(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := sampleEvent()
	publisher := NewTicketPublisher(kafka.NewSyncPublisherFromProducer(producer), "notifications")

	err := publisher.TicketsIssued(context.Background(), event, []bookings.Ticket{paidTicket(event.ID)})

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestRenderTicketEmail(t *testing.T) {
	event := sampleEvent()
	ticket := paidTicket(event.ID)

	email, err := RenderTicketEmail(BuildTicketIssued(event, &ticket))
	require.NoError(t, err)

	assert.Equal(t, "asha@example.com", email.To)
	assert.Equal(t, "Your ticket for Sunburn Goa", email.Subject)
	assert.Contains(t, email.TextBody, "Entry code: 482913")
	assert.Contains(t, email.TextBody, "Valid on: 2026-12-01, 2026-12-02")
	assert.Contains(t, email.HTMLBody, "Vagator Beach")

	require.Len(t, email.Attachments, 1)
	qr := email.Attachments[0]
	assert.Equal(t, qrAttachmentName, qr.Name)
	// JPEG start-of-image marker
	assert.True(t, bytes.HasPrefix(qr.Data, []byte{0xFF, 0xD8}))
}

func TestRenderTicketEmail_RequiresTicket(t *testing.T) {
	_, err := RenderTicketEmail(&EmailNotification{Type: NotificationTypeTicketIssued})
	assert.Error(t, err)
}

func TestSMTPSender_BuildMessage(t *testing.T) {
	sender, err := NewSMTPSender(config.EmailConfig{
		SMTPHost:  "smtp.example.com",
		SMTPPort:  587,
		FromEmail: "tickets@festpass.example",
		FromName:  "FestPass",
	})
	require.NoError(t, err)

	msg, err := sender.buildMessage(&Email{
		To:          "asha@example.com",
		ToName:      "Asha Rao",
		Subject:     "Your ticket",
		TextBody:    "hello",
		HTMLBody:    "<p>hello</p>",
		Attachments: []Attachment{{Name: qrAttachmentName, ContentType: "image/jpeg", Data: []byte{0xFF, 0xD8}}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Your ticket")
	assert.Contains(t, raw, "asha@example.com")
	assert.Contains(t, raw, qrAttachmentName)
}

func TestNewSMTPSender_ValidatesConfig(t *testing.T) {
	_, err := NewSMTPSender(config.EmailConfig{SMTPPort: 587, FromEmail: "a@b.c"})
	assert.Error(t, err)

	_, err = NewSMTPSender(config.EmailConfig{SMTPHost: "smtp", SMTPPort: 0, FromEmail: "a@b.c"})
	assert.Error(t, err)

	_, err = NewSMTPSender(config.EmailConfig{SMTPHost: "smtp", SMTPPort: 587})
	assert.Error(t, err)
}

type recordingSender struct {
	sent []*Email
	err  error
}

func (s *recordingSender) Send(_ context.Context, email *Email) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, email)
	return nil
}

func TestHandler_DeliversTicketIssued(t *testing.T) {
	event := sampleEvent()
	ticket := paidTicket(event.ID)
	payload, err := BuildTicketIssued(event, &ticket).ToJSON()
	require.NoError(t, err)

	sender := &recordingSender{}
	err = Handler(sender)(context.Background(), &sarama.ConsumerMessage{Value: payload})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "asha@example.com", sender.sent[0].To)
}

func TestHandler_SkipsUnknownAndMalformed(t *testing.T) {
	handler := Handler(&recordingSender{})

	for name, value := range map[string][]byte{
		"not json":       []byte("<xml/>"),
		"unknown type":   []byte(`{"type":"WAITLIST_SPOT_AVAILABLE"}`),
		"missing ticket": []byte(`{"type":"TICKET_ISSUED","recipient_email":"a@b.c"}`),
	} {
		t.Run(name, func(t *testing.T) {
			err := handler(context.Background(), &sarama.ConsumerMessage{Value: value})
			assert.ErrorIs(t, err, kafka.ErrSkip)
		})
	}
}

func TestHandler_RetriesSendFailures(t *testing.T) {
	event := sampleEvent()
	ticket := paidTicket(event.ID)
	n := BuildTicketIssued(event, &ticket)
	payload, err := json.Marshal(n)
	require.NoError(t, err)

	smtpDown := errors.New("connection refused")
	err = Handler(&recordingSender{err: smtpDown})(context.Background(), &sarama.ConsumerMessage{Value: payload})

	assert.ErrorIs(t, err, smtpDown)
}
