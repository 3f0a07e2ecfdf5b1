package notifications

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"festpass/internal/shared/config"

	"github.com/wneessen/go-mail"
	"github.com/yeqown/go-qrcode"
)

const qrAttachmentName = "ticket-qr.jpeg"

// Email is a rendered message ready for delivery.
type Email struct {
	To          string
	ToName      string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []Attachment
}

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// EmailSender delivers rendered emails.
type EmailSender interface {
	Send(ctx context.Context, email *Email) error
}

type SMTPSender struct {
	cfg config.EmailConfig
}

func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	if err := validateSMTPConfig(cfg); err != nil {
		return nil, err
	}
	return &SMTPSender{cfg: cfg}, nil
}

func validateSMTPConfig(cfg config.EmailConfig) error {
	if cfg.SMTPHost == "" {
		return errors.New("SMTP host is required")
	}
	if cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535 {
		return errors.New("SMTP port must be between 1 and 65535")
	}
	if cfg.FromEmail == "" {
		return errors.New("from email is required")
	}
	return nil
}

func (s *SMTPSender) Send(ctx context.Context, email *Email) error {
	msg, err := s.buildMessage(email)
	if err != nil {
		return err
	}

	opts := []mail.Option{mail.WithPort(s.cfg.SMTPPort)}
	if s.cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.SMTPUsername),
			mail.WithPassword(s.cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(s.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *SMTPSender) buildMessage(email *Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.cfg.FromName, s.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.AddToFormat(email.ToName, email.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", email.To, err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.TextBody)
	if email.HTMLBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTMLBody)
	}

	for _, a := range email.Attachments {
		if err := msg.AttachReader(a.Name, bytes.NewReader(a.Data),
			mail.WithFileContentType(mail.ContentType(a.ContentType))); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Name, err)
		}
	}
	return msg, nil
}

var ticketHTML = template.Must(template.New("ticket").Parse(`<h2>Your ticket for {{.EventTitle}}</h2>
<p>Hi {{.Name}},</p>
<p>Your payment for booking <strong>{{.BookingReference}}</strong> went through.</p>
<p>Valid on: {{range $i, $d := .Dates}}{{if $i}}, {{end}}{{$d}}{{end}}</p>
{{if .Venue}}<p>Venue: {{.Venue}}</p>{{end}}
<p>Entry code: <strong>{{.OTP}}</strong></p>
<p>Show the attached QR code or the entry code at the gate.</p>
<p>Amount paid: {{.AmountPaid}} {{.Currency}}</p>
`))

var ticketText = texttemplate.Must(texttemplate.New("ticket").Parse(`Hi {{.Name}},

Your payment for booking {{.BookingReference}} went through.
Event: {{.EventTitle}}
Valid on: {{.DateList}}
Entry code: {{.OTP}}
Amount paid: {{.AmountPaid}} {{.Currency}}

Show the attached QR code or the entry code at the gate.
`))

type ticketView struct {
	TicketDetails
	Name     string
	DateList string
}

// RenderTicketEmail turns a TICKET_ISSUED notification into an email with the
// QR code attached.
func RenderTicketEmail(n *EmailNotification) (*Email, error) {
	if n.Ticket == nil {
		return nil, errors.New("ticket notification has no ticket")
	}

	view := ticketView{
		TicketDetails: *n.Ticket,
		Name:          n.RecipientName,
		DateList:      strings.Join(n.Ticket.Dates, ", "),
	}

	var html, text bytes.Buffer
	if err := ticketHTML.Execute(&html, view); err != nil {
		return nil, fmt.Errorf("failed to render html body: %w", err)
	}
	if err := ticketText.Execute(&text, view); err != nil {
		return nil, fmt.Errorf("failed to render text body: %w", err)
	}

	qr, err := RenderQR(n.Ticket.QRCodeHash)
	if err != nil {
		return nil, err
	}

	return &Email{
		To:       n.RecipientEmail,
		ToName:   n.RecipientName,
		Subject:  n.Subject,
		HTMLBody: html.String(),
		TextBody: text.String(),
		Attachments: []Attachment{
			{Name: qrAttachmentName, ContentType: "image/jpeg", Data: qr},
		},
	}, nil
}

// RenderQR encodes content as a JPEG QR code.
func RenderQR(content string) ([]byte, error) {
	qrc, err := qrcode.New(content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return buf.Bytes(), nil
}
