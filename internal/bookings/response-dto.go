package bookings

import (
	"time"

	"festpass/internal/payments"
	"festpass/pkg/calendar"

	"github.com/shopspring/decimal"
)

// InitiateBookingResponse is the success body of POST /bookings/initiate.
type InitiateBookingResponse struct {
	Success          bool              `json:"success"`
	BookingReference string            `json:"bookingReference"`
	PayuParams       *payments.Handoff `json:"payuParams"`
}

// InitiateBookingError is the failure body of POST /bookings/initiate.
type InitiateBookingError struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	Date      string `json:"date,omitempty"`
	Remaining *int   `json:"remaining,omitempty"`
}

// InitiateResult is what the service hands back to transports.
type InitiateResult struct {
	Reference string
	Handoff   *payments.Handoff
	Quote     Quote
	Tickets   []Ticket
}

type CheckInInfo struct {
	Date        calendar.Date `json:"date"`
	CheckedInAt time.Time     `json:"checked_in_at"`
}

type TicketResponse struct {
	ID            string          `json:"id"`
	EventID       string          `json:"event_id"`
	BookingType   BookingType     `json:"booking_type"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Currency      string          `json:"currency"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	BuyerDetails  BuyerDetails    `json:"buyer_details"`
	SelectedDates []calendar.Date `json:"selected_dates"`
	// secrets are only revealed once paid
	OTP        string        `json:"otp,omitempty"`
	QRCodeHash string        `json:"qr_code_hash,omitempty"`
	CheckIns   []CheckInInfo `json:"check_ins"`
	CreatedAt  time.Time     `json:"created_at"`
}

type BookingResponse struct {
	BookingReference string           `json:"booking_reference"`
	EventID          string           `json:"event_id"`
	PaymentStatus    PaymentStatus    `json:"payment_status"`
	TotalPaid        decimal.Decimal  `json:"total_paid"`
	Tickets          []TicketResponse `json:"tickets"`
}

type PaginatedTickets struct {
	Tickets    []TicketResponse `json:"tickets"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

type SettlementResponse struct {
	BookingReference string        `json:"booking_reference"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	Transitioned     int           `json:"transitioned"`
}

func (t *Ticket) ToResponse() TicketResponse {
	resp := TicketResponse{
		ID:            t.ID.String(),
		EventID:       t.EventID.String(),
		BookingType:   t.BookingType,
		AmountPaid:    t.AmountPaid,
		Currency:      t.Currency,
		PaymentStatus: t.PaymentStatus,
		BuyerDetails:  t.BuyerDetails,
		SelectedDates: t.SelectedDates,
		CheckIns:      make([]CheckInInfo, 0, len(t.CheckIns)),
		CreatedAt:     t.CreatedAt,
	}
	if t.PaymentStatus == PaymentStatusSuccess {
		resp.OTP = t.OTP
		resp.QRCodeHash = t.QRCodeHash
	}
	for _, c := range t.CheckIns {
		resp.CheckIns = append(resp.CheckIns, CheckInInfo{Date: c.Date, CheckedInAt: c.CheckedInAt})
	}
	return resp
}

// BuildBookingResponse summarises the tickets of one booking reference.
func BuildBookingResponse(tickets []Ticket) BookingResponse {
	resp := BookingResponse{
		Tickets:   make([]TicketResponse, 0, len(tickets)),
		TotalPaid: decimal.Zero,
	}
	if len(tickets) == 0 {
		return resp
	}

	resp.BookingReference = tickets[0].BookingReference
	resp.EventID = tickets[0].EventID.String()
	resp.PaymentStatus = tickets[0].PaymentStatus

	for i := range tickets {
		resp.Tickets = append(resp.Tickets, tickets[i].ToResponse())
		resp.TotalPaid = resp.TotalPaid.Add(tickets[i].AmountPaid)
	}
	resp.TotalPaid = resp.TotalPaid.Round(2)
	return resp
}
