package checkins

import (
	"time"

	"festpass/internal/bookings"
	"festpass/pkg/calendar"
)

type CheckInResponse struct {
	TicketID         string               `json:"ticket_id"`
	BookingReference string               `json:"booking_reference"`
	EventID          string               `json:"event_id"`
	BookingType      bookings.BookingType `json:"booking_type"`
	HolderName       string               `json:"holder_name"`
	Date             calendar.Date        `json:"date"`
	ValidDates       []calendar.Date      `json:"valid_dates"`
	CheckedInAt      time.Time            `json:"checked_in_at"`
	CheckedInBy      string               `json:"checked_in_by"`
}

func buildResponse(ticket *bookings.Ticket, record *bookings.CheckIn) CheckInResponse {
	return CheckInResponse{
		TicketID:         ticket.ID.String(),
		BookingReference: ticket.BookingReference,
		EventID:          ticket.EventID.String(),
		BookingType:      ticket.BookingType,
		HolderName:       ticket.BuyerDetails.Name,
		Date:             record.Date,
		ValidDates:       ticket.SelectedDates,
		CheckedInAt:      record.CheckedInAt,
		CheckedInBy:      record.CheckedInBy.String(),
	}
}
