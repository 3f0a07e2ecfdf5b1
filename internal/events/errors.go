package events

import "errors"

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrForbidden             = errors.New("you can only manage events you created")
	ErrInvalidDateRange      = errors.New("end_date must not be before start_date")
	ErrSpanTooLong           = errors.New("event cannot run longer than 366 days")
	ErrInvalidTicketConfig   = errors.New("invalid ticket configuration")
	ErrCapacityBelowReserved = errors.New("daily capacity cannot be lowered below tickets already reserved")
	ErrSpanExcludesReserved  = errors.New("date range cannot drop days that already have reservations")
	ErrEventHasBookings      = errors.New("cannot delete event with existing bookings")
)
