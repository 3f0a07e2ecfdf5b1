package bookings

import (
	"errors"
	"fmt"

	"festpass/pkg/calendar"
)

const (
	CodeNotFound               = "NOT_FOUND"
	CodeInvalidQuantity        = "INVALID_QUANTITY"
	CodeUnsupportedBookingType = "UNSUPPORTED_BOOKING_TYPE"
	CodeDateOutOfRange         = "DATE_OUT_OF_RANGE"
	CodeNoDatesSelected        = "NO_DATES_SELECTED"
	CodeSoldOut                = "SOLD_OUT"
	CodeInternal               = "INTERNAL_ERROR"
)

var (
	ErrEventNotFound          = errors.New("event not found")
	ErrInvalidQuantity        = errors.New("invalid ticket quantity")
	ErrUnsupportedBookingType = errors.New("booking type is not supported for this event")
	ErrNoDatesSelected        = errors.New("daily bookings require at least one selected date")
	ErrBookingNotFound        = errors.New("booking not found")
	ErrForbidden              = errors.New("booking belongs to another user")
	ErrSecretsExhausted       = errors.New("could not allocate unique ticket secrets")
)

// DateOutOfRangeError names a requested date outside the event span.
type DateOutOfRangeError struct {
	Date string
}

func (e *DateOutOfRangeError) Error() string {
	return fmt.Sprintf("date %s is outside the event dates", e.Date)
}

// SoldOutError names the first day that could not admit the requested quantity.
type SoldOutError struct {
	Date      calendar.Date
	Remaining int
}

func (e *SoldOutError) Error() string {
	if e.Remaining <= 0 {
		return fmt.Sprintf("tickets for %s are sold out", e.Date)
	}
	return fmt.Sprintf("only %d tickets left for %s", e.Remaining, e.Date)
}

// Code returns the wire error code for err.
func Code(err error) string {
	var outOfRange *DateOutOfRangeError
	var soldOut *SoldOutError

	switch {
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrBookingNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidQuantity):
		return CodeInvalidQuantity
	case errors.Is(err, ErrUnsupportedBookingType):
		return CodeUnsupportedBookingType
	case errors.Is(err, ErrNoDatesSelected):
		return CodeNoDatesSelected
	case errors.As(err, &outOfRange):
		return CodeDateOutOfRange
	case errors.As(err, &soldOut):
		return CodeSoldOut
	default:
		return CodeInternal
	}
}
