package bookings

import (
	"fmt"
	"strings"
	"time"

	"festpass/internal/events"
	"festpass/internal/shared/config"
	"festpass/pkg/calendar"

	"github.com/shopspring/decimal"
)

// BookingRequest is a purchase attempt after transport decoding.
type BookingRequest struct {
	Buyer         BuyerDetails
	Quantity      int
	BookingType   string
	SelectedDates []string
}

// NormalizedBooking is a request resolved against its event: concrete days,
// the untaxed amount and a description for the gateway.
type NormalizedBooking struct {
	Type        BookingType
	Quantity    int
	Dates       []calendar.Date
	Base        decimal.Decimal
	Currency    string
	ProductInfo string
}

// ValidateQuantity runs before anything else touches the request.
func ValidateQuantity(quantity, max int) error {
	if max < 1 || max > config.MaxTicketsPerBooking {
		max = config.MaxTicketsPerBooking
	}
	if quantity < 1 || quantity > max {
		return fmt.Errorf("%w: must be between 1 and %d", ErrInvalidQuantity, max)
	}
	return nil
}

// Normalize expands req to the days it covers and prices it. Daily dates are
// parsed in loc, deduplicated and sorted.
func Normalize(event *events.Event, req BookingRequest, loc *time.Location) (*NormalizedBooking, error) {
	bookingType := BookingType(strings.ToUpper(strings.TrimSpace(req.BookingType)))
	quantity := decimal.NewFromInt(int64(req.Quantity))

	out := &NormalizedBooking{
		Type:     bookingType,
		Quantity: req.Quantity,
		Currency: event.TicketConfig.Currency,
	}

	switch bookingType {
	case BookingTypeAllDay:
		if !event.SupportsAllDay() {
			return nil, ErrUnsupportedBookingType
		}
		out.Dates = event.Dates()
		out.Base = event.TicketConfig.AllDayPrice.Mul(quantity)

	case BookingTypeDaily:
		if len(req.SelectedDates) == 0 {
			return nil, ErrNoDatesSelected
		}
		dates := make([]calendar.Date, 0, len(req.SelectedDates))
		for _, raw := range req.SelectedDates {
			d, err := calendar.Parse(raw, loc)
			if err != nil {
				return nil, &DateOutOfRangeError{Date: raw}
			}
			if !event.Covers(d) {
				return nil, &DateOutOfRangeError{Date: d.String()}
			}
			dates = append(dates, d)
		}
		out.Dates = calendar.Unique(dates)
		days := decimal.NewFromInt(int64(len(out.Dates)))
		out.Base = event.TicketConfig.Price.Mul(quantity).Mul(days)

	default:
		return nil, ErrUnsupportedBookingType
	}

	out.ProductInfo = productInfo(event.Title, out)
	return out, nil
}

func productInfo(title string, b *NormalizedBooking) string {
	if b.Type == BookingTypeAllDay {
		return fmt.Sprintf("%s - All-day pass x%d", title, b.Quantity)
	}
	return fmt.Sprintf("%s - Daily pass x%d (%s)", title, b.Quantity,
		strings.Join(calendar.Strings(b.Dates), ", "))
}
