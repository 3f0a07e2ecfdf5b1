package bookings

// BuyerRequest mirrors the purchaser block of the checkout form.
type BuyerRequest struct {
	Name   string `json:"name" binding:"required,min=1,max=100"`
	Email  string `json:"email" binding:"required,email"`
	Phone  string `json:"phone" binding:"omitempty,max=20"`
	Age    int    `json:"age" binding:"omitempty,min=0,max=130"`
	Gender string `json:"gender" binding:"omitempty,max=20"`
}

// InitiateBookingRequest is the body of POST /bookings/initiate. Quantity and
// dates are left to the normalizer so quantity is always judged first.
type InitiateBookingRequest struct {
	EventID       string       `json:"eventId" binding:"required,uuid"`
	User          BuyerRequest `json:"user" binding:"required"`
	Quantity      int          `json:"quantity"`
	BookingType   string       `json:"bookingType" binding:"required"`
	SelectedDates []string     `json:"selectedDates"`
}

type TicketListQuery struct {
	Page    int    `form:"page" binding:"omitempty,min=1"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status  string `form:"status" binding:"omitempty,oneof=PENDING SUCCESS FAILURE"`
	EventID string `form:"event_id" binding:"omitempty,uuid"`
	Date    string `form:"date" binding:"omitempty,calendar_date"`
}
