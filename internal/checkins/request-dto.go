package checkins

// CheckInRequest is scanned at the gate. Code is the 6-digit OTP or the QR hash.
type CheckInRequest struct {
	EventID string `json:"event_id" binding:"required,uuid"`
	Code    string `json:"code" binding:"required,min=6,max=64"`
	Date    string `json:"date" binding:"omitempty,calendar_date"`
}
