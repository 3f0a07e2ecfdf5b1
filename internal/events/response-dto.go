package events

import (
	"time"

	"festpass/pkg/calendar"
)

type EventResponse struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Slug         string        `json:"slug"`
	Description  string        `json:"description"`
	Venue        string        `json:"venue"`
	IsOnline     bool          `json:"is_online"`
	StartDate    calendar.Date `json:"start_date"`
	EndDate      calendar.Date `json:"end_date"`
	Days         int           `json:"days"`
	TicketConfig TicketConfig  `json:"ticket_config"`
	CreatedBy    string        `json:"created_by"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// DayAvailability is the inventory state of one event day.
type DayAvailability struct {
	Date      calendar.Date `json:"date"`
	Capacity  int           `json:"capacity"`
	Reserved  int           `json:"reserved"`
	Remaining int           `json:"remaining"`
	SoldOut   bool          `json:"sold_out"`
}

type AvailabilityResponse struct {
	EventID       string            `json:"event_id"`
	DailyCapacity int               `json:"daily_capacity"`
	AllDayOpen    bool              `json:"all_day_open"`
	Days          []DayAvailability `json:"days"`
}
