package events

import (
	"time"

	"festpass/pkg/calendar"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Offer is a percentage discount advertised on an event. Offers are stored and
// returned to clients; the booking flow does not apply them.
type Offer struct {
	Code        string          `json:"code"`
	Description string          `json:"description,omitempty"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// TicketConfig is the pricing and capacity block stored as jsonb.
type TicketConfig struct {
	Price       decimal.Decimal  `json:"price"`
	AllDayPrice *decimal.Decimal `json:"all_day_price,omitempty"`
	Currency    string           `json:"currency"`
	// Quantity is the per-day capacity; it applies to every date in the span
	Quantity int     `json:"quantity,omitempty"`
	Offers   []Offer `json:"offers,omitempty"`
}

type Event struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string        `json:"title" gorm:"not null;size:255"`
	Slug         string        `json:"slug" gorm:"uniqueIndex;not null;size:300"`
	Description  string        `json:"description" gorm:"type:text"`
	Venue        string        `json:"venue" gorm:"size:255"`
	IsOnline     bool          `json:"is_online" gorm:"not null;default:false"`
	StartDate    calendar.Date `json:"start_date" gorm:"type:date;not null;index"`
	EndDate      calendar.Date `json:"end_date" gorm:"type:date;not null"`
	TicketConfig TicketConfig  `json:"ticket_config" gorm:"type:jsonb;serializer:json;not null"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// DailyCapacity returns the per-day ticket limit, or fallback when unset.
func (e *Event) DailyCapacity(fallback int) int {
	if e.TicketConfig.Quantity > 0 {
		return e.TicketConfig.Quantity
	}
	return fallback
}

// Dates expands the inclusive start..end span.
func (e *Event) Dates() []calendar.Date {
	return calendar.Span(e.StartDate, e.EndDate)
}

// Covers reports whether d falls inside the event span.
func (e *Event) Covers(d calendar.Date) bool {
	return d.Within(e.StartDate, e.EndDate)
}

// SupportsAllDay reports whether a season pass price is configured.
func (e *Event) SupportsAllDay() bool {
	return e.TicketConfig.AllDayPrice != nil
}

func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:           e.ID.String(),
		Title:        e.Title,
		Slug:         e.Slug,
		Description:  e.Description,
		Venue:        e.Venue,
		IsOnline:     e.IsOnline,
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		Days:         len(e.Dates()),
		TicketConfig: e.TicketConfig,
		CreatedBy:    e.CreatedBy.String(),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
