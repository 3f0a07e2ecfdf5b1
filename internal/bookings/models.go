package bookings

import (
	"time"

	"festpass/pkg/calendar"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingType string

const (
	BookingTypeDaily  BookingType = "DAILY"
	BookingTypeAllDay BookingType = "ALL_DAY"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailure PaymentStatus = "FAILURE"
)

type BuyerDetails struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// Ticket is one admitted seat. Tickets bought together share a BookingReference
// and the same SelectedDates.
type Ticket struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	EventID          uuid.UUID       `json:"event_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_tickets_event_otp,priority:1"`
	UserID           uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	BookingReference string          `json:"booking_reference" gorm:"size:64;not null;index"`
	BookingType      BookingType     `json:"booking_type" gorm:"type:varchar(16);not null"`
	AmountPaid       decimal.Decimal `json:"amount_paid" gorm:"type:numeric(12,4);not null"`
	Currency         string          `json:"currency" gorm:"size:3;not null"`
	PaymentStatus    PaymentStatus   `json:"payment_status" gorm:"type:varchar(16);not null;index;check:payment_status IN ('PENDING','SUCCESS','FAILURE')"`
	BuyerDetails     BuyerDetails    `json:"buyer_details" gorm:"type:jsonb;serializer:json;not null"`
	SelectedDates    []calendar.Date `json:"selected_dates" gorm:"type:jsonb;serializer:json;not null"`
	OTP              string          `json:"-" gorm:"column:otp;size:6;not null;uniqueIndex:idx_tickets_event_otp,priority:2"`
	QRCodeHash       string          `json:"-" gorm:"column:qr_code_hash;size:64;not null;uniqueIndex"`
	CreatedAt        time.Time       `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt        time.Time       `json:"updated_at" gorm:"autoUpdateTime"`

	CheckIns []CheckIn `json:"check_ins,omitempty" gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE;"`
}

func (Ticket) TableName() string {
	return "tickets"
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ValidOn reports whether the ticket admits its holder on d.
func (t *Ticket) ValidOn(d calendar.Date) bool {
	return calendar.Contains(t.SelectedDates, d)
}

// CheckIn is an append-only redemption record, at most one per ticket and date.
type CheckIn struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	TicketID    uuid.UUID     `json:"ticket_id" gorm:"type:uuid;not null;uniqueIndex:idx_check_ins_ticket_date,priority:1"`
	EventID     uuid.UUID     `json:"event_id" gorm:"type:uuid;not null;index"`
	Date        calendar.Date `json:"date" gorm:"type:date;not null;uniqueIndex:idx_check_ins_ticket_date,priority:2"`
	CheckedInBy uuid.UUID     `json:"checked_in_by" gorm:"type:uuid;not null"`
	CheckedInAt time.Time     `json:"checked_in_at" gorm:"not null"`
}

func (CheckIn) TableName() string {
	return "check_ins"
}

func (c *CheckIn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DailyInventory counts live tickets per event day. It is the only row the
// booking path contends on.
type DailyInventory struct {
	EventID  uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Date     calendar.Date `gorm:"type:date;primaryKey"`
	Reserved int           `gorm:"not null;check:reserved >= 0"`
}

func (DailyInventory) TableName() string {
	return "daily_inventory"
}
