package events

import "github.com/shopspring/decimal"

type OfferRequest struct {
	Code        string          `json:"code" binding:"required,max=50"`
	Description string          `json:"description" binding:"max=255"`
	Percentage  decimal.Decimal `json:"percentage"`
}

type TicketConfigRequest struct {
	Price       decimal.Decimal  `json:"price"`
	AllDayPrice *decimal.Decimal `json:"all_day_price"`
	Currency    string           `json:"currency" binding:"omitempty,len=3"`
	Quantity    int              `json:"quantity" binding:"omitempty,min=1,max=100000"`
	Offers      []OfferRequest   `json:"offers" binding:"omitempty,dive"`
}

type CreateEventRequest struct {
	Title        string              `json:"title" binding:"required,min=3,max=255"`
	Description  string              `json:"description" binding:"max=5000"`
	Venue        string              `json:"venue" binding:"max=255"`
	IsOnline     bool                `json:"is_online"`
	StartDate    string              `json:"start_date" binding:"required,calendar_date"`
	EndDate      string              `json:"end_date" binding:"required,calendar_date"`
	TicketConfig TicketConfigRequest `json:"ticket_config" binding:"required"`
}

type UpdateEventRequest struct {
	Title        *string              `json:"title" binding:"omitempty,min=3,max=255"`
	Description  *string              `json:"description" binding:"omitempty,max=5000"`
	Venue        *string              `json:"venue" binding:"omitempty,max=255"`
	IsOnline     *bool                `json:"is_online"`
	StartDate    *string              `json:"start_date" binding:"omitempty,calendar_date"`
	EndDate      *string              `json:"end_date" binding:"omitempty,calendar_date"`
	TicketConfig *TicketConfigRequest `json:"ticket_config"`
}

type EventListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search string `form:"search" binding:"max=100"`
	From   string `form:"from" binding:"omitempty,calendar_date"`
	To     string `form:"to" binding:"omitempty,calendar_date"`
}
