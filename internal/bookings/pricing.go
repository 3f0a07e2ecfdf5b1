package bookings

import "github.com/shopspring/decimal"

// perTicketPlaces keeps the equal split exact enough that rounding the sum to
// paise reproduces the gateway amount.
const perTicketPlaces = 4

type Quote struct {
	Base      decimal.Decimal `json:"base"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	PerTicket decimal.Decimal `json:"per_ticket"`
	Currency  string          `json:"currency"`
}

// Price applies taxRate to base and splits the total evenly over quantity.
func Price(base, taxRate decimal.Decimal, quantity int, currency string) Quote {
	tax := base.Mul(taxRate)
	total := base.Add(tax)
	return Quote{
		Base:      base,
		Tax:       tax,
		Total:     total,
		PerTicket: total.DivRound(decimal.NewFromInt(int64(quantity)), perTicketPlaces),
		Currency:  currency,
	}
}
