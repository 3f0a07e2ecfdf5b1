package bookings

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var gst = decimal.RequireFromString("0.18")

func TestPrice_TwoTicketsTwoDays(t *testing.T) {
	// 500 per day, 2 tickets, 2 days
	quote := Price(decimal.NewFromInt(2000), gst, 2, "INR")

	assert.Equal(t, "360", quote.Tax.String())
	assert.Equal(t, "2360", quote.Total.String())
	assert.Equal(t, "1180", quote.PerTicket.String())
	assert.Equal(t, "INR", quote.Currency)
}

func TestPrice_SplitSumsBackToTotal(t *testing.T) {
	for _, tc := range []struct {
		base     string
		quantity int
	}{
		{"999.99", 3},
		{"100", 7},
		{"1", 9},
		{"12345.67", 10},
	} {
		quote := Price(decimal.RequireFromString(tc.base), gst, tc.quantity, "INR")

		sum := quote.PerTicket.Mul(decimal.NewFromInt(int64(tc.quantity)))
		assert.Equal(t, quote.Total.StringFixed(2), sum.StringFixed(2),
			"base %s quantity %d", tc.base, tc.quantity)
	}
}
