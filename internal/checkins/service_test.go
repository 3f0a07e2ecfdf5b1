package checkins

import (
	"context"
	"testing"
	"time"

	"festpass/internal/bookings"
	"festpass/internal/users"
	"festpass/pkg/calendar"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	tickets  []*bookings.Ticket
	checkIns map[string]bool
	lastCode string
}

func (f *fakeRepository) Redeem(_ context.Context, eventID uuid.UUID, code string, check func(*bookings.Ticket) (*bookings.CheckIn, error)) (*bookings.Ticket, *bookings.CheckIn, error) {
	f.lastCode = code
	for _, t := range f.tickets {
		if t.EventID != eventID || (t.OTP != code && t.QRCodeHash != code) {
			continue
		}
		record, err := check(t)
		if err != nil {
			return nil, nil, err
		}
		key := t.ID.String() + record.Date.String()
		if f.checkIns[key] {
			return nil, nil, ErrAlreadyCheckedIn
		}
		f.checkIns[key] = true
		return t, record, nil
	}
	return nil, nil, ErrTicketNotFound
}

func newGate(t *testing.T, status bookings.PaymentStatus) (*service, *fakeRepository, *bookings.Ticket) {
	t.Helper()
	ticket := &bookings.Ticket{
		ID:               uuid.New(),
		EventID:          uuid.New(),
		BookingReference: "TXN_1764547200_ABCDEF12",
		BookingType:      bookings.BookingTypeDaily,
		PaymentStatus:    status,
		BuyerDetails:     bookings.BuyerDetails{Name: "Asha Rao"},
		SelectedDates:    []calendar.Date{"2026-12-01", "2026-12-02"},
		OTP:              "482913",
		QRCodeHash:       "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
	}
	repo := &fakeRepository{tickets: []*bookings.Ticket{ticket}, checkIns: map[string]bool{}}

	loc := time.FixedZone("IST", 5*3600+1800)
	svc := NewService(repo, loc).(*service)
	// 20:00 UTC on Nov 30 is already Dec 1 in IST
	svc.now = func() time.Time { return time.Date(2026, 11, 30, 20, 0, 0, 0, time.UTC) }
	return svc, repo, ticket
}

var staff = users.Actor{ID: uuid.New(), Role: users.RoleCoordinator}

func TestCheckIn_DefaultsToTodayInBookingTimezone(t *testing.T) {
	svc, _, ticket := newGate(t, bookings.PaymentStatusSuccess)

	resp, err := svc.CheckIn(context.Background(), staff, CheckInRequest{EventID: ticket.EventID.String(), Code: ticket.OTP})

	require.NoError(t, err)
	assert.Equal(t, calendar.Date("2026-12-01"), resp.Date)
	assert.Equal(t, "Asha Rao", resp.HolderName)
	assert.Equal(t, staff.ID.String(), resp.CheckedInBy)
}

func TestCheckIn_ByQRHashIsCaseInsensitive(t *testing.T) {
	svc, repo, ticket := newGate(t, bookings.PaymentStatusSuccess)

	_, err := svc.CheckIn(context.Background(), staff, CheckInRequest{
		EventID: ticket.EventID.String(),
		Code:    " 9F86D081884C7D659A2FEAA0C55AD015A3BF4F1B2B0B822CD15D6C15B0F00A08 ",
		Date:    "2026-12-02",
	})

	require.NoError(t, err)
	assert.Equal(t, ticket.QRCodeHash, repo.lastCode)
}

func TestCheckIn_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		status  bookings.PaymentStatus
		req     func(*bookings.Ticket) CheckInRequest
		wantErr error
	}{
		{
			name:   "unknown code",
			status: bookings.PaymentStatusSuccess,
			req: func(tk *bookings.Ticket) CheckInRequest {
				return CheckInRequest{EventID: tk.EventID.String(), Code: "000000", Date: "2026-12-01"}
			},
			wantErr: ErrTicketNotFound,
		},
		{
			name:   "other event",
			status: bookings.PaymentStatusSuccess,
			req: func(tk *bookings.Ticket) CheckInRequest {
				return CheckInRequest{EventID: uuid.NewString(), Code: tk.OTP, Date: "2026-12-01"}
			},
			wantErr: ErrTicketNotFound,
		},
		{
			name:   "pending payment",
			status: bookings.PaymentStatusPending,
			req: func(tk *bookings.Ticket) CheckInRequest {
				return CheckInRequest{EventID: tk.EventID.String(), Code: tk.OTP, Date: "2026-12-01"}
			},
			wantErr: ErrTicketNotPaid,
		},
		{
			name:   "failed payment",
			status: bookings.PaymentStatusFailure,
			req: func(tk *bookings.Ticket) CheckInRequest {
				return CheckInRequest{EventID: tk.EventID.String(), Code: tk.OTP, Date: "2026-12-01"}
			},
			wantErr: ErrTicketNotPaid,
		},
		{
			name:   "date not on ticket",
			status: bookings.PaymentStatusSuccess,
			req: func(tk *bookings.Ticket) CheckInRequest {
				return CheckInRequest{EventID: tk.EventID.String(), Code: tk.OTP, Date: "2026-12-03"}
			},
			wantErr: ErrDateNotOnTicket,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, ticket := newGate(t, tt.status)

			_, err := svc.CheckIn(context.Background(), staff, tt.req(ticket))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckIn_OncePerDate(t *testing.T) {
	svc, _, ticket := newGate(t, bookings.PaymentStatusSuccess)
	req := CheckInRequest{EventID: ticket.EventID.String(), Code: ticket.OTP, Date: "2026-12-01"}

	_, err := svc.CheckIn(context.Background(), staff, req)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), staff, req)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	req.Date = "2026-12-02"
	_, err = svc.CheckIn(context.Background(), staff, req)
	assert.NoError(t, err)
}
