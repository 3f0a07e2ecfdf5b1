package bookings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"festpass/pkg/calendar"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return gormDB, mock
}

func eventRow(id uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "slug", "start_date", "end_date", "ticket_config", "created_by"}).
		AddRow(id.String(), "Sunburn Goa", "sunburn-goa-1a2b3c4d", "2026-12-01", "2026-12-03",
			`{"price":"500","currency":"INR","quantity":100}`, uuid.New().String())
}

var ticketColumns = []string{
	"id", "event_id", "user_id", "booking_reference", "booking_type", "amount_paid", "currency",
	"payment_status", "buyer_details", "selected_dates", "otp", "qr_code_hash", "created_at", "updated_at",
}

func addTicketRow(rows *sqlmock.Rows, eventID uuid.UUID, reference string, status PaymentStatus, dates string) *sqlmock.Rows {
	return rows.AddRow(
		uuid.New().String(), eventID.String(), uuid.New().String(), reference, "DAILY", "590.0000", "INR",
		string(status), `{"name":"Asha Rao","email":"asha@example.com"}`, dates, "123456",
		"ab12", time.Now(), time.Now())
}

func pendingTickets(eventID uuid.UUID, n int) []Ticket {
	tickets := make([]Ticket, n)
	for i := range tickets {
		tickets[i] = Ticket{
			ID:               uuid.New(),
			EventID:          eventID,
			UserID:           uuid.New(),
			BookingReference: "TXN_1764547200_ABCDEF12",
			BookingType:      BookingTypeDaily,
			AmountPaid:       decimal.NewFromInt(590),
			Currency:         "INR",
			PaymentStatus:    PaymentStatusPending,
			SelectedDates:    []calendar.Date{"2026-12-01"},
			OTP:              fmt.Sprintf("%06d", 100000+i),
			QRCodeHash:       fmt.Sprintf("%064d", i),
		}
	}
	return tickets
}

func TestRepository_ReserveAndCreateTickets(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	eventID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "events" WHERE id = $1`)).WillReturnRows(eventRow(eventID))
	for range []string{"2026-12-01", "2026-12-02"} {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "daily_inventory"`)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "daily_inventory" SET "reserved"=reserved + $1`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "tickets"`)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.ReserveAndCreateTickets(context.Background(), Reservation{
		EventID:         eventID,
		Dates:           []calendar.Date{"2026-12-02", "2026-12-01"},
		Quantity:        2,
		DefaultCapacity: 500,
		Tickets:         pendingTickets(eventID, 2),
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ReserveSoldOutRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	eventID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "events" WHERE id = $1`)).WillReturnRows(eventRow(eventID))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "daily_inventory"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "daily_inventory" SET "reserved"=reserved + $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT reserved FROM "daily_inventory"`)).
		WillReturnRows(sqlmock.NewRows([]string{"reserved"}).AddRow(99))
	mock.ExpectRollback()

	err := repo.ReserveAndCreateTickets(context.Background(), Reservation{
		EventID:         eventID,
		Dates:           []calendar.Date{"2026-12-01"},
		Quantity:        2,
		DefaultCapacity: 500,
		Tickets:         pendingTickets(eventID, 2),
	})

	var soldOut *SoldOutError
	require.True(t, errors.As(err, &soldOut))
	assert.Equal(t, calendar.Date("2026-12-01"), soldOut.Date)
	assert.Equal(t, 1, soldOut.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ReserveRejectsDateOutsideLockedSpan(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	eventID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "events" WHERE id = $1`)).WillReturnRows(eventRow(eventID))
	mock.ExpectRollback()

	err := repo.ReserveAndCreateTickets(context.Background(), Reservation{
		EventID:  eventID,
		Dates:    []calendar.Date{"2026-12-05"},
		Quantity: 1,
		Tickets:  pendingTickets(eventID, 1),
	})

	assert.Equal(t, CodeDateOutOfRange, Code(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SettleFailureReleasesInventory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	eventID := uuid.New()
	reference := "TXN_1764547200_ABCDEF12"

	rows := sqlmock.NewRows(ticketColumns)
	addTicketRow(rows, eventID, reference, PaymentStatusPending, `["2026-12-01","2026-12-02"]`)
	addTicketRow(rows, eventID, reference, PaymentStatusPending, `["2026-12-01","2026-12-02"]`)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tickets" WHERE booking_reference = $1`)).WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "tickets" SET`)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "daily_inventory" SET "reserved"=GREATEST(reserved - $1, 0)`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "daily_inventory" SET "reserved"=GREATEST(reserved - $1, 0)`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	settlement, err := repo.Settle(context.Background(), reference, PaymentStatusFailure)

	require.NoError(t, err)
	assert.Equal(t, 2, settlement.Transitioned)
	for _, ticket := range settlement.Tickets {
		assert.Equal(t, PaymentStatusFailure, ticket.PaymentStatus)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SettleIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	eventID := uuid.New()
	reference := "TXN_1764547200_ABCDEF12"

	rows := sqlmock.NewRows(ticketColumns)
	addTicketRow(rows, eventID, reference, PaymentStatusSuccess, `["2026-12-01"]`)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tickets" WHERE booking_reference = $1`)).WillReturnRows(rows)
	mock.ExpectCommit()

	settlement, err := repo.Settle(context.Background(), reference, PaymentStatusFailure)

	require.NoError(t, err)
	assert.Zero(t, settlement.Transitioned)
	assert.Equal(t, PaymentStatusSuccess, settlement.Tickets[0].PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SettleUnknownReference(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tickets" WHERE booking_reference = $1`)).
		WillReturnRows(sqlmock.NewRows(ticketColumns))
	mock.ExpectRollback()

	_, err := repo.Settle(context.Background(), "TXN_0_DEADBEEF", PaymentStatusSuccess)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ExpireStale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	eventID := uuid.New()

	rows := sqlmock.NewRows(ticketColumns)
	addTicketRow(rows, eventID, "TXN_1_AAAAAAAA", PaymentStatusPending, `["2026-12-01"]`)
	addTicketRow(rows, eventID, "TXN_1_AAAAAAAA", PaymentStatusPending, `["2026-12-01"]`)
	addTicketRow(rows, eventID, "TXN_2_BBBBBBBB", PaymentStatusPending, `["2026-12-02","2026-12-03"]`)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tickets" WHERE payment_status = $1 AND created_at < $2`)).
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "tickets" SET`)).WillReturnResult(sqlmock.NewResult(0, 3))
	// one release per (event, date): 12-01 carries both tickets of the first booking
	for i := 0; i < 3; i++ {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "daily_inventory" SET "reserved"=GREATEST(reserved - $1, 0)`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	n, err := repo.ExpireStale(context.Background(), time.Now().Add(-15*time.Minute), 500)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ExpireStaleReleasesInAscendingDateOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)
	eventID := uuid.New()

	// oldest booking holds the later day
	rows := sqlmock.NewRows(ticketColumns)
	addTicketRow(rows, eventID, "TXN_1_AAAAAAAA", PaymentStatusPending, `["2026-12-02"]`)
	addTicketRow(rows, eventID, "TXN_2_BBBBBBBB", PaymentStatusPending, `["2026-12-01"]`)
	addTicketRow(rows, eventID, "TXN_3_CCCCCCCC", PaymentStatusPending, `["2026-12-01","2026-12-02"]`)

	release := regexp.QuoteMeta(`UPDATE "daily_inventory" SET "reserved"=GREATEST(reserved - $1, 0)`)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tickets" WHERE payment_status = $1 AND created_at < $2`)).
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "tickets" SET`)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(release).WithArgs(int64(2), eventID.String(), "2026-12-01").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(release).WithArgs(int64(2), eventID.String(), "2026-12-02").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.ExpireStale(context.Background(), time.Now().Add(-15*time.Minute), 500)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSortedInventoryKeysOrdersByEventThenDate(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	keys := sortedInventoryKeys(map[inventoryKey]int{
		{b, "2026-12-01"}: 1,
		{a, "2026-12-03"}: 1,
		{a, "2026-12-01"}: 1,
	})

	assert.Equal(t, []inventoryKey{
		{a, "2026-12-01"},
		{a, "2026-12-03"},
		{b, "2026-12-01"},
	}, keys)
}

func TestCalculateTotalPages(t *testing.T) {
	assert.Equal(t, 0, CalculateTotalPages(0, 10))
	assert.Equal(t, 1, CalculateTotalPages(10, 10))
	assert.Equal(t, 2, CalculateTotalPages(11, 10))
	assert.Equal(t, 0, CalculateTotalPages(5, 0))
}
