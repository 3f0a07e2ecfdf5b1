package events

import (
	"context"
	"testing"

	"festpass/internal/users"
	"festpass/pkg/calendar"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	events   map[uuid.UUID]*Event
	reserved ReservedByDay
	tickets  int
}

func newFakeRepository(events ...*Event) *fakeRepository {
	repo := &fakeRepository{events: map[uuid.UUID]*Event{}, reserved: ReservedByDay{}}
	for _, e := range events {
		repo.events[e.ID] = e
	}
	return repo
}

func (f *fakeRepository) Create(_ context.Context, event *Event) error {
	f.events[event.ID] = event
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*Event, error) {
	if e, ok := f.events[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, ErrEventNotFound
}

func (f *fakeRepository) GetBySlug(_ context.Context, slug string) (*Event, error) {
	for _, e := range f.events {
		if e.Slug == slug {
			copied := *e
			return &copied, nil
		}
	}
	return nil, ErrEventNotFound
}

func (f *fakeRepository) List(_ context.Context, _ EventListQuery) ([]Event, int64, error) {
	var out []Event
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) ReservedByDate(_ context.Context, _ uuid.UUID) (ReservedByDay, error) {
	return f.reserved, nil
}

func (f *fakeRepository) UpdateLocked(ctx context.Context, id uuid.UUID, mutate func(*Event, ReservedByDay) error) (*Event, error) {
	current, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(current, f.reserved); err != nil {
		return nil, err
	}
	f.events[id] = current
	return current, nil
}

func (f *fakeRepository) DeleteLocked(ctx context.Context, id uuid.UUID, authorize func(*Event) error) error {
	current, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(current); err != nil {
		return err
	}
	if f.tickets > 0 {
		return ErrEventHasBookings
	}
	delete(f.events, id)
	return nil
}

func threeDayEvent(owner uuid.UUID, capacity int) *Event {
	return &Event{
		ID:        uuid.New(),
		Title:     "Sunburn Goa",
		Slug:      "sunburn-goa-1a2b3c4d",
		StartDate: calendar.MustParse("2026-12-01"),
		EndDate:   calendar.MustParse("2026-12-03"),
		TicketConfig: TicketConfig{
			Price:    decimal.NewFromInt(100),
			Currency: "INR",
			Quantity: capacity,
		},
		CreatedBy: owner,
	}
}

func TestCreateEvent(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil, 500)
	actor := users.Actor{ID: uuid.New(), Role: users.RoleVenueManager}

	resp, err := svc.CreateEvent(context.Background(), actor, CreateEventRequest{
		Title:     "Jazz By The Bay",
		StartDate: "2026-12-01",
		EndDate:   "2026-12-02",
		TicketConfig: TicketConfigRequest{
			Price:    decimal.NewFromInt(250),
			Quantity: 40,
		},
	})

	require.NoError(t, err)
	assert.Regexp(t, `^jazz-by-the-bay-[0-9a-f]{8}$`, resp.Slug)
	assert.Equal(t, "INR", resp.TicketConfig.Currency)
	assert.Equal(t, 2, resp.Days)
	assert.Equal(t, actor.ID.String(), resp.CreatedBy)
	assert.Len(t, repo.events, 1)
}

func TestCreateEvent_Rejections(t *testing.T) {
	svc := NewService(newFakeRepository(), nil, 500)
	actor := users.Actor{ID: uuid.New(), Role: users.RoleAdmin}

	_, err := svc.CreateEvent(context.Background(), actor, CreateEventRequest{
		Title: "Backwards", StartDate: "2026-12-05", EndDate: "2026-12-01",
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = svc.CreateEvent(context.Background(), actor, CreateEventRequest{
		Title: "Forever fest", StartDate: "2026-01-01", EndDate: "2027-01-02",
	})
	assert.ErrorIs(t, err, ErrSpanTooLong)

	_, err = svc.CreateEvent(context.Background(), actor, CreateEventRequest{
		Title: "Free money", StartDate: "2026-12-01", EndDate: "2026-12-01",
		TicketConfig: TicketConfigRequest{Price: decimal.NewFromInt(-1)},
	})
	assert.ErrorIs(t, err, ErrInvalidTicketConfig)

	_, err = svc.CreateEvent(context.Background(), actor, CreateEventRequest{
		Title: "Big offer", StartDate: "2026-12-01", EndDate: "2026-12-01",
		TicketConfig: TicketConfigRequest{
			Price:  decimal.NewFromInt(10),
			Offers: []OfferRequest{{Code: "all", Percentage: decimal.NewFromInt(150)}},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidTicketConfig)
}

func TestParseSpan_LengthLimit(t *testing.T) {
	// 2028 is a leap year, so Jan 1 to Dec 31 is exactly 366 days
	start, end, err := parseSpan("2028-01-01", "2028-12-31")
	require.NoError(t, err)
	assert.Len(t, calendar.Span(start, end), MaxEventDays)

	_, _, err = parseSpan("2026-01-01", "2027-01-02")
	assert.ErrorIs(t, err, ErrSpanTooLong)

	_, _, err = parseSpan("2026-01-01", "9999-12-31")
	assert.ErrorIs(t, err, ErrSpanTooLong)
}

func TestUpdateEvent_CapacityCannotDropBelowReserved(t *testing.T) {
	owner := uuid.New()
	event := threeDayEvent(owner, 10)
	repo := newFakeRepository(event)
	repo.reserved[calendar.MustParse("2026-12-02")] = 6
	svc := NewService(repo, nil, 500)
	actor := users.Actor{ID: owner, Role: users.RoleVenueManager}

	_, err := svc.UpdateEvent(context.Background(), actor, event.ID, UpdateEventRequest{
		TicketConfig: &TicketConfigRequest{Price: decimal.NewFromInt(100), Quantity: 5},
	})
	assert.ErrorIs(t, err, ErrCapacityBelowReserved)

	resp, err := svc.UpdateEvent(context.Background(), actor, event.ID, UpdateEventRequest{
		TicketConfig: &TicketConfigRequest{Price: decimal.NewFromInt(120), Quantity: 6},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.TicketConfig.Quantity)
}

func TestUpdateEvent_SpanMustKeepReservedDays(t *testing.T) {
	owner := uuid.New()
	event := threeDayEvent(owner, 10)
	repo := newFakeRepository(event)
	repo.reserved[calendar.MustParse("2026-12-03")] = 1
	svc := NewService(repo, nil, 500)
	actor := users.Actor{ID: owner, Role: users.RoleVenueManager}

	end := "2026-12-02"
	_, err := svc.UpdateEvent(context.Background(), actor, event.ID, UpdateEventRequest{EndDate: &end})
	assert.ErrorIs(t, err, ErrSpanExcludesReserved)

	end = "2026-12-04"
	resp, err := svc.UpdateEvent(context.Background(), actor, event.ID, UpdateEventRequest{EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Days)
}

func TestUpdateEvent_Ownership(t *testing.T) {
	event := threeDayEvent(uuid.New(), 10)
	svc := NewService(newFakeRepository(event), nil, 500)
	title := "Renamed"

	_, err := svc.UpdateEvent(context.Background(), users.Actor{ID: uuid.New(), Role: users.RoleVenueManager},
		event.ID, UpdateEventRequest{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	resp, err := svc.UpdateEvent(context.Background(), users.Actor{ID: uuid.New(), Role: users.RoleAdmin},
		event.ID, UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", resp.Title)
}

func TestDeleteEvent(t *testing.T) {
	owner := uuid.New()
	event := threeDayEvent(owner, 10)
	repo := newFakeRepository(event)
	repo.tickets = 1
	svc := NewService(repo, nil, 500)
	actor := users.Actor{ID: owner, Role: users.RoleVenueManager}

	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), actor, event.ID), ErrEventHasBookings)

	repo.tickets = 0
	assert.NoError(t, svc.DeleteEvent(context.Background(), actor, event.ID))
	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), actor, event.ID), ErrEventNotFound)
}

func TestGetEvent_BySlug(t *testing.T) {
	event := threeDayEvent(uuid.New(), 10)
	svc := NewService(newFakeRepository(event), nil, 500)

	resp, err := svc.GetEvent(context.Background(), event.Slug)
	require.NoError(t, err)
	assert.Equal(t, event.ID.String(), resp.ID)

	_, err = svc.GetEvent(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestBuildAvailability(t *testing.T) {
	allDay := decimal.NewFromInt(250)
	event := threeDayEvent(uuid.New(), 2)
	event.TicketConfig.AllDayPrice = &allDay

	availability := BuildAvailability(event, ReservedByDay{calendar.MustParse("2026-12-02"): 2}, 500)

	require.Len(t, availability.Days, 3)
	assert.Equal(t, 2, availability.DailyCapacity)
	assert.Equal(t, 2, availability.Days[0].Remaining)
	assert.True(t, availability.Days[1].SoldOut)
	assert.False(t, availability.AllDayOpen)

	event.TicketConfig.Quantity = 0
	availability = BuildAvailability(event, ReservedByDay{}, 500)
	assert.Equal(t, 500, availability.DailyCapacity)
	assert.True(t, availability.AllDayOpen)
}
