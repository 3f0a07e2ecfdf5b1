package checkins

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"festpass/internal/bookings"
	"festpass/internal/users"
	"festpass/pkg/calendar"
	"festpass/pkg/logger"
	"festpass/pkg/metrics"

	"github.com/google/uuid"
)

type Service interface {
	CheckIn(ctx context.Context, actor users.Actor, req CheckInRequest) (*CheckInResponse, error)
}

type service struct {
	repo Repository
	loc  *time.Location
	log  *logger.Logger
	now  func() time.Time
}

// NewService builds the gate service. Dates default to today in loc.
func NewService(repo Repository, loc *time.Location) Service {
	return &service{
		repo: repo,
		loc:  loc,
		log:  logger.GetDefault().WithComponent("checkins"),
		now:  time.Now,
	}
}

func (s *service) CheckIn(ctx context.Context, actor users.Actor, req CheckInRequest) (resp *CheckInResponse, err error) {
	defer func() {
		metrics.IncCheckIn(checkInResult(err))
	}()

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event_id: %w", err)
	}

	day := calendar.FromTime(s.now(), s.loc)
	if req.Date != "" {
		day, err = calendar.Parse(req.Date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
	}

	code := strings.ToLower(strings.TrimSpace(req.Code))

	ticket, record, err := s.repo.Redeem(ctx, eventID, code, func(t *bookings.Ticket) (*bookings.CheckIn, error) {
		if t.PaymentStatus != bookings.PaymentStatusSuccess {
			return nil, ErrTicketNotPaid
		}
		if !t.ValidOn(day) {
			return nil, ErrDateNotOnTicket
		}
		return &bookings.CheckIn{
			ID:          uuid.New(),
			TicketID:    t.ID,
			EventID:     t.EventID,
			Date:        day,
			CheckedInBy: actor.ID,
			CheckedInAt: s.now(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogTicketCheckedIn(ctx, ticket.ID.String(), eventID.String(), day.String(), actor.ID.String())

	out := buildResponse(ticket, record)
	return &out, nil
}

func checkInResult(err error) string {
	switch {
	case err == nil:
		return "admitted"
	case errors.Is(err, ErrTicketNotFound):
		return "not_found"
	case errors.Is(err, ErrTicketNotPaid):
		return "not_paid"
	case errors.Is(err, ErrDateNotOnTicket):
		return "wrong_date"
	case errors.Is(err, ErrAlreadyCheckedIn):
		return "duplicate"
	default:
		return "error"
	}
}
