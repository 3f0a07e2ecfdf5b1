package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"festpass/internal/events"
	"festpass/internal/payments"
	"festpass/internal/shared/config"
	"festpass/internal/shared/constants"
	"festpass/internal/users"
	"festpass/pkg/cache"
	"festpass/pkg/calendar"
	"festpass/pkg/logger"
	"festpass/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxSecretAttempts = 3
	expiryBatchSize   = 500
)

// TicketNotifier delivers issued tickets to their holders. Failures never
// affect the booking.
type TicketNotifier interface {
	TicketsIssued(ctx context.Context, event *events.Event, tickets []Ticket) error
}

type Service interface {
	// InitiateBooking reserves capacity, creates PENDING tickets and returns
	// the signed gateway handoff. caller is nil for guest checkout.
	InitiateBooking(ctx context.Context, caller *uuid.UUID, eventID uuid.UUID, req BookingRequest) (*InitiateResult, error)
	SettlePayment(ctx context.Context, result payments.Result) (*SettlementResponse, error)
	GetBooking(ctx context.Context, actor users.Actor, reference string) (*BookingResponse, error)
	ListUserTickets(ctx context.Context, userID uuid.UUID, query TicketListQuery) (*PaginatedTickets, error)
	ExpirePending(ctx context.Context) (int64, error)
}

type service struct {
	repo         Repository
	eventRepo    events.Repository
	userRepo     users.Repository
	gateway      *payments.Gateway
	notifier     TicketNotifier
	cacheService cache.Service
	cfg          config.BookingConfig
	loc          *time.Location
	log          *logger.Logger
	now          func() time.Time
}

type ServiceDeps struct {
	Repo         Repository
	EventRepo    events.Repository
	UserRepo     users.Repository
	Gateway      *payments.Gateway
	Notifier     TicketNotifier
	CacheService cache.Service
	Config       config.BookingConfig
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:         deps.Repo,
		eventRepo:    deps.EventRepo,
		userRepo:     deps.UserRepo,
		gateway:      deps.Gateway,
		notifier:     deps.Notifier,
		cacheService: deps.CacheService,
		cfg:          deps.Config,
		loc:          deps.Config.Location(),
		log:          logger.GetDefault().WithComponent("bookings"),
		now:          time.Now,
	}
}

func (s *service) InitiateBooking(ctx context.Context, caller *uuid.UUID, eventID uuid.UUID, req BookingRequest) (result *InitiateResult, err error) {
	started := s.now()
	bookingType := metricsBookingType(req.BookingType)
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = strings.ToLower(Code(err))
			s.log.LogBookingRejected(ctx, eventID.String(), Code(err), err)
		}
		metrics.ObserveBooking(bookingType, outcome, started)
	}()

	if err := ValidateQuantity(req.Quantity, s.cfg.MaxQuantity); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	normalized, err := Normalize(event, req, s.loc)
	if err != nil {
		return nil, err
	}

	quote := Price(normalized.Base, s.cfg.TaxRate, normalized.Quantity, normalized.Currency)

	buyer, err := s.resolveBuyer(ctx, caller, req.Buyer)
	if err != nil {
		return nil, err
	}

	reference := GenerateBookingReference(started)

	// signed before anything is written so a misconfigured gateway leaves no tickets
	handoff, err := s.gateway.BuildRequest(payments.Request{
		TxnID:       reference,
		Amount:      quote.Total,
		ProductInfo: normalized.ProductInfo,
		FirstName:   req.Buyer.Name,
		Email:       req.Buyer.Email,
		Phone:       req.Buyer.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build payment request: %w", err)
	}

	var tickets []Ticket
	for attempt := 1; ; attempt++ {
		tickets, err = materialize(event.ID, buyer.ID, reference, normalized, quote, req.Buyer)
		if err != nil {
			return nil, fmt.Errorf("failed to generate ticket secrets: %w", err)
		}

		err = s.repo.ReserveAndCreateTickets(ctx, Reservation{
			EventID:         event.ID,
			Dates:           normalized.Dates,
			Quantity:        normalized.Quantity,
			DefaultCapacity: s.cfg.DefaultDailyCapacity,
			Tickets:         tickets,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		if attempt == maxSecretAttempts {
			return nil, fmt.Errorf("%w: %v", ErrSecretsExhausted, err)
		}
		s.log.WarnContext(ctx, "ticket secret collision, regenerating",
			slog.String("booking_reference", reference), slog.Int("attempt", attempt))
	}

	s.invalidateAvailability(ctx, event.ID)
	metrics.AddTicketsReserved(string(normalized.Type), len(tickets))
	s.log.LogBookingInitiated(ctx, reference, event.ID.String(), buyer.ID.String(), string(normalized.Type), len(tickets))

	return &InitiateResult{
		Reference: reference,
		Handoff:   handoff,
		Quote:     quote,
		Tickets:   tickets,
	}, nil
}

func metricsBookingType(raw string) string {
	switch t := BookingType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case BookingTypeDaily, BookingTypeAllDay:
		return string(t)
	default:
		return "OTHER"
	}
}

// resolveBuyer books under the authenticated account when there is one and
// under a guest identity keyed by email otherwise.
func (s *service) resolveBuyer(ctx context.Context, caller *uuid.UUID, buyer BuyerDetails) (*users.User, error) {
	if caller != nil {
		user, err := s.userRepo.GetByID(ctx, *caller)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, users.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
	}

	user, err := s.userRepo.FindOrCreateGuest(ctx, users.GuestProfile{
		Name:  buyer.Name,
		Email: buyer.Email,
		Phone: buyer.Phone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve guest user: %w", err)
	}
	return user, nil
}

func materialize(eventID, userID uuid.UUID, reference string, b *NormalizedBooking, quote Quote, buyer BuyerDetails) ([]Ticket, error) {
	buyer.Email = users.NormalizeEmail(buyer.Email)

	tickets := make([]Ticket, b.Quantity)
	for i := range tickets {
		otp, err := GenerateOTP()
		if err != nil {
			return nil, err
		}
		qr, err := GenerateQRHash()
		if err != nil {
			return nil, err
		}

		dates := make([]calendar.Date, len(b.Dates))
		copy(dates, b.Dates)

		tickets[i] = Ticket{
			ID:               uuid.New(),
			EventID:          eventID,
			UserID:           userID,
			BookingReference: reference,
			BookingType:      b.Type,
			AmountPaid:       quote.PerTicket,
			Currency:         b.Currency,
			PaymentStatus:    PaymentStatusPending,
			BuyerDetails:     buyer,
			SelectedDates:    dates,
			OTP:              otp,
			QRCodeHash:       qr,
		}
	}
	return tickets, nil
}

func (s *service) SettlePayment(ctx context.Context, result payments.Result) (*SettlementResponse, error) {
	if err := s.gateway.VerifyResult(result); err != nil {
		metrics.IncSettlement("rejected")
		return nil, err
	}

	status := PaymentStatusFailure
	if result.Succeeded() {
		status = PaymentStatusSuccess
	}

	settlement, err := s.repo.Settle(ctx, result.TxnID, status)
	if err != nil {
		return nil, err
	}

	// a replayed or late callback reports what the tickets actually hold
	if settlement.Transitioned == 0 && len(settlement.Tickets) > 0 {
		current := settlement.Tickets[0].PaymentStatus
		if status == PaymentStatusSuccess && current == PaymentStatusFailure {
			s.log.WarnContext(ctx, "payment captured for expired booking",
				slog.String("booking_reference", settlement.Reference),
				slog.String("mihpayid", result.MihpayID),
				slog.String("amount", result.Amount))
		}
		status = current
	}

	metrics.IncSettlement(string(status))
	s.log.LogPaymentSettled(ctx, settlement.Reference, string(status), int64(settlement.Transitioned))

	if settlement.Transitioned > 0 && len(settlement.Tickets) > 0 {
		eventID := settlement.Tickets[0].EventID
		if status == PaymentStatusFailure {
			s.invalidateAvailability(ctx, eventID)
		} else {
			s.notifyIssued(ctx, eventID, settlement.Tickets)
		}
	}

	return &SettlementResponse{
		BookingReference: settlement.Reference,
		PaymentStatus:    status,
		Transitioned:     settlement.Transitioned,
	}, nil
}

func (s *service) notifyIssued(ctx context.Context, eventID uuid.UUID, tickets []Ticket) {
	if s.notifier == nil {
		return
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		s.log.WarnContext(ctx, "skipping ticket notification, event lookup failed",
			slog.String("event_id", eventID.String()), slog.Any("error", err))
		return
	}

	issued := make([]Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.PaymentStatus == PaymentStatusSuccess {
			issued = append(issued, t)
		}
	}

	if err := s.notifier.TicketsIssued(ctx, event, issued); err != nil {
		s.log.WarnContext(ctx, "failed to queue ticket notification",
			slog.String("event_id", eventID.String()), slog.Any("error", err))
	}
}

func (s *service) GetBooking(ctx context.Context, actor users.Actor, reference string) (*BookingResponse, error) {
	tickets, err := s.repo.GetTicketsByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if tickets[0].UserID != actor.ID && !users.IsStaff(string(actor.Role)) {
		return nil, ErrForbidden
	}

	resp := BuildBookingResponse(tickets)
	return &resp, nil
}

func (s *service) ListUserTickets(ctx context.Context, userID uuid.UUID, query TicketListQuery) (*PaginatedTickets, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	tickets, total, err := s.repo.GetUserTickets(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	out := make([]TicketResponse, len(tickets))
	for i := range tickets {
		out[i] = tickets[i].ToResponse()
	}

	return &PaginatedTickets{
		Tickets:    out,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(total, query.Limit),
	}, nil
}

func (s *service) ExpirePending(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.PendingTTL)

	expired, err := s.repo.ExpireStale(ctx, cutoff, expiryBatchSize)
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		metrics.AddExpired(expired)
		s.log.InfoContext(ctx, "expired unpaid tickets",
			slog.Int64("tickets", expired), slog.Time("cutoff", cutoff))
		if s.cacheService != nil {
			if err := s.cacheService.DeletePattern(ctx, constants.CACHE_KEY_EVENT_AVAILABILITY+"*"); err != nil {
				s.log.WarnContext(ctx, "failed to invalidate availability cache", slog.Any("error", err))
			}
		}
	}
	return expired, nil
}

func (s *service) invalidateAvailability(ctx context.Context, eventID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildEventAvailabilityKey(eventID.String())); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate availability cache",
			slog.String("event_id", eventID.String()), slog.Any("error", err))
	}
}
