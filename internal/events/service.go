package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"festpass/internal/shared/constants"
	"festpass/internal/users"
	"festpass/pkg/cache"
	"festpass/pkg/calendar"
	"festpass/pkg/logger"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "INR"

var hundred = decimal.NewFromInt(100)

type Service interface {
	CreateEvent(ctx context.Context, actor users.Actor, req CreateEventRequest) (*EventResponse, error)
	// GetEvent resolves either a uuid or a slug.
	GetEvent(ctx context.Context, idOrSlug string) (*EventResponse, error)
	UpdateEvent(ctx context.Context, actor users.Actor, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error)
	DeleteEvent(ctx context.Context, actor users.Actor, id uuid.UUID) error
	ListEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	GetAvailability(ctx context.Context, id uuid.UUID) (*AvailabilityResponse, error)
}

type service struct {
	repo            Repository
	cacheService    cache.Service
	defaultCapacity int
	log             *logger.Logger
}

// NewService builds the events service. cacheService may be nil.
func NewService(repo Repository, cacheService cache.Service, defaultCapacity int) Service {
	return &service{
		repo:            repo,
		cacheService:    cacheService,
		defaultCapacity: defaultCapacity,
		log:             logger.GetDefault().WithComponent("events"),
	}
}

func (s *service) setCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Set(ctx, key, value, ttl); err != nil {
		s.log.WarnContext(ctx, "failed to cache event data", slog.String("key", key), slog.Any("error", err))
	}
}

func (s *service) getCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cacheService == nil {
		return false
	}
	return s.cacheService.Get(ctx, key, dest) == nil
}

func (s *service) invalidateEventCache(ctx context.Context, event *Event) {
	if s.cacheService == nil {
		return
	}

	patterns := []string{constants.PATTERN_INVALIDATE_EVENT_LIST}
	if event != nil {
		patterns = append(patterns, constants.BuildEventInvalidationPattern(event.ID.String()))
		if err := s.cacheService.Delete(ctx, constants.BuildEventDetailKey(event.Slug)); err != nil {
			s.log.WarnContext(ctx, "failed to invalidate event slug cache", slog.Any("error", err))
		}
	}

	for _, pattern := range patterns {
		if err := s.cacheService.DeletePattern(ctx, pattern); err != nil {
			s.log.WarnContext(ctx, "failed to invalidate event cache",
				slog.String("pattern", pattern), slog.Any("error", err))
		}
	}
}

func (s *service) CreateEvent(ctx context.Context, actor users.Actor, req CreateEventRequest) (*EventResponse, error) {
	start, end, err := parseSpan(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	ticketConfig, err := buildTicketConfig(req.TicketConfig)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	event := &Event{
		ID:           id,
		Title:        strings.TrimSpace(req.Title),
		Slug:         buildSlug(req.Title, id),
		Description:  req.Description,
		Venue:        req.Venue,
		IsOnline:     req.IsOnline,
		StartDate:    start,
		EndDate:      end,
		TicketConfig: ticketConfig,
		CreatedBy:    actor.ID,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.log.LogEventCreated(ctx, event.ID.String(), actor.ID.String())
	s.invalidateEventCache(ctx, nil)

	response := event.ToResponse()
	return &response, nil
}

func (s *service) GetEvent(ctx context.Context, idOrSlug string) (*EventResponse, error) {
	cacheKey := constants.BuildEventDetailKey(idOrSlug)

	var cached EventResponse
	if s.getCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var (
		event *Event
		err   error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		event, err = s.repo.GetByID(ctx, id)
	} else {
		event, err = s.repo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	response := event.ToResponse()
	s.setCache(ctx, cacheKey, response, constants.TTL_EVENT_DETAIL)

	return &response, nil
}

func (s *service) UpdateEvent(ctx context.Context, actor users.Actor, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	var ticketConfig *TicketConfig
	if req.TicketConfig != nil {
		cfg, err := buildTicketConfig(*req.TicketConfig)
		if err != nil {
			return nil, err
		}
		ticketConfig = &cfg
	}

	updated, err := s.repo.UpdateLocked(ctx, id, func(current *Event, reserved ReservedByDay) error {
		if !actor.CanManage(current.CreatedBy) {
			return ErrForbidden
		}

		start, end := current.StartDate, current.EndDate
		if req.StartDate != nil {
			start = calendar.Date(*req.StartDate)
		}
		if req.EndDate != nil {
			end = calendar.Date(*req.EndDate)
		}
		start, end, err := parseSpan(start.String(), end.String())
		if err != nil {
			return err
		}

		for day := range reserved {
			if !day.Within(start, end) {
				return ErrSpanExcludesReserved
			}
		}

		if ticketConfig != nil {
			capacity := ticketConfig.Quantity
			if capacity <= 0 {
				capacity = s.defaultCapacity
			}
			if capacity < reserved.Max() {
				return ErrCapacityBelowReserved
			}
			current.TicketConfig = *ticketConfig
		}

		if req.Title != nil {
			current.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			current.Description = *req.Description
		}
		if req.Venue != nil {
			current.Venue = *req.Venue
		}
		if req.IsOnline != nil {
			current.IsOnline = *req.IsOnline
		}
		current.StartDate, current.EndDate = start, end
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEventCache(ctx, updated)

	response := updated.ToResponse()
	return &response, nil
}

func (s *service) DeleteEvent(ctx context.Context, actor users.Actor, id uuid.UUID) error {
	var deleted *Event
	err := s.repo.DeleteLocked(ctx, id, func(current *Event) error {
		if !actor.CanManage(current.CreatedBy) {
			return ErrForbidden
		}
		deleted = current
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateEventCache(ctx, deleted)
	return nil
}

func (s *service) ListEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}

	cacheKey := constants.BuildEventListKey(query.Page, query.Limit, query.Search)
	if query.From != "" || query.To != "" {
		cacheKey += ":from:" + query.From + ":to:" + query.To
	}

	var cached PaginatedEvents
	if s.getCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	events, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	responses := make([]EventResponse, len(events))
	for i := range events {
		responses[i] = events[i].ToResponse()
	}

	result := &PaginatedEvents{
		Events:     responses,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
	}

	s.setCache(ctx, cacheKey, result, constants.TTL_EVENT_LIST)
	return result, nil
}

func (s *service) GetAvailability(ctx context.Context, id uuid.UUID) (*AvailabilityResponse, error) {
	cacheKey := constants.BuildEventAvailabilityKey(id.String())

	var cached AvailabilityResponse
	if s.getCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reserved, err := s.repo.ReservedByDate(ctx, id)
	if err != nil {
		return nil, err
	}

	result := BuildAvailability(event, reserved, s.defaultCapacity)
	s.setCache(ctx, cacheKey, result, constants.TTL_EVENT_AVAILABILITY)
	return result, nil
}

// BuildAvailability lays out capacity per day of the event span.
func BuildAvailability(event *Event, reserved ReservedByDay, defaultCapacity int) *AvailabilityResponse {
	capacity := event.DailyCapacity(defaultCapacity)
	days := event.Dates()

	result := &AvailabilityResponse{
		EventID:       event.ID.String(),
		DailyCapacity: capacity,
		AllDayOpen:    event.SupportsAllDay(),
		Days:          make([]DayAvailability, 0, len(days)),
	}

	for _, day := range days {
		taken := reserved[day]
		remaining := capacity - taken
		if remaining < 0 {
			remaining = 0
		}
		if remaining == 0 {
			result.AllDayOpen = false
		}
		result.Days = append(result.Days, DayAvailability{
			Date:      day,
			Capacity:  capacity,
			Reserved:  taken,
			Remaining: remaining,
			SoldOut:   remaining == 0,
		})
	}

	return result
}

// MaxEventDays bounds the inclusive span of an event, and with it the
// inventory rows an all-day booking touches.
const MaxEventDays = 366

func parseSpan(startRaw, endRaw string) (calendar.Date, calendar.Date, error) {
	start, err := calendar.Parse(startRaw, nil)
	if err != nil {
		return "", "", fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := calendar.Parse(endRaw, nil)
	if err != nil {
		return "", "", fmt.Errorf("invalid end_date: %w", err)
	}
	if end.Before(start) {
		return "", "", ErrInvalidDateRange
	}
	if start.AddDays(MaxEventDays - 1).Before(end) {
		return "", "", ErrSpanTooLong
	}
	return start, end, nil
}

func buildTicketConfig(req TicketConfigRequest) (TicketConfig, error) {
	if req.Price.IsNegative() {
		return TicketConfig{}, fmt.Errorf("%w: price must not be negative", ErrInvalidTicketConfig)
	}
	if req.AllDayPrice != nil && req.AllDayPrice.IsNegative() {
		return TicketConfig{}, fmt.Errorf("%w: all_day_price must not be negative", ErrInvalidTicketConfig)
	}

	offers := make([]Offer, 0, len(req.Offers))
	for _, o := range req.Offers {
		if !o.Percentage.IsPositive() || o.Percentage.GreaterThan(hundred) {
			return TicketConfig{}, fmt.Errorf("%w: offer %s percentage must be in (0, 100]", ErrInvalidTicketConfig, o.Code)
		}
		offers = append(offers, Offer{
			Code:        strings.ToUpper(strings.TrimSpace(o.Code)),
			Description: o.Description,
			Percentage:  o.Percentage,
		})
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	return TicketConfig{
		Price:       req.Price,
		AllDayPrice: req.AllDayPrice,
		Currency:    currency,
		Quantity:    req.Quantity,
		Offers:      offers,
	}, nil
}

func buildSlug(title string, id uuid.UUID) string {
	base := slug.Make(title)
	if base == "" {
		base = "event"
	}
	return base + "-" + id.String()[:8]
}
