package bookings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"festpass/internal/events"
	"festpass/pkg/calendar"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reservation is everything the capacity gate needs to admit one booking.
type Reservation struct {
	EventID         uuid.UUID
	Dates           []calendar.Date
	Quantity        int
	DefaultCapacity int
	Tickets         []Ticket
}

// Settlement is the outcome of applying a payment result to a booking.
type Settlement struct {
	Reference string
	Status    PaymentStatus
	// Transitioned counts tickets moved out of PENDING by this call.
	Transitioned int
	Tickets      []Ticket
}

type Repository interface {
	// ReserveAndCreateTickets admits the quantity on every date or none, and
	// inserts the tickets in the same transaction.
	ReserveAndCreateTickets(ctx context.Context, r Reservation) error
	Settle(ctx context.Context, reference string, status PaymentStatus) (*Settlement, error)
	ExpireStale(ctx context.Context, cutoff time.Time, limit int) (int64, error)

	GetTicketsByReference(ctx context.Context, reference string) ([]Ticket, error)
	GetUserTickets(ctx context.Context, userID uuid.UUID, query TicketListQuery) ([]Ticket, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ReserveAndCreateTickets(ctx context.Context, res Reservation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Shared lock: concurrent bookings proceed, capacity edits wait.
		var event events.Event
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("id = ?", res.EventID).
			First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to lock event: %w", err)
		}

		capacity := event.DailyCapacity(res.DefaultCapacity)

		dates := sortedCopy(res.Dates)
		for _, day := range dates {
			if !event.Covers(day) {
				return &DateOutOfRangeError{Date: day.String()}
			}
		}

		// ascending date order keeps concurrent bookings from deadlocking
		for _, day := range dates {
			if err := reserveDay(tx, res.EventID, day, res.Quantity, capacity); err != nil {
				return err
			}
		}

		if err := tx.Create(&res.Tickets).Error; err != nil {
			return fmt.Errorf("failed to create tickets: %w", err)
		}
		return nil
	})
}

func reserveDay(tx *gorm.DB, eventID uuid.UUID, day calendar.Date, quantity, capacity int) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&DailyInventory{EventID: eventID, Date: day}).Error; err != nil {
		return fmt.Errorf("failed to initialise inventory for %s: %w", day, err)
	}

	result := tx.Model(&DailyInventory{}).
		Where("event_id = ? AND date = ? AND reserved + ? <= ?", eventID, day, quantity, capacity).
		UpdateColumn("reserved", gorm.Expr("reserved + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve %s: %w", day, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var reserved int
	if err := tx.Model(&DailyInventory{}).
		Select("reserved").
		Where("event_id = ? AND date = ?", eventID, day).
		Scan(&reserved).Error; err != nil {
		return fmt.Errorf("failed to read inventory for %s: %w", day, err)
	}

	remaining := capacity - reserved
	if remaining < 0 {
		remaining = 0
	}
	return &SoldOutError{Date: day, Remaining: remaining}
}

func releaseDays(tx *gorm.DB, eventID uuid.UUID, dates []calendar.Date, quantity int) error {
	for _, day := range sortedCopy(dates) {
		err := tx.Model(&DailyInventory{}).
			Where("event_id = ? AND date = ?", eventID, day).
			UpdateColumn("reserved", gorm.Expr("GREATEST(reserved - ?, 0)", quantity)).Error
		if err != nil {
			return fmt.Errorf("failed to release %s: %w", day, err)
		}
	}
	return nil
}

func (r *repository) Settle(ctx context.Context, reference string, status PaymentStatus) (*Settlement, error) {
	settlement := &Settlement{Reference: reference, Status: status}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tickets []Ticket
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("booking_reference = ?", reference).
			Order("created_at ASC, id ASC").
			Find(&tickets).Error; err != nil {
			return fmt.Errorf("failed to load booking: %w", err)
		}
		if len(tickets) == 0 {
			return ErrBookingNotFound
		}

		var pending []uuid.UUID
		for _, t := range tickets {
			if t.PaymentStatus == PaymentStatusPending {
				pending = append(pending, t.ID)
			}
		}

		settlement.Tickets = tickets
		if len(pending) == 0 {
			return nil
		}

		if err := tx.Model(&Ticket{}).
			Where("id IN ?", pending).
			Updates(map[string]interface{}{
				"payment_status": status,
				"updated_at":     time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}

		if status == PaymentStatusFailure {
			if err := releaseDays(tx, tickets[0].EventID, tickets[0].SelectedDates, len(pending)); err != nil {
				return err
			}
		}

		for i := range settlement.Tickets {
			if settlement.Tickets[i].PaymentStatus == PaymentStatusPending {
				settlement.Tickets[i].PaymentStatus = status
			}
		}
		settlement.Transitioned = len(pending)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return settlement, nil
}

func (r *repository) ExpireStale(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	var expired int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tickets []Ticket
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("payment_status = ? AND created_at < ?", PaymentStatusPending, cutoff).
			Order("created_at ASC").
			Limit(limit).
			Find(&tickets).Error; err != nil {
			return fmt.Errorf("failed to load stale tickets: %w", err)
		}
		if len(tickets) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(tickets))
		released := make(map[inventoryKey]int)
		for i, t := range tickets {
			ids[i] = t.ID
			for _, day := range calendar.Unique(t.SelectedDates) {
				released[inventoryKey{t.EventID, day}]++
			}
		}

		if err := tx.Model(&Ticket{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"payment_status": PaymentStatusFailure,
				"updated_at":     time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to expire tickets: %w", err)
		}

		// same (event, date) order as ReserveAndCreateTickets
		for _, k := range sortedInventoryKeys(released) {
			if err := releaseDays(tx, k.eventID, []calendar.Date{k.date}, released[k]); err != nil {
				return err
			}
		}

		expired = int64(len(tickets))
		return nil
	})

	return expired, err
}

func (r *repository) GetTicketsByReference(ctx context.Context, reference string) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.WithContext(ctx).
		Preload("CheckIns").
		Where("booking_reference = ?", reference).
		Order("created_at ASC, id ASC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ErrBookingNotFound
	}
	return tickets, nil
}

func (r *repository) GetUserTickets(ctx context.Context, userID uuid.UUID, query TicketListQuery) ([]Ticket, int64, error) {
	var tickets []Ticket
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("user_id = ?", userID)

	if query.Status != "" {
		baseQuery = baseQuery.Where("payment_status = ?", query.Status)
	}
	if query.EventID != "" {
		if eventID, err := uuid.Parse(query.EventID); err == nil {
			baseQuery = baseQuery.Where("event_id = ?", eventID)
		}
	}
	if query.Date != "" {
		// served by the GIN index on selected_dates
		baseQuery = baseQuery.Where("selected_dates @> ?::jsonb", fmt.Sprintf(`[%q]`, query.Date))
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("CheckIns").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&tickets).Error

	return tickets, totalCount, err
}

type inventoryKey struct {
	eventID uuid.UUID
	date    calendar.Date
}

func sortedInventoryKeys(m map[inventoryKey]int) []inventoryKey {
	keys := make([]inventoryKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := bytes.Compare(keys[i].eventID[:], keys[j].eventID[:]); c != 0 {
			return c < 0
		}
		return keys[i].date.Before(keys[j].date)
	})
	return keys
}

func sortedCopy(dates []calendar.Date) []calendar.Date {
	out := make([]calendar.Date, len(dates))
	copy(out, dates)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// CalculateTotalPages returns the page count for totalCount rows.
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
