package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"festpass/pkg/calendar"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservedByDay maps an event day to its live (pending or paid) ticket count.
type ReservedByDay map[calendar.Date]int

// Max returns the highest reserved count across all days.
func (r ReservedByDay) Max() int {
	max := 0
	for _, n := range r {
		if n > max {
			max = n
		}
	}
	return max
}

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	List(ctx context.Context, query EventListQuery) ([]Event, int64, error)
	ReservedByDate(ctx context.Context, eventID uuid.UUID) (ReservedByDay, error)
	// UpdateLocked loads the event FOR UPDATE, lets mutate change it against the
	// current reservations and saves it in the same transaction.
	UpdateLocked(ctx context.Context, id uuid.UUID, mutate func(current *Event, reserved ReservedByDay) error) (*Event, error)
	DeleteLocked(ctx context.Context, id uuid.UUID, authorize func(current *Event) error) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) List(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	var events []Event
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Event{})

	if query.Search != "" {
		searchTerm := "%" + strings.ToLower(query.Search) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(venue) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	// span overlap with [from, to]
	if query.From != "" {
		db = db.Where("end_date >= ?", query.From)
	}
	if query.To != "" {
		db = db.Where("start_date <= ?", query.To)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}
	offset := (query.Page - 1) * query.Limit

	err := db.Order("start_date ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&events).Error

	return events, totalCount, err
}

type reservedRow struct {
	Date     calendar.Date
	Reserved int
}

func (r *repository) ReservedByDate(ctx context.Context, eventID uuid.UUID) (ReservedByDay, error) {
	return reservedByDate(r.db.WithContext(ctx), eventID)
}

func reservedByDate(db *gorm.DB, eventID uuid.UUID) (ReservedByDay, error) {
	var rows []reservedRow
	err := db.Table("daily_inventory").
		Select("date, reserved").
		Where("event_id = ? AND reserved > 0", eventID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load daily inventory: %w", err)
	}

	reserved := make(ReservedByDay, len(rows))
	for _, row := range rows {
		reserved[row.Date] = row.Reserved
	}
	return reserved, nil
}

func (r *repository) UpdateLocked(ctx context.Context, id uuid.UUID, mutate func(current *Event, reserved ReservedByDay) error) (*Event, error) {
	var event Event

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// bookings hold FOR SHARE on this row while they reserve
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		reserved, err := reservedByDate(tx, id)
		if err != nil {
			return err
		}

		if err := mutate(&event, reserved); err != nil {
			return err
		}

		return tx.Save(&event).Error
	})
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func (r *repository) DeleteLocked(ctx context.Context, id uuid.UUID, authorize func(current *Event) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if err := authorize(&event); err != nil {
			return err
		}

		// failed tickets still reference the event, so any ticket blocks deletion
		var tickets int64
		if err := tx.Table("tickets").Where("event_id = ?", id).Count(&tickets).Error; err != nil {
			return fmt.Errorf("failed to check event bookings: %w", err)
		}
		if tickets > 0 {
			return ErrEventHasBookings
		}

		if err := tx.Exec("DELETE FROM daily_inventory WHERE event_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete daily inventory: %w", err)
		}

		if err := tx.Where("id = ?", id).Delete(&Event{}).Error; err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
}
