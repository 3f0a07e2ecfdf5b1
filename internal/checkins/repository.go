package checkins

import (
	"context"
	"errors"
	"fmt"

	"festpass/internal/bookings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const otpLength = 6

type Repository interface {
	// Redeem locks the ticket matching code within eventID, lets check accept
	// it and records the check-in in the same transaction.
	Redeem(ctx context.Context, eventID uuid.UUID, code string, check func(*bookings.Ticket) (*bookings.CheckIn, error)) (*bookings.Ticket, *bookings.CheckIn, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Redeem(ctx context.Context, eventID uuid.UUID, code string, check func(*bookings.Ticket) (*bookings.CheckIn, error)) (*bookings.Ticket, *bookings.CheckIn, error) {
	var (
		ticket bookings.Ticket
		record *bookings.CheckIn
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("event_id = ?", eventID)
		if len(code) == otpLength {
			query = query.Where("otp = ?", code)
		} else {
			query = query.Where("qr_code_hash = ?", code)
		}

		if err := query.First(&ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return fmt.Errorf("failed to load ticket: %w", err)
		}

		var err error
		record, err = check(&ticket)
		if err != nil {
			return err
		}

		if err := tx.Create(record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyCheckedIn
			}
			return fmt.Errorf("failed to record check-in: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &ticket, record, nil
}
