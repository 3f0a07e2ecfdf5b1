package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUserNotFound = errors.New("user not found")

type Repository interface {
	// FindOrCreateGuest returns the user owning profile.Email, creating a
	// guest account when none exists.
	FindOrCreateGuest(ctx context.Context, profile GuestProfile) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindOrCreateGuest(ctx context.Context, profile GuestProfile) (*User, error) {
	email := NormalizeEmail(profile.Email)
	guest := &User{
		ID:      uuid.New(),
		Name:    profile.Name,
		Email:   email,
		Phone:   profile.Phone,
		Role:    RoleUser,
		IsGuest: true,
	}

	// concurrent first-time buyers race on the email index; DO NOTHING lets the loser read the winner's row
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(guest).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert guest user: %w", err)
	}

	var user User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to load user by email: %w", err)
	}
	return &user, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
