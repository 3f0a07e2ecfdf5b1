package database

import (
	"festpass/internal/bookings"
	"festpass/internal/events"
	"festpass/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&bookings.Ticket{},
		&bookings.CheckIn{},
		&bookings.DailyInventory{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
