package database

import (
	"fmt"

	"gorm.io/gorm"
)

// indexes AutoMigrate cannot express through struct tags
var constraintStatements = []string{
	// containment lookups on a ticket's dates (user ticket filter, gate lookups)
	`CREATE INDEX IF NOT EXISTS idx_tickets_selected_dates ON tickets USING GIN (selected_dates jsonb_path_ops)`,
	// expiry sweeps only ever scan unpaid tickets
	`CREATE INDEX IF NOT EXISTS idx_tickets_pending_created ON tickets (created_at) WHERE payment_status = 'PENDING'`,
	`CREATE INDEX IF NOT EXISTS idx_daily_inventory_event ON daily_inventory (event_id, date)`,
}

// MigrateConstraints adds the indexes the booking and gate paths depend on.
func MigrateConstraints(db *gorm.DB) error {
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to apply %q: %w", stmt, err)
		}
	}
	return nil
}
