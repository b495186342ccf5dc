package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&AncestryRow{},
		&InviteCode{},
		&Product{},
		&Order{},
		&StatusHistoryEntry{},
		&UserOrder{},
	); err != nil {
		return err
	}

	// External payment IDs are unique when present; NULL means the provider
	// has not acknowledged the order yet.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_external_payment_id " +
			"ON orders (external_payment_id) WHERE external_payment_id IS NOT NULL",
	).Error; err != nil {
		return err
	}

	// Hot path for the expiration sweep: open orders past their window.
	return db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_orders_open_expire_at " +
			"ON orders (expire_at) WHERE status IN ('created', 'awaiting_payment')",
	).Error
}
