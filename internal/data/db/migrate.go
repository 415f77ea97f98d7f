package db

import (
	types "github.com/havenlane/leasehold-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// Identity boundary
		&types.User{},

		// Catalog (occupancy-relevant slice)
		&types.Property{},
		&types.Unit{},

		// Lease core
		&types.Contract{},
		&types.OccupancyHistory{},

		// Billing
		&types.Payment{},
		&types.Deposit{},

		// Fan-out
		&types.Notification{},
	); err != nil {
		return err
	}
	return migrateIndexes(db)
}

// migrateIndexes installs the partial unique indexes that backstop the
// engine's race-sensitive invariants. AutoMigrate cannot express WHERE
// clauses, so these are raw.
func migrateIndexes(db *gorm.DB) error {
	stmts := []string{
		// At most one open occupancy interval per unit (or per property when
		// the lease covers the whole property).
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_occupancy_open_unit
		   ON occupancy_history (unit_id)
		   WHERE to_at IS NULL AND unit_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_occupancy_open_property
		   ON occupancy_history (property_id)
		   WHERE to_at IS NULL AND unit_id IS NULL`,
		// Exactly one scaffold payment per contract.
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_payment_scaffold
		   ON payment (contract_id)
		   WHERE auto_created AND deleted_at IS NULL`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
