package infra

import (
	"fmt"

	"retailpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx and brings the schema up
// to date with Migrate.
func NewDatabase(dsn string, debug bool) (*gorm.DB, error) {
	level := logger.Silent
	if debug {
		level = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs AutoMigrate for every model, then the idempotent SQL patches
// GORM cannot express. Safe to run on every start.
func Migrate(db *gorm.DB) error {
	if err := applyPreMigrationPatches(db); err != nil {
		return fmt.Errorf("pre-migration patches: %w", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applyPreMigrationPatches prepares what the model defaults rely on.
func applyPreMigrationPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// gen_random_uuid() is built in from PG 13; older servers need pgcrypto.
		{"enable pgcrypto", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("pre-patch %q: %w", p.descr, err)
		}
	}
	return nil
}

// applySchemaPatches runs DDL that AutoMigrate cannot declare from struct tags.
// Every statement is guarded with IF NOT EXISTS.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one open shift per cashier. The service checks under a row
		// lock as well; this index is what makes a lost race fail loudly.
		{"open shift per cashier", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_shift_reports_open_cashier
  ON shift_reports (cashier_id) WHERE shift_end IS NULL`},
		{"orders by branch and day", `
CREATE INDEX IF NOT EXISTS idx_orders_branch_created
  ON orders (branch_id, created_at DESC)`},
		{"refunds by branch", `
CREATE INDEX IF NOT EXISTS idx_refunds_branch_created
  ON refunds (branch_id, created_at DESC)`},
		{"products below threshold", `
CREATE INDEX IF NOT EXISTS idx_products_stock_quantity
  ON products (stock_quantity)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
