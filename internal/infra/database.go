package infra

import (
	"fmt"

	"gestionstock/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the Postgres connection pool and brings the schema up to
// date.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates the products, clients and sales tables and
// applies the Postgres-only patches AutoMigrate cannot express. Safe to run on
// every start.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Client{},
		&model.Sale{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL. Each statement is guarded so that
// re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// dashboard + invoices query: today's completed sales
		`CREATE INDEX IF NOT EXISTS idx_sales_completed_date
		    ON sales (date DESC)
		    WHERE status = 'Completed'`,
		// the Sale value is write-once apart from its status
		`CREATE OR REPLACE FUNCTION sales_guard_immutable() RETURNS trigger AS $$
		BEGIN
		  IF NEW.items::text <> OLD.items::text
		     OR NEW.total_amount <> OLD.total_amount
		     OR NEW.total_profit <> OLD.total_profit
		     OR NEW.client_id <> OLD.client_id THEN
		    RAISE EXCEPTION 'sales rows are immutable except for status';
		  END IF;
		  IF OLD.status = 'Returned' AND NEW.status <> 'Returned' THEN
		    RAISE EXCEPTION 'a returned sale cannot be reopened';
		  END IF;
		  RETURN NEW;
		END $$ LANGUAGE plpgsql`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_sales_guard_immutable') THEN
		    CREATE TRIGGER trg_sales_guard_immutable
		        BEFORE UPDATE ON sales
		        FOR EACH ROW EXECUTE FUNCTION sales_guard_immutable();
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
