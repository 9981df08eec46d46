package infra

import (
	"fmt"

	"github.com/Djidro/Royalpos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate to create or update all tables, then applies the SQL
// statements AutoMigrate cannot express.
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

// RunMigrations applies the schema. Also used by integration tests against
// a throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.StockMovement{},
		&model.CartLine{},
		&model.Shift{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Expense{},
		&model.User{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	// Partial unique index backing the "at most one open shift" invariant.
	// AutoMigrate cannot express WHERE clauses on indexes.
	patch := `DO $$ BEGIN
	  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_shifts_single_open') THEN
	    CREATE UNIQUE INDEX uni_shifts_single_open ON shifts ((status)) WHERE status = 'open';
	  END IF;
	END $$`
	if err := db.Exec(patch).Error; err != nil {
		return fmt.Errorf("open-shift index patch: %w", err)
	}
	return nil
}
