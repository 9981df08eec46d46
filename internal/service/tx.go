package service

import (
	"context"

	"gorm.io/gorm"
)

// timeLayout is the wire format for timestamps in responses.
const timeLayout = "2006-01-02T15:04:05Z07:00"

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
