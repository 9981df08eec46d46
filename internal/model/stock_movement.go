package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement types.
const (
	MovementSale         = "sale"
	MovementRefund       = "refund"
	MovementManualAdjust = "manual_adjust"
	MovementEdit         = "edit"
)

// StockMovement records every stock change on a finite-stock product.
// Movements are NEVER modified or deleted; reversals create inverse entries.
type StockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Type        string    `gorm:"not null"`
	Quantity    int       `gorm:"not null"` // positive = in, negative = out
	StockBefore int       `gorm:"not null"`
	StockAfter  int       `gorm:"not null"`
	Reason      string
	// ReferenceID links to the originating Sale when applicable
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization.
func (StockMovement) TableName() string { return "stock_movements" }
