package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one entry in the register's single cart. Name and price are
// snapshots taken at add time. Lines merge by product id; a line whose
// quantity would drop to zero is removed instead.
type CartLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	UpdatedAt time.Time
}

// Subtotal is Price x Quantity for one line.
func (l *CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
