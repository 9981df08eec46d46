package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift states.
const (
	ShiftOpen   = "open"
	ShiftClosed = "closed"
)

// Shift is one cashier's working session bounded by open/close actions.
// At most one shift may be open at a time. Totals are mutable while the
// shift is open; a closed shift is a frozen history row.
// Invariant: GrandTotal = CashTotal + MomoTotal.
type Shift struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Cashier      string          `gorm:"not null"`
	StartingCash decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CashTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MomoTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	GrandTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status       string          `gorm:"type:varchar(10);not null;default:'open';index"`
	OpenedAt     time.Time
	ClosedAt     *time.Time
}

// IsOpen reports whether the shift still accepts sales and expenses.
func (s *Shift) IsOpen() bool { return s.Status == ShiftOpen }
