package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is attached to the shift that was open when it was created.
// Amount zero marks a note-only entry (free-text shift annotation).
// Expenses may be deleted only while their shift is still open.
type Expense struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShiftID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Notes     string
	CreatedAt time.Time
}

// NoteOnly reports whether the expense carries no monetary amount.
func (e *Expense) NoteOnly() bool { return e.Amount.IsZero() }
