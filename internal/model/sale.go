package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout.
const (
	PaymentCash = "cash"
	PaymentMomo = "momo"
)

// Sale is an immutable checkout record. The only permitted mutation after
// creation is the refund state transition; sales are never deleted.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShiftID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(10);not null"` // "cash" | "momo"
	Refunded      bool            `gorm:"not null;default:false"`
	RefundedAt    *time.Time
	CreatedAt     time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem snapshots name and price at transaction time, so later catalog
// edits never alter historical receipts.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
}

// Subtotal is Price x Quantity for one line.
func (i *SaleItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
