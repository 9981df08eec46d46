package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold marks finite-stock products for the low-stock
// report when their count drops below it.
const DefaultLowStockThreshold = 5

// Product is a purchasable catalog item. Unlimited=true exempts it from
// stock validation and decrement entirely; Stock is ignored while the flag
// is set and MUST stay non-negative otherwise.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"index;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	Unlimited bool            `gorm:"not null;default:false"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasStock reports whether qty units can be sold right now.
func (p *Product) HasStock(qty int) bool {
	return p.Unlimited || p.Stock >= qty
}

// LowStock reports whether the product should appear in the low-stock warning.
func (p *Product) LowStock() bool {
	return !p.Unlimited && p.Stock < DefaultLowStockThreshold
}
