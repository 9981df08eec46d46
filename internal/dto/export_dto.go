package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExportVersion identifies the interchange format. Bump on breaking changes.
const ExportVersion = "1.1"

// ExportBundle is the JSON interchange file for manual cross-device transfer.
// Importing a bundle unions records by id; existing local records win on
// collision.
type ExportBundle struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Products   []ProductExport `json:"products"`
	Sales      []SaleExport    `json:"sales"`
	Shifts     []ShiftExport   `json:"shifts"`
	Expenses   []ExpenseExport `json:"expenses"`
}

type ProductExport struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity StockValue      `json:"quantity"`
	Active   bool            `json:"active"`
}

type SaleItemExport struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type SaleExport struct {
	ID            string           `json:"id"`
	ShiftID       string           `json:"shift_id"`
	Date          time.Time        `json:"date"`
	Items         []SaleItemExport `json:"items"`
	Total         decimal.Decimal  `json:"total"`
	PaymentMethod string           `json:"payment_method"`
	Refunded      bool             `json:"refunded"`
	RefundedAt    *time.Time       `json:"refunded_at,omitempty"`
}

type ShiftExport struct {
	ID           string          `json:"id"`
	Cashier      string          `json:"cashier"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      *time.Time      `json:"end_time"`
	StartingCash decimal.Decimal `json:"starting_cash"`
	CashTotal    decimal.Decimal `json:"cash_total"`
	MomoTotal    decimal.Decimal `json:"momo_total"`
	Total        decimal.Decimal `json:"total"`
	Status       string          `json:"status"`
}

type ExpenseExport struct {
	ID      string          `json:"id"`
	ShiftID string          `json:"shift_id"`
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	Notes   string          `json:"notes,omitempty"`
	Date    time.Time       `json:"date"`
}

// ImportResult summarizes an import: how many records were created and how
// many were skipped because a local record with the same id already existed.
type ImportResult struct {
	Created map[string]int `json:"created"`
	Skipped map[string]int `json:"skipped"`
}
