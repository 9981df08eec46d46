package dto

import "github.com/shopspring/decimal"

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash momo"`
}

type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	ShiftID       string             `json:"shift_id"`
	Items         []SaleItemResponse `json:"items"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	Refunded      bool               `json:"refunded"`
	RefundedAt    *string            `json:"refunded_at,omitempty"`
	CreatedAt     string             `json:"created_at"`
}

type SaleFilter struct {
	// Date filters by calendar day (YYYY-MM-DD); empty means all days.
	Date  string `form:"date"`
	Page  int    `form:"page,default=1"`
	Limit int    `form:"limit,default=50"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
