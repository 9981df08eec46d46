package dto

import "github.com/shopspring/decimal"

type OpenShiftRequest struct {
	Cashier      string          `json:"cashier" validate:"required"`
	StartingCash decimal.Decimal `json:"starting_cash" validate:"min=0"`
}

type CloseShiftRequest struct {
	// Force confirms closing even though the cart still holds lines.
	Force bool `json:"force"`
}

type ShiftResponse struct {
	ID           string          `json:"id"`
	Cashier      string          `json:"cashier"`
	StartingCash decimal.Decimal `json:"starting_cash"`
	CashTotal    decimal.Decimal `json:"cash_total"`
	MomoTotal    decimal.Decimal `json:"momo_total"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	Status       string          `json:"status"`
	OpenedAt     string          `json:"opened_at"`
	ClosedAt     *string         `json:"closed_at,omitempty"`
	// Non-owning back-references, materialized from the sales/expenses tables
	SaleIDs    []string `json:"sale_ids"`
	RefundIDs  []string `json:"refund_ids"`
	ExpenseIDs []string `json:"expense_ids"`
}

type ShiftListResponse struct {
	Data  []ShiftResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type ShiftReportResponse struct {
	ShiftID       string          `json:"shift_id"`
	Cashier       string          `json:"cashier"`
	StartingCash  decimal.Decimal `json:"starting_cash"`
	CashTotal     decimal.Decimal `json:"cash_total"`
	MomoTotal     decimal.Decimal `json:"momo_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	ExpensesTotal decimal.Decimal `json:"expenses_total"`
	// Deposit = starting cash + cash total - cash expenses
	Deposit     decimal.Decimal `json:"deposit"`
	Sales       int             `json:"sales"`
	Refunds     int             `json:"refunds"`
	Text        string          `json:"text"`
	WhatsAppURL string          `json:"whatsapp_url"`
}
