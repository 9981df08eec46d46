package dto

import "github.com/shopspring/decimal"

type SummaryFilter struct {
	// Start and End bound the report by calendar day (YYYY-MM-DD), inclusive.
	// Either may be empty.
	Start string
	End   string
}

type ItemBreakdown struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

type SummaryResponse struct {
	Start        string          `json:"start,omitempty"`
	End          string          `json:"end,omitempty"`
	Transactions int             `json:"transactions"`
	CashTotal    decimal.Decimal `json:"cash_total"`
	MomoTotal    decimal.Decimal `json:"momo_total"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	Items        []ItemBreakdown `json:"items"`
}
