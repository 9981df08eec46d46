package dto

import "github.com/shopspring/decimal"

type AddExpenseRequest struct {
	// Name or Notes must be present; amount 0 records a note-only entry.
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
	Notes  string          `json:"notes"`
}

type ExpenseResponse struct {
	ID        string          `json:"id"`
	ShiftID   string          `json:"shift_id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     string          `json:"notes,omitempty"`
	NoteOnly  bool            `json:"note_only"`
	CreatedAt string          `json:"created_at"`
}
