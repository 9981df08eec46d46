package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Djidro/Royalpos/internal/config"
	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	sales    *fakeSaleRepo
	shifts   *fakeShiftRepo
	expenses *fakeExpenseRepo
	svc      ReportService
}

func newReportFixture() *reportFixture {
	f := &reportFixture{
		sales:    newFakeSaleRepo(),
		shifts:   newFakeShiftRepo(),
		expenses: newFakeExpenseRepo(),
	}
	f.svc = NewReportService(f.sales, f.shifts, f.expenses, &config.Config{BusinessName: "Royal Bakery", CurrencyCode: "RWF"})
	return f
}

func (f *reportFixture) storeSale(t *testing.T, shiftID uuid.UUID, method string, refunded bool, items ...model.SaleItem) *model.Sale {
	t.Helper()
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	sale := &model.Sale{
		ShiftID:       shiftID,
		Total:         total,
		PaymentMethod: method,
		Refunded:      refunded,
		CreatedAt:     time.Now(),
		Items:         items,
	}
	require.NoError(t, f.sales.CreateTx(nil, sale))
	return sale
}

func breadItem(qty int) model.SaleItem {
	return model.SaleItem{
		ProductID: uuid.New(),
		Name:      "Bread",
		Price:     decimal.NewFromInt(1000),
		Quantity:  qty,
	}
}

func TestSummary_ExcludesRefundedSales(t *testing.T) {
	f := newReportFixture()
	shiftID := uuid.New()
	f.storeSale(t, shiftID, model.PaymentCash, false, breadItem(2))
	f.storeSale(t, shiftID, model.PaymentCash, true, breadItem(5))

	resp, err := f.svc.Summary(context.Background(), dto.SummaryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Transactions)
	assert.Equal(t, "2000", resp.CashTotal.String())
	assert.Equal(t, "2000", resp.GrandTotal.String())
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
}

func TestSummary_GroupsByNameAndPrice(t *testing.T) {
	f := newReportFixture()
	shiftID := uuid.New()
	f.storeSale(t, shiftID, model.PaymentCash, false, breadItem(1))
	f.storeSale(t, shiftID, model.PaymentMomo, false, breadItem(2), model.SaleItem{
		ProductID: uuid.New(),
		Name:      "Cake",
		Price:     decimal.NewFromInt(5000),
		Quantity:  1,
	})

	resp, err := f.svc.Summary(context.Background(), dto.SummaryFilter{})
	require.NoError(t, err)
	assert.Equal(t, "1000", resp.CashTotal.String())
	assert.Equal(t, "7000", resp.MomoTotal.String())
	require.Len(t, resp.Items, 2)
	// Sorted by revenue, highest first
	assert.Equal(t, "Cake", resp.Items[0].Name)
	assert.Equal(t, "Bread", resp.Items[1].Name)
	assert.Equal(t, 3, resp.Items[1].Quantity)
	assert.Equal(t, "3000", resp.Items[1].Total.String())
}

func TestSummary_InvalidDate(t *testing.T) {
	f := newReportFixture()
	_, err := f.svc.Summary(context.Background(), dto.SummaryFilter{Start: "not-a-date"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestShiftReport_DepositArithmetic(t *testing.T) {
	f := newReportFixture()
	now := time.Now()
	shift := &model.Shift{
		Cashier:      "Alice",
		StartingCash: decimal.NewFromInt(5000),
		CashTotal:    decimal.NewFromInt(12000),
		MomoTotal:    decimal.NewFromInt(4000),
		GrandTotal:   decimal.NewFromInt(16000),
		Status:       model.ShiftClosed,
		OpenedAt:     now.Add(-8 * time.Hour),
		ClosedAt:     &now,
	}
	require.NoError(t, f.shifts.Create(context.Background(), shift))

	f.storeSale(t, shift.ID, model.PaymentCash, false, breadItem(2))
	f.storeSale(t, shift.ID, model.PaymentCash, true, breadItem(1))
	require.NoError(t, f.expenses.Create(context.Background(), &model.Expense{
		ShiftID: shift.ID,
		Name:    "Flour",
		Amount:  decimal.NewFromInt(3000),
	}))

	resp, err := f.svc.ShiftReport(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Sales)
	assert.Equal(t, 1, resp.Refunds)
	assert.Equal(t, "3000", resp.ExpensesTotal.String())
	// deposit = 5000 starting + 12000 cash - 3000 expenses
	assert.Equal(t, "14000", resp.Deposit.String())
}

func TestShiftReport_WhatsAppLink(t *testing.T) {
	f := newReportFixture()
	shift := &model.Shift{
		Cashier:      "Alice",
		StartingCash: decimal.NewFromInt(5000),
		Status:       model.ShiftOpen,
		OpenedAt:     time.Now(),
	}
	require.NoError(t, f.shifts.Create(context.Background(), shift))

	resp, err := f.svc.ShiftReport(context.Background(), shift.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Text)
	assert.True(t, strings.HasPrefix(resp.WhatsAppURL, "https://wa.me/?text="), resp.WhatsAppURL)
	assert.NotContains(t, resp.WhatsAppURL, "\n", "report text must be url-encoded")
}

func TestShiftReport_UnknownShift(t *testing.T) {
	f := newReportFixture()
	_, err := f.svc.ShiftReport(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrShiftNotFound)
}
