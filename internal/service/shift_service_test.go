package service

import (
	"context"
	"testing"
	"time"

	"github.com/Djidro/Royalpos/internal/config"
	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/model"
	"github.com/Djidro/Royalpos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shiftFixture struct {
	shifts   *fakeShiftRepo
	sales    *fakeSaleRepo
	expenses *fakeExpenseRepo
	cart     *fakeCartRepo
	svc      ShiftService
}

func newShiftFixture() *shiftFixture {
	f := &shiftFixture{
		shifts:   newFakeShiftRepo(),
		sales:    newFakeSaleRepo(),
		expenses: newFakeExpenseRepo(),
		cart:     newFakeCartRepo(),
	}
	cfg := &config.Config{}
	reports := NewReportService(f.sales, f.shifts, f.expenses, cfg)
	f.svc = NewShiftService(
		f.shifts, f.sales, f.expenses, f.cart,
		reports,
		worker.NewDispatcher(nil, false),
		cfg,
	)
	return f
}

func TestOpenShift(t *testing.T) {
	f := newShiftFixture()

	resp, err := f.svc.Open(context.Background(), dto.OpenShiftRequest{
		Cashier:      "Alice",
		StartingCash: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.Cashier)
	assert.Equal(t, model.ShiftOpen, resp.Status)
	assert.Equal(t, "5000", resp.StartingCash.String())
	assert.True(t, resp.CashTotal.IsZero())
	assert.Empty(t, resp.SaleIDs)
}

func TestOpenShift_AlreadyOpen(t *testing.T) {
	f := newShiftFixture()
	_, err := f.svc.Open(context.Background(), dto.OpenShiftRequest{Cashier: "Alice"})
	require.NoError(t, err)

	_, err = f.svc.Open(context.Background(), dto.OpenShiftRequest{Cashier: "Bob"})
	assert.ErrorIs(t, err, ErrShiftAlreadyOpen)
}

func TestCloseShift(t *testing.T) {
	f := newShiftFixture()
	_, err := f.svc.Open(context.Background(), dto.OpenShiftRequest{Cashier: "Alice"})
	require.NoError(t, err)

	resp, err := f.svc.Close(context.Background(), dto.CloseShiftRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.ShiftClosed, resp.Status)
	assert.NotNil(t, resp.ClosedAt)

	// Another shift can open afterwards
	_, err = f.svc.Open(context.Background(), dto.OpenShiftRequest{Cashier: "Bob"})
	assert.NoError(t, err)
}

func TestCloseShift_NoneOpen(t *testing.T) {
	f := newShiftFixture()
	_, err := f.svc.Close(context.Background(), dto.CloseShiftRequest{})
	assert.ErrorIs(t, err, ErrNoOpenShift)
}

func TestCloseShift_CartNotEmpty(t *testing.T) {
	f := newShiftFixture()
	_, err := f.svc.Open(context.Background(), dto.OpenShiftRequest{Cashier: "Alice"})
	require.NoError(t, err)
	require.NoError(t, f.cart.Save(context.Background(), &model.CartLine{
		ProductID: uuid.New(),
		Name:      "Bread",
		Price:     decimal.NewFromInt(1000),
		Quantity:  1,
	}))

	_, err = f.svc.Close(context.Background(), dto.CloseShiftRequest{})
	assert.ErrorIs(t, err, ErrCartNotEmpty)
}

func TestCloseShift_ForceClearsCart(t *testing.T) {
	f := newShiftFixture()
	_, err := f.svc.Open(context.Background(), dto.OpenShiftRequest{Cashier: "Alice"})
	require.NoError(t, err)
	require.NoError(t, f.cart.Save(context.Background(), &model.CartLine{
		ProductID: uuid.New(),
		Name:      "Bread",
		Price:     decimal.NewFromInt(1000),
		Quantity:  1,
	}))

	resp, err := f.svc.Close(context.Background(), dto.CloseShiftRequest{Force: true})
	require.NoError(t, err)
	assert.Equal(t, model.ShiftClosed, resp.Status)

	lines, err := f.cart.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestShiftHistory_ListsOnlyClosed(t *testing.T) {
	f := newShiftFixture()
	for _, cashier := range []string{"Alice", "Bob"} {
		_, err := f.svc.Open(context.Background(), dto.OpenShiftRequest{Cashier: cashier})
		require.NoError(t, err)
		_, err = f.svc.Close(context.Background(), dto.CloseShiftRequest{})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	_, err := f.svc.Open(context.Background(), dto.OpenShiftRequest{Cashier: "Carol"})
	require.NoError(t, err)

	resp, err := f.svc.History(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	for _, s := range resp.Data {
		assert.Equal(t, model.ShiftClosed, s.Status)
	}
}

func TestCurrentShift(t *testing.T) {
	f := newShiftFixture()
	_, err := f.svc.Current(context.Background())
	assert.ErrorIs(t, err, ErrNoOpenShift)

	_, err = f.svc.Open(context.Background(), dto.OpenShiftRequest{Cashier: "Alice"})
	require.NoError(t, err)

	resp, err := f.svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.Cashier)
}
