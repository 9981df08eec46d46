package service

import (
	"context"
	"testing"
	"time"

	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exportFixture struct {
	products *fakeProductRepo
	sales    *fakeSaleRepo
	shifts   *fakeShiftRepo
	expenses *fakeExpenseRepo
	svc      ExportService
}

func newExportFixture() *exportFixture {
	f := &exportFixture{
		products: newFakeProductRepo(),
		sales:    newFakeSaleRepo(),
		shifts:   newFakeShiftRepo(),
		expenses: newFakeExpenseRepo(),
	}
	f.svc = NewExportService(f.products, f.sales, f.shifts, f.expenses)
	return f
}

func (f *exportFixture) seedEverything(t *testing.T) (*model.Product, *model.Shift, *model.Sale, *model.Expense) {
	t.Helper()
	ctx := context.Background()

	p := &model.Product{Name: "Bread", Price: decimal.NewFromInt(1000), Stock: 10, Active: true}
	require.NoError(t, f.products.Create(ctx, p))

	now := time.Now()
	shift := &model.Shift{
		Cashier:      "Alice",
		StartingCash: decimal.NewFromInt(5000),
		CashTotal:    decimal.NewFromInt(2000),
		GrandTotal:   decimal.NewFromInt(2000),
		Status:       model.ShiftClosed,
		OpenedAt:     now.Add(-8 * time.Hour),
		ClosedAt:     &now,
	}
	require.NoError(t, f.shifts.Create(ctx, shift))

	sale := &model.Sale{
		ShiftID:       shift.ID,
		Total:         decimal.NewFromInt(2000),
		PaymentMethod: model.PaymentCash,
		CreatedAt:     now.Add(-time.Hour),
		Items: []model.SaleItem{{
			ProductID: p.ID,
			Name:      "Bread",
			Price:     decimal.NewFromInt(1000),
			Quantity:  2,
		}},
	}
	require.NoError(t, f.sales.CreateTx(nil, sale))

	exp := &model.Expense{ShiftID: shift.ID, Name: "Flour", Amount: decimal.NewFromInt(500)}
	require.NoError(t, f.expenses.Create(ctx, exp))

	return p, shift, sale, exp
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := newExportFixture()
	p, shift, sale, _ := src.seedEverything(t)

	bundle, err := src.svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.ExportVersion, bundle.Version)
	require.Len(t, bundle.Products, 1)
	require.Len(t, bundle.Sales, 1)
	require.Len(t, bundle.Shifts, 1)
	require.Len(t, bundle.Expenses, 1)

	dst := newExportFixture()
	result, err := dst.svc.Import(context.Background(), bundle)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created["products"])
	assert.Equal(t, 1, result.Created["shifts"])
	assert.Equal(t, 1, result.Created["sales"])
	assert.Equal(t, 1, result.Created["expenses"])
	assert.Empty(t, result.Skipped)

	got, err := dst.products.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)

	gotSale, err := dst.sales.FindByID(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, shift.ID, gotSale.ShiftID)
	assert.Equal(t, "2000", gotSale.Total.String())
}

func TestImport_LocalWinsOnCollision(t *testing.T) {
	f := newExportFixture()
	p, _, _, _ := f.seedEverything(t)

	bundle, err := f.svc.Export(context.Background())
	require.NoError(t, err)
	// Tamper the incoming copy; the local record must survive untouched
	bundle.Products[0].Name = "Bread v2"

	result, err := f.svc.Import(context.Background(), bundle)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped["products"])
	assert.Equal(t, 1, result.Skipped["shifts"])
	assert.Equal(t, 1, result.Skipped["sales"])
	assert.Equal(t, 1, result.Skipped["expenses"])
	assert.Empty(t, result.Created)

	got, err := f.products.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bread", got.Name)
}

func TestImport_OpenShiftLandsClosed(t *testing.T) {
	f := newExportFixture()
	id := uuid.New()
	opened := time.Now().Add(-2 * time.Hour)

	result, err := f.svc.Import(context.Background(), &dto.ExportBundle{
		Version: dto.ExportVersion,
		Shifts: []dto.ShiftExport{{
			ID:        id.String(),
			Cashier:   "Remote",
			StartTime: opened,
			Status:    model.ShiftOpen,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created["shifts"])

	shift, err := f.shifts.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.ShiftClosed, shift.Status)
	assert.NotNil(t, shift.ClosedAt)

	_, err = f.shifts.FindOpen(context.Background())
	assert.Error(t, err, "imports must never produce an open shift")
}

func TestImport_MalformedIDsSkipped(t *testing.T) {
	f := newExportFixture()

	result, err := f.svc.Import(context.Background(), &dto.ExportBundle{
		Version:  dto.ExportVersion,
		Products: []dto.ProductExport{{ID: "not-a-uuid", Name: "Ghost"}},
		Expenses: []dto.ExpenseExport{{ID: "also-bad", Name: "Ghost"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped["products"])
	assert.Equal(t, 1, result.Skipped["expenses"])
	assert.Empty(t, result.Created)
}

func TestImport_NilBundle(t *testing.T) {
	f := newExportFixture()
	_, err := f.svc.Import(context.Background(), nil)
	assert.Error(t, err)
}
