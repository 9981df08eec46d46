package service

// In-memory repository fakes. Tx-variant methods ignore the tx argument;
// runTx calls fn(nil) when no *gorm.DB is available, so the whole service
// layer runs without a database.

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/model"
	"github.com/Djidro/Royalpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		switch filter.Active {
		case "false":
			if p.Active {
				continue
			}
		case "all":
		default:
			if !p.Active {
				continue
			}
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) ListAll(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeProductRepo) ListLowStock(_ context.Context, threshold int) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && !p.Unlimited && p.Stock < threshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *fakeProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *fakeProductRepo) UpdateTx(_ *gorm.DB, p *model.Product) error {
	return r.Update(context.Background(), p)
}

func (r *fakeProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakeProductRepo) AdjustStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.products[id]
	if !ok || p.Unlimited || p.Stock+delta < 0 {
		return fmt.Errorf("stock adjustment of %d rejected for product %s", delta, id)
	}
	p.Stock += delta
	return nil
}

type fakeCartRepo struct {
	lines map[uuid.UUID]*model.CartLine
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{lines: make(map[uuid.UUID]*model.CartLine)}
}

func (r *fakeCartRepo) List(_ context.Context) ([]model.CartLine, error) {
	var out []model.CartLine
	for _, l := range r.lines {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeCartRepo) FindByProduct(_ context.Context, productID uuid.UUID) (*model.CartLine, error) {
	l, ok := r.lines[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *fakeCartRepo) Save(_ context.Context, line *model.CartLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	clone := *line
	r.lines[line.ProductID] = &clone
	return nil
}

func (r *fakeCartRepo) Remove(_ context.Context, productID uuid.UUID) error {
	delete(r.lines, productID)
	return nil
}

func (r *fakeCartRepo) Clear(_ context.Context) error {
	r.lines = make(map[uuid.UUID]*model.CartLine)
	return nil
}

func (r *fakeCartRepo) ClearTx(_ *gorm.DB) error {
	return r.Clear(context.Background())
}

type fakeShiftRepo struct {
	shifts map[uuid.UUID]*model.Shift
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: make(map[uuid.UUID]*model.Shift)}
}

func (r *fakeShiftRepo) Create(_ context.Context, s *model.Shift) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	clone := *s
	r.shifts[s.ID] = &clone
	return nil
}

func (r *fakeShiftRepo) FindOpen(_ context.Context) (*model.Shift, error) {
	for _, s := range r.shifts {
		if s.Status == model.ShiftOpen {
			clone := *s
			return &clone, nil
		}
	}
	return nil, repository.ErrNoOpenShift
}

func (r *fakeShiftRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *fakeShiftRepo) Update(_ context.Context, s *model.Shift) error {
	clone := *s
	r.shifts[s.ID] = &clone
	return nil
}

func (r *fakeShiftRepo) UpdateTx(_ *gorm.DB, s *model.Shift) error {
	return r.Update(context.Background(), s)
}

func (r *fakeShiftRepo) History(_ context.Context, page, limit int) ([]model.Shift, int64, error) {
	var out []model.Shift
	for _, s := range r.shifts {
		if s.Status == model.ShiftClosed {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	total := int64(len(out))
	start := (page - 1) * limit
	if start > len(out) {
		start = len(out)
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *fakeShiftRepo) ListAll(_ context.Context) ([]model.Shift, error) {
	var out []model.Shift
	for _, s := range r.shifts {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out, nil
}

type fakeSaleRepo struct {
	sales map[uuid.UUID]*model.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *fakeSaleRepo) List(_ context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if filter.Date != "" && s.CreatedAt.Format("2006-01-02") != filter.Date {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *fakeSaleRepo) ListAll(_ context.Context) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeSaleRepo) ListByShift(_ context.Context, shiftID uuid.UUID) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.ShiftID == shiftID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeSaleRepo) ListByPeriod(_ context.Context, start, end time.Time) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if !s.CreatedAt.Before(start) && s.CreatedAt.Before(end) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	clone := *s
	clone.Items = append([]model.SaleItem(nil), s.Items...)
	r.sales[s.ID] = &clone
	return nil
}

func (r *fakeSaleRepo) MarkRefundedTx(_ *gorm.DB, id uuid.UUID, at time.Time) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Refunded = true
	s.RefundedAt = &at
	return nil
}

type fakeExpenseRepo struct {
	expenses map[uuid.UUID]*model.Expense
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{expenses: make(map[uuid.UUID]*model.Expense)}
}

func (r *fakeExpenseRepo) Create(_ context.Context, e *model.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	clone := *e
	r.expenses[e.ID] = &clone
	return nil
}

func (r *fakeExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	e, ok := r.expenses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *fakeExpenseRepo) List(_ context.Context) ([]model.Expense, error) {
	var out []model.Expense
	for _, e := range r.expenses {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeExpenseRepo) ListByShift(_ context.Context, shiftID uuid.UUID) ([]model.Expense, error) {
	var out []model.Expense
	for _, e := range r.expenses {
		if e.ShiftID == shiftID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeExpenseRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.expenses, id)
	return nil
}

type fakeMovementRepo struct {
	movements []model.StockMovement
}

func newFakeMovementRepo() *fakeMovementRepo { return &fakeMovementRepo{} }

func (r *fakeMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeMovementRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) List(_ context.Context, _, _ int) ([]model.StockMovement, int64, error) {
	return append([]model.StockMovement(nil), r.movements...), int64(len(r.movements)), nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = false
	}
	return nil
}
