package repository

import (
	"context"

	"github.com/Djidro/Royalpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *model.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context) ([]model.Expense, error)
	ListByShift(ctx context.Context, shiftID uuid.UUID) ([]model.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type expenseRepo struct{ db *gorm.DB }

func NewExpenseRepository(db *gorm.DB) ExpenseRepository { return &expenseRepo{db: db} }

func (r *expenseRepo) Create(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *expenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var e model.Expense
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *expenseRepo) List(ctx context.Context) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) ListByShift(ctx context.Context, shiftID uuid.UUID) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).Where("shift_id = ?", shiftID).
		Order("created_at ASC").Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Expense{}, id).Error
}
