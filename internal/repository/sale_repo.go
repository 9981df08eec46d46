package repository

import (
	"context"
	"time"

	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	ListAll(ctx context.Context) ([]model.Sale, error)
	ListByShift(ctx context.Context, shiftID uuid.UUID) ([]model.Sale, error)
	ListByPeriod(ctx context.Context, start, end time.Time) ([]model.Sale, error)

	CreateTx(tx *gorm.DB, s *model.Sale) error
	MarkRefundedTx(tx *gorm.DB, id uuid.UUID, at time.Time) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	// It is nil in unit-test mode, where fakes run everything in memory.
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items").First(&s, id).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items").Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ListAll(ctx context.Context) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Preload("Items").Order("created_at ASC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) ListByShift(ctx context.Context, shiftID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Preload("Items").
		Where("shift_id = ?", shiftID).Order("created_at ASC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) ListByPeriod(ctx context.Context, start, end time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Preload("Items").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(s).Error
}

func (r *saleRepo) MarkRefundedTx(tx *gorm.DB, id uuid.UUID, at time.Time) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&model.Sale{}).Where("id = ?", id).
		Updates(map[string]interface{}{"refunded": true, "refunded_at": at}).Error
}
