package repository

import (
	"context"

	"github.com/Djidro/Royalpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error)
	List(ctx context.Context, page, limit int) ([]model.StockMovement, int64, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(m).Error
}

func (r *stockMovementRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error) {
	var movs []model.StockMovement
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("created_at DESC").Find(&movs).Error
	return movs, err
}

func (r *stockMovementRepo) List(ctx context.Context, page, limit int) ([]model.StockMovement, int64, error) {
	var movs []model.StockMovement
	var total int64

	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&movs).Error
	return movs, total, err
}
