package repository

import (
	"context"

	"github.com/Djidro/Royalpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository persists the register's single cart. Every mutation is
// written immediately; there is no batching.
type CartRepository interface {
	List(ctx context.Context) ([]model.CartLine, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) (*model.CartLine, error)
	Save(ctx context.Context, line *model.CartLine) error
	Remove(ctx context.Context, productID uuid.UUID) error
	Clear(ctx context.Context) error
	ClearTx(tx *gorm.DB) error
}

type cartRepo struct{ db *gorm.DB }

func NewCartRepository(db *gorm.DB) CartRepository { return &cartRepo{db: db} }

func (r *cartRepo) List(ctx context.Context) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.db.WithContext(ctx).Order("updated_at ASC").Find(&lines).Error
	return lines, err
}

func (r *cartRepo) FindByProduct(ctx context.Context, productID uuid.UUID) (*model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&line).Error
	return &line, err
}

func (r *cartRepo) Save(ctx context.Context, line *model.CartLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *cartRepo) Remove(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.CartLine{}).Error
}

func (r *cartRepo) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&model.CartLine{}).Error
}

func (r *cartRepo) ClearTx(tx *gorm.DB) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Where("1 = 1").Delete(&model.CartLine{}).Error
}
