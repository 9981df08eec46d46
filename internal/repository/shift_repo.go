package repository

import (
	"context"
	"errors"

	"github.com/Djidro/Royalpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNoOpenShift is returned by FindOpen when no shift is currently open.
var ErrNoOpenShift = errors.New("no open shift")

type ShiftRepository interface {
	Create(ctx context.Context, s *model.Shift) error
	// FindOpen returns the single open shift, or ErrNoOpenShift.
	FindOpen(ctx context.Context) (*model.Shift, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error)
	Update(ctx context.Context, s *model.Shift) error
	UpdateTx(tx *gorm.DB, s *model.Shift) error
	History(ctx context.Context, page, limit int) ([]model.Shift, int64, error)
	ListAll(ctx context.Context) ([]model.Shift, error)
}

type shiftRepo struct{ db *gorm.DB }

func NewShiftRepository(db *gorm.DB) ShiftRepository { return &shiftRepo{db: db} }

func (r *shiftRepo) Create(ctx context.Context, s *model.Shift) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *shiftRepo) FindOpen(ctx context.Context) (*model.Shift, error) {
	var s model.Shift
	err := r.db.WithContext(ctx).Where("status = ?", model.ShiftOpen).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoOpenShift
	}
	return &s, err
}

func (r *shiftRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *shiftRepo) Update(ctx context.Context, s *model.Shift) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *shiftRepo) UpdateTx(tx *gorm.DB, s *model.Shift) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Save(s).Error
}

func (r *shiftRepo) History(ctx context.Context, page, limit int) ([]model.Shift, int64, error) {
	var shifts []model.Shift
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Shift{}).Where("status = ?", model.ShiftClosed)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("opened_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&shifts).Error
	return shifts, total, err
}

func (r *shiftRepo) ListAll(ctx context.Context) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).Order("opened_at ASC").Find(&shifts).Error
	return shifts, err
}
