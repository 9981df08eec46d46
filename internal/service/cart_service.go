package service

// The cart is a single persistent staging area, one line per product.
// Lines snapshot name and price at add time; checkout consumes them.

import (
	"context"
	"errors"

	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/model"
	"github.com/Djidro/Royalpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService interface {
	Add(ctx context.Context, productID uuid.UUID) (*dto.CartResponse, error)
	ChangeQuantity(ctx context.Context, productID uuid.UUID, delta int) (*dto.CartResponse, error)
	Remove(ctx context.Context, productID uuid.UUID) (*dto.CartResponse, error)
	Get(ctx context.Context) (*dto.CartResponse, error)
	Clear(ctx context.Context) error
}

type cartService struct {
	repo        repository.CartRepository
	productRepo repository.ProductRepository
	shiftRepo   repository.ShiftRepository
}

func NewCartService(repo repository.CartRepository, productRepo repository.ProductRepository, shiftRepo repository.ShiftRepository) CartService {
	return &cartService{repo: repo, productRepo: productRepo, shiftRepo: shiftRepo}
}

// Add puts one unit of the product in the cart, or bumps the existing line.
// Selling requires an open shift, so adding does too. Quantity is capped by
// available stock unless the product is unlimited.
func (s *cartService) Add(ctx context.Context, productID uuid.UUID) (*dto.CartResponse, error) {
	if _, err := s.shiftRepo.FindOpen(ctx); err != nil {
		if errors.Is(err, repository.ErrNoOpenShift) {
			return nil, ErrNoOpenShift
		}
		return nil, err
	}

	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !p.Active {
		return nil, ErrProductInactive
	}

	line, err := s.repo.FindByProduct(ctx, productID)
	switch {
	case err == nil:
		if !p.HasStock(line.Quantity + 1) {
			return nil, ErrInsufficientStock
		}
		line.Quantity++
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !p.HasStock(1) {
			return nil, ErrInsufficientStock
		}
		line = &model.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  1,
		}
	default:
		return nil, err
	}

	if err := s.repo.Save(ctx, line); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

// ChangeQuantity applies a delta to a line. Dropping to zero or below
// removes the line.
func (s *cartService) ChangeQuantity(ctx context.Context, productID uuid.UUID, delta int) (*dto.CartResponse, error) {
	line, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineNotInCart
		}
		return nil, err
	}

	next := line.Quantity + delta
	if next <= 0 {
		if err := s.repo.Remove(ctx, productID); err != nil {
			return nil, err
		}
		return s.Get(ctx)
	}

	if delta > 0 {
		p, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		if !p.HasStock(next) {
			return nil, ErrInsufficientStock
		}
	}

	line.Quantity = next
	if err := s.repo.Save(ctx, line); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

func (s *cartService) Remove(ctx context.Context, productID uuid.UUID) (*dto.CartResponse, error) {
	if err := s.repo.Remove(ctx, productID); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

func (s *cartService) Get(ctx context.Context) (*dto.CartResponse, error) {
	lines, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.CartResponse{
		Lines: make([]dto.CartLineResponse, len(lines)),
		Total: decimal.Zero,
	}
	for i, l := range lines {
		sub := l.Subtotal()
		resp.Lines[i] = dto.CartLineResponse{
			ProductID: l.ProductID.String(),
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Subtotal:  sub,
		}
		resp.Total = resp.Total.Add(sub)
	}
	return resp, nil
}

func (s *cartService) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
