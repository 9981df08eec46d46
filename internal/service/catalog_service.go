package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/infra"
	"github.com/Djidro/Royalpos/internal/model"
	"github.com/Djidro/Royalpos/internal/repository"
	"github.com/Djidro/Royalpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CatalogService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	ListLowStock(ctx context.Context) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Movements(ctx context.Context, productID uuid.UUID) ([]dto.StockMovementResponse, error)
}

type catalogService struct {
	repo         repository.ProductRepository
	movementRepo repository.StockMovementRepository
	saleRepo     repository.SaleRepository
	dispatcher   *worker.Dispatcher
}

func NewCatalogService(
	repo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	saleRepo repository.SaleRepository,
	dispatcher *worker.Dispatcher,
) CatalogService {
	return &catalogService{
		repo:         repo,
		movementRepo: movementRepo,
		saleRepo:     saleRepo,
		dispatcher:   dispatcher,
	}
}

func (s *catalogService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		Name:      req.Name,
		Price:     req.Price,
		Unlimited: req.Stock.Unlimited,
		Stock:     req.Stock.Count,
		Active:    true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.mirror(ctx, worker.OpCreate, p)
	return productToResponse(p), nil
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *catalogService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{
		Data:  make([]dto.ProductResponse, len(products)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range products {
		resp.Data[i] = *productToResponse(&products[i])
	}
	return resp, nil
}

func (s *catalogService) ListLowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.ListLowStock(ctx, model.DefaultLowStockThreshold)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductResponse, len(products))
	for i := range products {
		resp[i] = *productToResponse(&products[i])
	}
	return resp, nil
}

func (s *catalogService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	var mv *model.StockMovement
	if req.Stock != nil {
		before := p.Stock
		p.Unlimited = req.Stock.Unlimited
		if !req.Stock.Unlimited {
			p.Stock = req.Stock.Count
		} else {
			p.Stock = 0
		}
		if !p.Unlimited && p.Stock != before {
			mv = &model.StockMovement{
				ProductID:   p.ID,
				Type:        model.MovementEdit,
				Quantity:    p.Stock - before,
				StockBefore: before,
				StockAfter:  p.Stock,
			}
		}
	}

	// The movement row commits with the edit it describes, or not at all.
	err = runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return err
		}
		if mv != nil {
			return s.movementRepo.CreateTx(tx, mv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.mirror(ctx, worker.OpUpdate, p)
	return productToResponse(p), nil
}

// AdjustStock applies a relative delta and records a movement row. The
// repository enforces the non-negative floor atomically.
func (s *catalogService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if p.Unlimited {
		return nil, ErrStockUnlimited
	}

	before := p.Stock
	err = runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.AdjustStockTx(tx, id, req.Delta); err != nil {
			return ErrInsufficientStock
		}
		return s.movementRepo.CreateTx(tx, &model.StockMovement{
			ProductID:   id,
			Type:        model.MovementManualAdjust,
			Quantity:    req.Delta,
			StockBefore: before,
			StockAfter:  before + req.Delta,
			Reason:      req.Reason,
		})
	})
	if err != nil {
		return nil, err
	}

	p.Stock = before + req.Delta
	s.mirror(ctx, worker.OpUpdate, p)
	return productToResponse(p), nil
}

// Deactivate soft-deletes. Products referenced by sale items are never
// removed so old receipts keep resolving.
func (s *catalogService) Deactivate(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	p.Active = false
	s.mirror(ctx, worker.OpUpdate, p)
	return nil
}

func (s *catalogService) Movements(ctx context.Context, productID uuid.UUID) ([]dto.StockMovementResponse, error) {
	movements, err := s.movementRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.StockMovementResponse, len(movements))
	for i, m := range movements {
		resp[i] = dto.StockMovementResponse{
			ID:          m.ID.String(),
			ProductID:   m.ProductID.String(),
			Type:        m.Type,
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			CreatedAt:   m.CreatedAt.Format(timeLayout),
		}
		if m.ReferenceID != nil {
			ref := m.ReferenceID.String()
			resp[i].ReferenceID = &ref
		}
	}
	return resp, nil
}

func (s *catalogService) mirror(ctx context.Context, op string, p *model.Product) {
	if s.dispatcher == nil {
		return
	}
	rec, err := json.Marshal(worker.NewProductRecord(p))
	if err != nil {
		return
	}
	job := worker.SyncJobPayload{
		Collection: infra.CollectionProducts,
		Op:         op,
		RecordID:   p.ID.String(),
		Record:     rec,
	}
	if err := s.dispatcher.EnqueueSync(ctx, job); err != nil {
		log.Warn().Err(err).Str("product_id", p.ID.String()).Msg("catalog: sync enqueue failed")
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	stock := dto.FiniteStock(p.Stock)
	if p.Unlimited {
		stock = dto.UnlimitedStock()
	}
	return &dto.ProductResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Price:     p.Price,
		Stock:     stock,
		LowStock:  p.LowStock(),
		Active:    p.Active,
		CreatedAt: p.CreatedAt.Format(timeLayout),
	}
}
