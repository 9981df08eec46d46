package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Djidro/Royalpos/internal/config"
	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/infra"
	"github.com/Djidro/Royalpos/internal/model"
	"github.com/Djidro/Royalpos/internal/repository"
	"github.com/Djidro/Royalpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.SaleResponse, error)
	Refund(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	ReceiptPDF(ctx context.Context, id uuid.UUID) (string, error)
}

type saleService struct {
	repo         repository.SaleRepository
	shiftRepo    repository.ShiftRepository
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	dispatcher   *worker.Dispatcher
	cfg          *config.Config
}

func NewSaleService(
	repo repository.SaleRepository,
	shiftRepo repository.ShiftRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) SaleService {
	return &saleService{
		repo:         repo,
		shiftRepo:    shiftRepo,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		dispatcher:   dispatcher,
		cfg:          cfg,
	}
}

// Checkout turns the cart into a sale inside one transaction:
//  1. Require an open shift and a non-empty cart
//  2. BEGIN TX: create sale + items from the cart snapshot
//  3. Deduct stock per line (unlimited products untouched), record movements
//  4. Add the total to the shift ledger
//  5. Clear the cart, COMMIT
//  6. (async) mirror the receipt
func (s *saleService) Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.SaleResponse, error) {
	shift, err := s.shiftRepo.FindOpen(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoOpenShift) {
			return nil, ErrNoOpenShift
		}
		return nil, err
	}

	lines, err := s.cartRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	sale := &model.Sale{
		ShiftID:       shift.ID,
		PaymentMethod: req.PaymentMethod,
		Total:         decimal.Zero,
		CreatedAt:     time.Now(),
	}
	for _, l := range lines {
		sale.Items = append(sale.Items, model.SaleItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
		sale.Total = sale.Total.Add(l.Subtotal())
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, sale); err != nil {
			return err
		}

		for _, item := range sale.Items {
			p, err := s.productRepo.FindByIDTx(tx, item.ProductID)
			if err != nil {
				return ErrProductNotFound
			}
			if p.Unlimited {
				continue
			}
			if err := s.productRepo.AdjustStockTx(tx, p.ID, -item.Quantity); err != nil {
				return ErrInsufficientStock
			}
			mv := &model.StockMovement{
				ProductID:   p.ID,
				Type:        model.MovementSale,
				Quantity:    -item.Quantity,
				StockBefore: p.Stock,
				StockAfter:  p.Stock - item.Quantity,
				ReferenceID: &sale.ID,
			}
			if err := s.movementRepo.CreateTx(tx, mv); err != nil {
				return err
			}
		}

		switch req.PaymentMethod {
		case model.PaymentCash:
			shift.CashTotal = shift.CashTotal.Add(sale.Total)
		case model.PaymentMomo:
			shift.MomoTotal = shift.MomoTotal.Add(sale.Total)
		}
		shift.GrandTotal = shift.GrandTotal.Add(sale.Total)
		if err := s.shiftRepo.UpdateTx(tx, shift); err != nil {
			return err
		}

		return s.cartRepo.ClearTx(tx)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("payment_method", sale.PaymentMethod).
		Str("total", sale.Total.StringFixed(2)).
		Msg("sale recorded")

	s.mirror(ctx, worker.OpCreate, sale)
	return saleToResponse(sale), nil
}

// Refund reverses a sale of the open shift: restores finite stock, removes
// the total from the shift ledger, and flags the sale. The sale row stays
// for the audit trail. Refunding sales from earlier shifts is rejected so
// every shift ledger stays self-contained.
func (s *saleService) Refund(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	if sale.Refunded {
		return nil, ErrAlreadyRefunded
	}

	shift, err := s.shiftRepo.FindOpen(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoOpenShift) {
			return nil, ErrNoOpenShift
		}
		return nil, err
	}
	if sale.ShiftID != shift.ID {
		return nil, ErrRefundOtherShift
	}

	now := time.Now()
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.MarkRefundedTx(tx, sale.ID, now); err != nil {
			return err
		}

		for _, item := range sale.Items {
			p, err := s.productRepo.FindByIDTx(tx, item.ProductID)
			if err != nil {
				continue // product deleted since the sale; nothing to restore
			}
			if p.Unlimited {
				continue
			}
			if err := s.productRepo.AdjustStockTx(tx, p.ID, item.Quantity); err != nil {
				return err
			}
			mv := &model.StockMovement{
				ProductID:   p.ID,
				Type:        model.MovementRefund,
				Quantity:    item.Quantity,
				StockBefore: p.Stock,
				StockAfter:  p.Stock + item.Quantity,
				ReferenceID: &sale.ID,
			}
			if err := s.movementRepo.CreateTx(tx, mv); err != nil {
				return err
			}
		}

		switch sale.PaymentMethod {
		case model.PaymentCash:
			shift.CashTotal = shift.CashTotal.Sub(sale.Total)
		case model.PaymentMomo:
			shift.MomoTotal = shift.MomoTotal.Sub(sale.Total)
		}
		shift.GrandTotal = shift.GrandTotal.Sub(sale.Total)
		return s.shiftRepo.UpdateTx(tx, shift)
	})
	if err != nil {
		return nil, err
	}

	sale.Refunded = true
	sale.RefundedAt = &now
	log.Info().Str("sale_id", sale.ID.String()).Msg("sale refunded")

	s.mirror(ctx, worker.OpUpdate, sale)
	return saleToResponse(sale), nil
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.SaleListResponse{
		Data:  make([]dto.SaleResponse, len(sales)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range sales {
		resp.Data[i] = *saleToResponse(&sales[i])
	}
	return resp, nil
}

func (s *saleService) ReceiptPDF(ctx context.Context, id uuid.UUID) (string, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSaleNotFound
		}
		return "", err
	}
	return infra.GenerateReceiptPDF(sale, s.cfg.BusinessName, s.cfg.CurrencyCode, s.cfg.PDFStoragePath)
}

func (s *saleService) mirror(ctx context.Context, op string, sale *model.Sale) {
	if s.dispatcher == nil {
		return
	}
	rec, err := json.Marshal(worker.NewReceiptRecord(sale))
	if err != nil {
		return
	}
	job := worker.SyncJobPayload{
		Collection: infra.CollectionReceipts,
		Op:         op,
		RecordID:   sale.ID.String(),
		Record:     rec,
	}
	if err := s.dispatcher.EnqueueSync(ctx, job); err != nil {
		log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("sale: sync enqueue failed")
	}
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID.String(),
		ShiftID:       sale.ShiftID.String(),
		Items:         make([]dto.SaleItemResponse, len(sale.Items)),
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Refunded:      sale.Refunded,
		CreatedAt:     sale.CreatedAt.Format(timeLayout),
	}
	if sale.RefundedAt != nil {
		at := sale.RefundedAt.Format(timeLayout)
		resp.RefundedAt = &at
	}
	for i, item := range sale.Items {
		resp.Items[i] = dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		}
	}
	return resp
}
