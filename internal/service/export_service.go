package service

// Full-dataset export and import. The bundle is the backup format the
// register reads and writes; import merges by id with the local row
// winning every conflict, so re-importing an old backup never clobbers
// newer local data.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/model"
	"github.com/Djidro/Royalpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ExportService interface {
	Export(ctx context.Context) (*dto.ExportBundle, error)
	Import(ctx context.Context, bundle *dto.ExportBundle) (*dto.ImportResult, error)
}

type exportService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	shiftRepo   repository.ShiftRepository
	expenseRepo repository.ExpenseRepository
}

func NewExportService(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	shiftRepo repository.ShiftRepository,
	expenseRepo repository.ExpenseRepository,
) ExportService {
	return &exportService{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		shiftRepo:   shiftRepo,
		expenseRepo: expenseRepo,
	}
}

func (s *exportService) Export(ctx context.Context) (*dto.ExportBundle, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.saleRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	shifts, err := s.shiftRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	bundle := &dto.ExportBundle{
		Version:    dto.ExportVersion,
		ExportedAt: time.Now(),
		Products:   make([]dto.ProductExport, len(products)),
		Sales:      make([]dto.SaleExport, len(sales)),
		Shifts:     make([]dto.ShiftExport, len(shifts)),
		Expenses:   make([]dto.ExpenseExport, len(expenses)),
	}

	for i, p := range products {
		qty := dto.FiniteStock(p.Stock)
		if p.Unlimited {
			qty = dto.UnlimitedStock()
		}
		bundle.Products[i] = dto.ProductExport{
			ID:       p.ID.String(),
			Name:     p.Name,
			Price:    p.Price,
			Quantity: qty,
			Active:   p.Active,
		}
	}

	for i := range sales {
		sale := &sales[i]
		exp := dto.SaleExport{
			ID:            sale.ID.String(),
			ShiftID:       sale.ShiftID.String(),
			Date:          sale.CreatedAt,
			Items:         make([]dto.SaleItemExport, len(sale.Items)),
			Total:         sale.Total,
			PaymentMethod: sale.PaymentMethod,
			Refunded:      sale.Refunded,
			RefundedAt:    sale.RefundedAt,
		}
		for j, item := range sale.Items {
			exp.Items[j] = dto.SaleItemExport{
				ProductID: item.ProductID.String(),
				Name:      item.Name,
				Price:     item.Price,
				Quantity:  item.Quantity,
			}
		}
		bundle.Sales[i] = exp
	}

	for i, sh := range shifts {
		bundle.Shifts[i] = dto.ShiftExport{
			ID:           sh.ID.String(),
			Cashier:      sh.Cashier,
			StartTime:    sh.OpenedAt,
			EndTime:      sh.ClosedAt,
			StartingCash: sh.StartingCash,
			CashTotal:    sh.CashTotal,
			MomoTotal:    sh.MomoTotal,
			Total:        sh.GrandTotal,
			Status:       sh.Status,
		}
	}

	for i, e := range expenses {
		bundle.Expenses[i] = dto.ExpenseExport{
			ID:      e.ID.String(),
			ShiftID: e.ShiftID.String(),
			Name:    e.Name,
			Amount:  e.Amount,
			Notes:   e.Notes,
			Date:    e.CreatedAt,
		}
	}

	return bundle, nil
}

// Import merges a bundle into the local store. Shifts come first so sales
// and expenses can reference them. Malformed entries are skipped, not
// fatal; a backup from a buggy device should still restore what it can.
func (s *exportService) Import(ctx context.Context, bundle *dto.ExportBundle) (*dto.ImportResult, error) {
	if bundle == nil {
		return nil, fmt.Errorf("empty bundle")
	}

	result := &dto.ImportResult{
		Created: map[string]int{},
		Skipped: map[string]int{},
	}

	for _, pe := range bundle.Products {
		s.importProduct(ctx, pe, result)
	}
	for _, se := range bundle.Shifts {
		s.importShift(ctx, se, result)
	}
	for _, se := range bundle.Sales {
		s.importSale(ctx, se, result)
	}
	for _, ee := range bundle.Expenses {
		s.importExpense(ctx, ee, result)
	}

	log.Info().
		Interface("created", result.Created).
		Interface("skipped", result.Skipped).
		Msg("import finished")
	return result, nil
}

func (s *exportService) importProduct(ctx context.Context, pe dto.ProductExport, result *dto.ImportResult) {
	id, err := uuid.Parse(pe.ID)
	if err != nil {
		result.Skipped["products"]++
		return
	}
	if _, err := s.productRepo.FindByID(ctx, id); err == nil {
		result.Skipped["products"]++
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		result.Skipped["products"]++
		return
	}

	p := &model.Product{
		ID:        id,
		Name:      pe.Name,
		Price:     pe.Price,
		Unlimited: pe.Quantity.Unlimited,
		Stock:     pe.Quantity.Count,
		Active:    pe.Active,
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		result.Skipped["products"]++
		return
	}
	result.Created["products"]++
}

func (s *exportService) importShift(ctx context.Context, se dto.ShiftExport, result *dto.ImportResult) {
	id, err := uuid.Parse(se.ID)
	if err != nil {
		result.Skipped["shifts"]++
		return
	}
	if _, err := s.shiftRepo.FindByID(ctx, id); err == nil {
		result.Skipped["shifts"]++
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		result.Skipped["shifts"]++
		return
	}

	status := se.Status
	// An imported "open" shift from another device would fight the single
	// open shift rule; historical imports always land closed.
	if status != model.ShiftClosed {
		status = model.ShiftClosed
	}
	sh := &model.Shift{
		ID:           id,
		Cashier:      se.Cashier,
		StartingCash: se.StartingCash,
		CashTotal:    se.CashTotal,
		MomoTotal:    se.MomoTotal,
		GrandTotal:   se.Total,
		Status:       status,
		OpenedAt:     se.StartTime,
		ClosedAt:     se.EndTime,
	}
	if sh.ClosedAt == nil {
		t := se.StartTime
		sh.ClosedAt = &t
	}
	if err := s.shiftRepo.Create(ctx, sh); err != nil {
		result.Skipped["shifts"]++
		return
	}
	result.Created["shifts"]++
}

func (s *exportService) importSale(ctx context.Context, se dto.SaleExport, result *dto.ImportResult) {
	id, err := uuid.Parse(se.ID)
	if err != nil {
		result.Skipped["sales"]++
		return
	}
	shiftID, err := uuid.Parse(se.ShiftID)
	if err != nil {
		result.Skipped["sales"]++
		return
	}
	if _, err := s.saleRepo.FindByID(ctx, id); err == nil {
		result.Skipped["sales"]++
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		result.Skipped["sales"]++
		return
	}

	sale := &model.Sale{
		ID:            id,
		ShiftID:       shiftID,
		Total:         se.Total,
		PaymentMethod: se.PaymentMethod,
		Refunded:      se.Refunded,
		RefundedAt:    se.RefundedAt,
		CreatedAt:     se.Date,
	}
	for _, item := range se.Items {
		si := model.SaleItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
		if pid, err := uuid.Parse(item.ProductID); err == nil {
			si.ProductID = pid
		}
		sale.Items = append(sale.Items, si)
	}
	if err := s.saleRepo.CreateTx(nil, sale); err != nil {
		result.Skipped["sales"]++
		return
	}
	result.Created["sales"]++
}

func (s *exportService) importExpense(ctx context.Context, ee dto.ExpenseExport, result *dto.ImportResult) {
	id, err := uuid.Parse(ee.ID)
	if err != nil {
		result.Skipped["expenses"]++
		return
	}
	shiftID, err := uuid.Parse(ee.ShiftID)
	if err != nil {
		result.Skipped["expenses"]++
		return
	}
	if _, err := s.expenseRepo.FindByID(ctx, id); err == nil {
		result.Skipped["expenses"]++
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		result.Skipped["expenses"]++
		return
	}

	exp := &model.Expense{
		ID:        id,
		ShiftID:   shiftID,
		Name:      ee.Name,
		Amount:    ee.Amount,
		Notes:     ee.Notes,
		CreatedAt: ee.Date,
	}
	if err := s.expenseRepo.Create(ctx, exp); err != nil {
		result.Skipped["expenses"]++
		return
	}
	result.Created["expenses"]++
}
