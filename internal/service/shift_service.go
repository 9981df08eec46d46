package service

// Shift ledger. At most one shift is open at a time; the database enforces
// this with a partial unique index, the service gives the friendly error.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Djidro/Royalpos/internal/config"
	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/model"
	"github.com/Djidro/Royalpos/internal/repository"
	"github.com/Djidro/Royalpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ShiftService interface {
	Open(ctx context.Context, req dto.OpenShiftRequest) (*dto.ShiftResponse, error)
	Close(ctx context.Context, req dto.CloseShiftRequest) (*dto.ShiftResponse, error)
	Current(ctx context.Context) (*dto.ShiftResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ShiftResponse, error)
	History(ctx context.Context, page, limit int) (*dto.ShiftListResponse, error)
}

type shiftService struct {
	repo        repository.ShiftRepository
	saleRepo    repository.SaleRepository
	expenseRepo repository.ExpenseRepository
	cartRepo    repository.CartRepository
	reports     ReportService
	dispatcher  *worker.Dispatcher
	cfg         *config.Config
}

func NewShiftService(
	repo repository.ShiftRepository,
	saleRepo repository.SaleRepository,
	expenseRepo repository.ExpenseRepository,
	cartRepo repository.CartRepository,
	reports ReportService,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) ShiftService {
	return &shiftService{
		repo:        repo,
		saleRepo:    saleRepo,
		expenseRepo: expenseRepo,
		cartRepo:    cartRepo,
		reports:     reports,
		dispatcher:  dispatcher,
		cfg:         cfg,
	}
}

func (s *shiftService) Open(ctx context.Context, req dto.OpenShiftRequest) (*dto.ShiftResponse, error) {
	if _, err := s.repo.FindOpen(ctx); err == nil {
		return nil, ErrShiftAlreadyOpen
	} else if !errors.Is(err, repository.ErrNoOpenShift) {
		return nil, err
	}

	shift := &model.Shift{
		Cashier:      req.Cashier,
		StartingCash: req.StartingCash,
		Status:       model.ShiftOpen,
		OpenedAt:     time.Now(),
	}
	if err := s.repo.Create(ctx, shift); err != nil {
		return nil, err
	}
	log.Info().Str("shift_id", shift.ID.String()).Str("cashier", shift.Cashier).Msg("shift opened")
	return s.toResponse(ctx, shift)
}

// Close ends the open shift. A non-empty cart blocks the close unless the
// caller forces it, in which case the cart is discarded. When a report
// email is configured the end-of-shift report goes out asynchronously.
func (s *shiftService) Close(ctx context.Context, req dto.CloseShiftRequest) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindOpen(ctx)
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
	if len(lines) > 0 {
		if !req.Force {
			return nil, ErrCartNotEmpty
		}
		if err := s.cartRepo.Clear(ctx); err != nil {
			return nil, err
		}
		log.Warn().Int("lines", len(lines)).Msg("cart discarded on forced shift close")
	}

	now := time.Now()
	shift.Status = model.ShiftClosed
	shift.ClosedAt = &now
	if err := s.repo.Update(ctx, shift); err != nil {
		return nil, err
	}
	log.Info().Str("shift_id", shift.ID.String()).Str("cashier", shift.Cashier).Msg("shift closed")

	s.sendReport(ctx, shift)

	return s.toResponse(ctx, shift)
}

// sendReport enqueues the end-of-shift report email. Failures only log;
// the close already succeeded.
func (s *shiftService) sendReport(ctx context.Context, shift *model.Shift) {
	to := s.cfg.ShiftReportEmail
	if to == "" || s.dispatcher == nil {
		return
	}

	report, err := s.reports.ShiftReport(ctx, shift.ID)
	if err != nil {
		log.Warn().Err(err).Str("shift_id", shift.ID.String()).Msg("shift report build failed")
		return
	}
	pdfPath, err := s.reports.ShiftReportPDF(ctx, shift.ID)
	if err != nil {
		log.Warn().Err(err).Str("shift_id", shift.ID.String()).Msg("shift report PDF failed")
		pdfPath = ""
	}

	job := worker.EmailJobPayload{
		ToEmail: to,
		Subject: fmt.Sprintf("%s shift report, %s", s.cfg.BusinessName, shift.OpenedAt.Format("02/01/2006")),
		Body:    report.Text,
		PDFPath: pdfPath,
	}
	if err := s.dispatcher.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Msg("shift report email enqueue failed")
	}
}

func (s *shiftService) Current(ctx context.Context) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindOpen(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoOpenShift) {
			return nil, ErrNoOpenShift
		}
		return nil, err
	}
	return s.toResponse(ctx, shift)
}

func (s *shiftService) Get(ctx context.Context, id uuid.UUID) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	return s.toResponse(ctx, shift)
}

func (s *shiftService) History(ctx context.Context, page, limit int) (*dto.ShiftListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	shifts, total, err := s.repo.History(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.ShiftListResponse{
		Data:  make([]dto.ShiftResponse, len(shifts)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range shifts {
		r, err := s.toResponse(ctx, &shifts[i])
		if err != nil {
			return nil, err
		}
		resp.Data[i] = *r
	}
	return resp, nil
}

func (s *shiftService) toResponse(ctx context.Context, shift *model.Shift) (*dto.ShiftResponse, error) {
	sales, err := s.saleRepo.ListByShift(ctx, shift.ID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListByShift(ctx, shift.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ShiftResponse{
		ID:           shift.ID.String(),
		Cashier:      shift.Cashier,
		StartingCash: shift.StartingCash,
		CashTotal:    shift.CashTotal,
		MomoTotal:    shift.MomoTotal,
		GrandTotal:   shift.GrandTotal,
		Status:       shift.Status,
		OpenedAt:     shift.OpenedAt.Format(timeLayout),
		SaleIDs:      []string{},
		RefundIDs:    []string{},
		ExpenseIDs:   []string{},
	}
	if shift.ClosedAt != nil {
		closed := shift.ClosedAt.Format(timeLayout)
		resp.ClosedAt = &closed
	}
	for _, sale := range sales {
		if sale.Refunded {
			resp.RefundIDs = append(resp.RefundIDs, sale.ID.String())
		} else {
			resp.SaleIDs = append(resp.SaleIDs, sale.ID.String())
		}
	}
	for _, e := range expenses {
		resp.ExpenseIDs = append(resp.ExpenseIDs, e.ID.String())
	}
	return resp, nil
}
