package service

// Expenses hang off the open shift. An amount of zero records a note-only
// entry (e.g. "3 loaves given as samples"). Entries become immutable once
// their shift closes.

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/infra"
	"github.com/Djidro/Royalpos/internal/model"
	"github.com/Djidro/Royalpos/internal/repository"
	"github.com/Djidro/Royalpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ExpenseService interface {
	Add(ctx context.Context, req dto.AddExpenseRequest) (*dto.ExpenseResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]dto.ExpenseResponse, error)
	ListByShift(ctx context.Context, shiftID uuid.UUID) ([]dto.ExpenseResponse, error)
}

type expenseService struct {
	repo       repository.ExpenseRepository
	shiftRepo  repository.ShiftRepository
	dispatcher *worker.Dispatcher
}

func NewExpenseService(
	repo repository.ExpenseRepository,
	shiftRepo repository.ShiftRepository,
	dispatcher *worker.Dispatcher,
) ExpenseService {
	return &expenseService{repo: repo, shiftRepo: shiftRepo, dispatcher: dispatcher}
}

func (s *expenseService) Add(ctx context.Context, req dto.AddExpenseRequest) (*dto.ExpenseResponse, error) {
	if strings.TrimSpace(req.Name) == "" && strings.TrimSpace(req.Notes) == "" {
		return nil, ErrExpenseEmpty
	}

	shift, err := s.shiftRepo.FindOpen(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoOpenShift) {
			return nil, ErrNoOpenShift
		}
		return nil, err
	}

	exp := &model.Expense{
		ShiftID: shift.ID,
		Name:    strings.TrimSpace(req.Name),
		Amount:  req.Amount,
		Notes:   strings.TrimSpace(req.Notes),
	}
	if err := s.repo.Create(ctx, exp); err != nil {
		return nil, err
	}

	s.mirror(ctx, worker.OpCreate, exp)
	return expenseToResponse(exp), nil
}

// Delete removes an expense while its shift is still open. Closed shifts
// are settled ledgers; their expenses stay.
func (s *expenseService) Delete(ctx context.Context, id uuid.UUID) error {
	exp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}

	shift, err := s.shiftRepo.FindByID(ctx, exp.ShiftID)
	if err != nil {
		return err
	}
	if !shift.IsOpen() {
		return ErrExpenseLocked
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.mirror(ctx, worker.OpDelete, exp)
	return nil
}

func (s *expenseService) List(ctx context.Context) ([]dto.ExpenseResponse, error) {
	expenses, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return expensesToResponse(expenses), nil
}

func (s *expenseService) ListByShift(ctx context.Context, shiftID uuid.UUID) ([]dto.ExpenseResponse, error) {
	expenses, err := s.repo.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	return expensesToResponse(expenses), nil
}

func (s *expenseService) mirror(ctx context.Context, op string, exp *model.Expense) {
	if s.dispatcher == nil {
		return
	}
	rec, err := json.Marshal(worker.NewExpenseRecord(exp))
	if err != nil {
		return
	}
	job := worker.SyncJobPayload{
		Collection: infra.CollectionExpenses,
		Op:         op,
		RecordID:   exp.ID.String(),
		Record:     rec,
	}
	if err := s.dispatcher.EnqueueSync(ctx, job); err != nil {
		log.Warn().Err(err).Str("expense_id", exp.ID.String()).Msg("expense: sync enqueue failed")
	}
}

func expensesToResponse(expenses []model.Expense) []dto.ExpenseResponse {
	resp := make([]dto.ExpenseResponse, len(expenses))
	for i := range expenses {
		resp[i] = *expenseToResponse(&expenses[i])
	}
	return resp
}

func expenseToResponse(e *model.Expense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:        e.ID.String(),
		ShiftID:   e.ShiftID.String(),
		Name:      e.Name,
		Amount:    e.Amount,
		Notes:     e.Notes,
		NoteOnly:  e.NoteOnly(),
		CreatedAt: e.CreatedAt.Format(timeLayout),
	}
}
