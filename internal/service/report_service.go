package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Djidro/Royalpos/internal/config"
	"github.com/Djidro/Royalpos/internal/dto"
	"github.com/Djidro/Royalpos/internal/infra"
	"github.com/Djidro/Royalpos/internal/model"
	"github.com/Djidro/Royalpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dayLayout = "2006-01-02"

type ReportService interface {
	Summary(ctx context.Context, filter dto.SummaryFilter) (*dto.SummaryResponse, error)
	ShiftReport(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftReportResponse, error)
	ShiftReportPDF(ctx context.Context, shiftID uuid.UUID) (string, error)
}

type reportService struct {
	saleRepo    repository.SaleRepository
	shiftRepo   repository.ShiftRepository
	expenseRepo repository.ExpenseRepository
	cfg         *config.Config
}

func NewReportService(
	saleRepo repository.SaleRepository,
	shiftRepo repository.ShiftRepository,
	expenseRepo repository.ExpenseRepository,
	cfg *config.Config,
) ReportService {
	return &reportService{
		saleRepo:    saleRepo,
		shiftRepo:   shiftRepo,
		expenseRepo: expenseRepo,
		cfg:         cfg,
	}
}

// Summary aggregates sales over a day range, inclusive on both ends.
// Refunded sales are excluded; the money came back.
func (s *reportService) Summary(ctx context.Context, filter dto.SummaryFilter) (*dto.SummaryResponse, error) {
	var sales []model.Sale
	var err error

	if filter.Start == "" && filter.End == "" {
		sales, err = s.saleRepo.ListAll(ctx)
	} else {
		start, end, perr := parseDayRange(filter.Start, filter.End)
		if perr != nil {
			return nil, perr
		}
		sales, err = s.saleRepo.ListByPeriod(ctx, start, end)
	}
	if err != nil {
		return nil, err
	}

	resp := &dto.SummaryResponse{
		Start:      filter.Start,
		End:        filter.End,
		CashTotal:  decimal.Zero,
		MomoTotal:  decimal.Zero,
		GrandTotal: decimal.Zero,
		Items:      []dto.ItemBreakdown{},
	}

	type key struct {
		name  string
		price string
	}
	breakdown := map[key]*dto.ItemBreakdown{}

	for i := range sales {
		sale := &sales[i]
		if sale.Refunded {
			continue
		}
		resp.Transactions++
		switch sale.PaymentMethod {
		case model.PaymentCash:
			resp.CashTotal = resp.CashTotal.Add(sale.Total)
		case model.PaymentMomo:
			resp.MomoTotal = resp.MomoTotal.Add(sale.Total)
		}
		resp.GrandTotal = resp.GrandTotal.Add(sale.Total)

		for _, item := range sale.Items {
			k := key{name: item.Name, price: item.Price.String()}
			b, ok := breakdown[k]
			if !ok {
				b = &dto.ItemBreakdown{Name: item.Name, UnitPrice: item.Price, Total: decimal.Zero}
				breakdown[k] = b
			}
			b.Quantity += item.Quantity
			b.Total = b.Total.Add(item.Subtotal())
		}
	}

	for _, b := range breakdown {
		resp.Items = append(resp.Items, *b)
	}
	sort.Slice(resp.Items, func(i, j int) bool {
		if !resp.Items[i].Total.Equal(resp.Items[j].Total) {
			return resp.Items[i].Total.GreaterThan(resp.Items[j].Total)
		}
		return resp.Items[i].Name < resp.Items[j].Name
	})

	return resp, nil
}

// ShiftReport builds the end-of-shift figures plus a plain-text rendition
// and a wa.me deep link carrying it.
func (s *reportService) ShiftReport(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftReportResponse, error) {
	shift, err := s.shiftRepo.FindByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	sales, err := s.saleRepo.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	salesCount, refundsCount := 0, 0
	for _, sale := range sales {
		if sale.Refunded {
			refundsCount++
		} else {
			salesCount++
		}
	}

	expensesTotal := decimal.Zero
	for _, e := range expenses {
		expensesTotal = expensesTotal.Add(e.Amount)
	}

	// What goes to the bank: the float plus cash taken, minus cash spent.
	deposit := shift.StartingCash.Add(shift.CashTotal).Sub(expensesTotal)

	text := s.reportText(shift, salesCount, refundsCount, expensesTotal, deposit, expenses)

	return &dto.ShiftReportResponse{
		ShiftID:       shift.ID.String(),
		Cashier:       shift.Cashier,
		StartingCash:  shift.StartingCash,
		CashTotal:     shift.CashTotal,
		MomoTotal:     shift.MomoTotal,
		GrandTotal:    shift.GrandTotal,
		ExpensesTotal: expensesTotal,
		Deposit:       deposit,
		Sales:         salesCount,
		Refunds:       refundsCount,
		Text:          text,
		WhatsAppURL:   "https://wa.me/?text=" + url.QueryEscape(text),
	}, nil
}

func (s *reportService) ShiftReportPDF(ctx context.Context, shiftID uuid.UUID) (string, error) {
	shift, err := s.shiftRepo.FindByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrShiftNotFound
		}
		return "", err
	}
	report, err := s.ShiftReport(ctx, shiftID)
	if err != nil {
		return "", err
	}
	expenses, err := s.expenseRepo.ListByShift(ctx, shiftID)
	if err != nil {
		return "", err
	}

	return infra.GenerateShiftReportPDF(infra.ShiftReportData{
		Shift:         shift,
		SalesCount:    report.Sales,
		RefundsCount:  report.Refunds,
		ExpensesTotal: report.ExpensesTotal,
		Deposit:       report.Deposit,
		Expenses:      expenses,
	}, s.cfg.BusinessName, s.cfg.CurrencyCode, s.cfg.PDFStoragePath)
}

func (s *reportService) reportText(
	shift *model.Shift,
	salesCount, refundsCount int,
	expensesTotal, deposit decimal.Decimal,
	expenses []model.Expense,
) string {
	cur := s.cfg.CurrencyCode
	var b strings.Builder

	fmt.Fprintf(&b, "%s Shift Report\n", s.cfg.BusinessName)
	fmt.Fprintf(&b, "Cashier: %s\n", shift.Cashier)
	fmt.Fprintf(&b, "Opened: %s\n", shift.OpenedAt.Format("02/01/2006 15:04"))
	if shift.ClosedAt != nil {
		fmt.Fprintf(&b, "Closed: %s\n", shift.ClosedAt.Format("02/01/2006 15:04"))
	}
	fmt.Fprintf(&b, "\nSales: %d", salesCount)
	if refundsCount > 0 {
		fmt.Fprintf(&b, " (refunds: %d)", refundsCount)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Cash: %s %s\n", shift.CashTotal.StringFixed(0), cur)
	fmt.Fprintf(&b, "MoMo: %s %s\n", shift.MomoTotal.StringFixed(0), cur)
	fmt.Fprintf(&b, "Total: %s %s\n", shift.GrandTotal.StringFixed(0), cur)
	fmt.Fprintf(&b, "\nStarting cash: %s %s\n", shift.StartingCash.StringFixed(0), cur)
	fmt.Fprintf(&b, "Expenses: %s %s\n", expensesTotal.StringFixed(0), cur)
	for _, e := range expenses {
		if e.NoteOnly() {
			fmt.Fprintf(&b, "  - %s (note)\n", expenseLabel(e))
		} else {
			fmt.Fprintf(&b, "  - %s: %s %s\n", expenseLabel(e), e.Amount.StringFixed(0), cur)
		}
	}
	fmt.Fprintf(&b, "\nDeposit: %s %s", deposit.StringFixed(0), cur)

	return b.String()
}

func expenseLabel(e model.Expense) string {
	if e.Name != "" {
		return e.Name
	}
	return e.Notes
}

// parseDayRange turns inclusive YYYY-MM-DD bounds into a half-open
// [start, end) time window. Empty bounds stretch to the epoch or far future.
func parseDayRange(startStr, endStr string) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Now().AddDate(100, 0, 0)

	if startStr != "" {
		t, err := time.ParseInLocation(dayLayout, startStr, time.Local)
		if err != nil {
			return start, end, fmt.Errorf("start %q: %w", startStr, ErrInvalidDate)
		}
		start = t
	}
	if endStr != "" {
		t, err := time.ParseInLocation(dayLayout, endStr, time.Local)
		if err != nil {
			return start, end, fmt.Errorf("end %q: %w", endStr, ErrInvalidDate)
		}
		end = t.AddDate(0, 0, 1)
	}
	return start, end, nil
}
