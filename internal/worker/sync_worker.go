package worker

// sync_worker.go
// Processes mirror sync jobs from QueueSync: each job replays one local
// mutation (create/update/delete) against the PocketBase mirror through
// the circuit breaker. Failed jobs are rescheduled with exponential
// backoff; after MaxSyncRetries they land in the DLQ. The pull side
// periodically fetches remote records and merges them into the local
// store with a local-wins union by id.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Djidro/Royalpos/internal/infra"
	"github.com/Djidro/Royalpos/internal/model"
	"github.com/Djidro/Royalpos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// RetryZSet holds failed sync jobs scored by next-attempt unix time.
	RetryZSet = "jobs:sync:retry"

	MaxSyncRetries = 5
)

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// SyncJobPayload is the job envelope sent to QueueSync. Record carries the
// PocketBase record body already marshalled by the enqueuing service, so a
// job stays replayable even after the local row changes again.
type SyncJobPayload struct {
	Collection string          `json:"collection"`
	Op         string          `json:"op"`
	RecordID   string          `json:"record_id"`
	Record     json.RawMessage `json:"record,omitempty"`
	Attempts   int             `json:"attempts"`
}

// SyncWorker pushes local mutations to the PocketBase mirror and pulls
// remote records back for the union merge.
type SyncWorker struct {
	pb          *infra.PocketBaseClient
	cb          *infra.CircuitBreaker
	rdb         *redis.Client
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	expenseRepo repository.ExpenseRepository
}

func NewSyncWorker(
	pb *infra.PocketBaseClient,
	cb *infra.CircuitBreaker,
	rdb *redis.Client,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	expenseRepo repository.ExpenseRepository,
) *SyncWorker {
	return &SyncWorker{
		pb:          pb,
		cb:          cb,
		rdb:         rdb,
		productRepo: productRepo,
		saleRepo:    saleRepo,
		expenseRepo: expenseRepo,
	}
}

// Process replays one mutation against the mirror. Mirror failures are never
// surfaced to the request path; the sale is already durable locally.
func (w *SyncWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload SyncJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("sync_worker: invalid payload")
		return
	}

	err := w.cb.Execute(func() error {
		return w.push(ctx, payload)
	})
	if err == nil {
		log.Info().
			Str("collection", payload.Collection).
			Str("op", payload.Op).
			Str("record_id", payload.RecordID).
			Msg("sync_worker: record mirrored")
		return
	}

	payload.Attempts++
	if payload.Attempts >= MaxSyncRetries {
		log.Error().
			Err(err).
			Str("collection", payload.Collection).
			Str("record_id", payload.RecordID).
			Int("attempts", payload.Attempts).
			Msg("sync_worker: max retries exceeded, moving to DLQ")
		data, _ := json.Marshal(payload)
		SendToDLQ(ctx, w.rdb, QueueSync, "sync", data,
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxSyncRetries, err),
			payload.Attempts)
		return
	}

	w.reschedule(ctx, payload, err)
}

// push replays the mutation. RecordID is the local UUID; PocketBase assigns
// its own ids, so updates and deletes resolve the remote id by local_id
// first. An update whose remote record vanished degrades to a create.
func (w *SyncWorker) push(ctx context.Context, p SyncJobPayload) error {
	switch p.Op {
	case OpCreate:
		return w.pb.Create(ctx, p.Collection, p.Record)
	case OpUpdate:
		remoteID, err := w.pb.FindByLocalID(ctx, p.Collection, p.RecordID)
		if errors.Is(err, infra.ErrRemoteRecordNotFound) {
			return w.pb.Create(ctx, p.Collection, p.Record)
		}
		if err != nil {
			return err
		}
		return w.pb.Update(ctx, p.Collection, remoteID, p.Record)
	case OpDelete:
		remoteID, err := w.pb.FindByLocalID(ctx, p.Collection, p.RecordID)
		if errors.Is(err, infra.ErrRemoteRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return w.pb.Delete(ctx, p.Collection, remoteID)
	default:
		return fmt.Errorf("unknown sync op %q", p.Op)
	}
}

// reschedule puts the job into the retry zset scored by its next attempt
// time. Backoff doubles per attempt: 30s, 1m, 2m, 4m.
func (w *SyncWorker) reschedule(ctx context.Context, p SyncJobPayload, cause error) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Error().Err(err).Msg("sync_worker: failed to marshal retry payload")
		return
	}
	next := time.Now().Add(syncBackoff(p.Attempts))
	if err := w.rdb.ZAdd(ctx, RetryZSet, redis.Z{
		Score:  float64(next.Unix()),
		Member: string(data),
	}).Err(); err != nil {
		log.Error().Err(err).Msg("sync_worker: failed to schedule retry")
		return
	}
	log.Warn().
		Err(cause).
		Str("collection", p.Collection).
		Str("record_id", p.RecordID).
		Int("attempt", p.Attempts).
		Time("next_retry_at", next).
		Msg("sync_worker: mirror push failed, retry scheduled")
}

func syncBackoff(attempts int) time.Duration {
	d := 30 * time.Second
	for i := 1; i < attempts; i++ {
		d *= 2
	}
	if d > 10*time.Minute {
		d = 10 * time.Minute
	}
	return d
}

// Remote record shapes. PocketBase assigns its own record ids; local_id
// carries our UUID and is the merge key. Services build these when
// enqueuing sync jobs, and the pull loop decodes them back.

type ProductRecord struct {
	LocalID  string  `json:"local_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity string  `json:"quantity"` // number as string, or "unlimited"
	Active   bool    `json:"active"`
}

func NewProductRecord(p *model.Product) ProductRecord {
	rec := ProductRecord{
		LocalID: p.ID.String(),
		Name:    p.Name,
		Price:   p.Price.InexactFloat64(),
		Active:  p.Active,
	}
	if p.Unlimited {
		rec.Quantity = "unlimited"
	} else {
		rec.Quantity = fmt.Sprintf("%d", p.Stock)
	}
	return rec
}

type ReceiptRecord struct {
	LocalID       string          `json:"local_id"`
	ShiftID       string          `json:"shift_id"`
	Date          time.Time       `json:"date"`
	Items         json.RawMessage `json:"items"`
	Total         float64         `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Refunded      bool            `json:"refunded"`
}

type ReceiptItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

func NewReceiptRecord(s *model.Sale) ReceiptRecord {
	items := make([]ReceiptItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, ReceiptItem{
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
		})
	}
	encoded, _ := json.Marshal(items)
	return ReceiptRecord{
		LocalID:       s.ID.String(),
		ShiftID:       s.ShiftID.String(),
		Date:          s.CreatedAt,
		Items:         encoded,
		Total:         s.Total.InexactFloat64(),
		PaymentMethod: s.PaymentMethod,
		Refunded:      s.Refunded,
	}
}

type ExpenseRecord struct {
	LocalID string    `json:"local_id"`
	ShiftID string    `json:"shift_id"`
	Name    string    `json:"name"`
	Amount  float64   `json:"amount"`
	Notes   string    `json:"notes"`
	Date    time.Time `json:"date"`
}

func NewExpenseRecord(e *model.Expense) ExpenseRecord {
	return ExpenseRecord{
		LocalID: e.ID.String(),
		ShiftID: e.ShiftID.String(),
		Name:    e.Name,
		Amount:  e.Amount.InexactFloat64(),
		Notes:   e.Notes,
		Date:    e.CreatedAt,
	}
}

// StartSyncPull launches the periodic pull loop. Remote records missing
// locally are inserted; records present on both sides keep the local
// version untouched.
func StartSyncPull(ctx context.Context, w *SyncWorker, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("sync_pull: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sync_pull: shutting down")
				return
			case <-ticker.C:
				w.Pull(ctx)
			}
		}
	}()
}

// Pull fetches all mirror collections and merges them into the local store.
func (w *SyncWorker) Pull(ctx context.Context) {
	if w.cb.State() == infra.CBOpen {
		log.Debug().Msg("sync_pull: circuit breaker is open, skipping tick")
		return
	}

	if n, err := w.pullProducts(ctx); err != nil {
		log.Warn().Err(err).Msg("sync_pull: products pull failed")
	} else if n > 0 {
		log.Info().Int("created", n).Msg("sync_pull: products merged")
	}

	if n, err := w.pullReceipts(ctx); err != nil {
		log.Warn().Err(err).Msg("sync_pull: receipts pull failed")
	} else if n > 0 {
		log.Info().Int("created", n).Msg("sync_pull: receipts merged")
	}

	if n, err := w.pullExpenses(ctx); err != nil {
		log.Warn().Err(err).Msg("sync_pull: expenses pull failed")
	} else if n > 0 {
		log.Info().Int("created", n).Msg("sync_pull: expenses merged")
	}
}

// productFromRecord maps a mirror record onto the local model. The mirror
// stores quantity as a string, "unlimited" or a non-negative integer.
func productFromRecord(id uuid.UUID, rec ProductRecord) (*model.Product, error) {
	p := &model.Product{
		ID:     id,
		Name:   rec.Name,
		Price:  decimal.NewFromFloat(rec.Price),
		Active: rec.Active,
	}
	if rec.Quantity == "unlimited" {
		p.Unlimited = true
		return p, nil
	}
	stock, err := strconv.Atoi(rec.Quantity)
	if err != nil {
		return nil, fmt.Errorf("quantity %q: %w", rec.Quantity, err)
	}
	p.Stock = stock
	return p, nil
}

func (w *SyncWorker) pullProducts(ctx context.Context) (int, error) {
	records, err := w.listAll(ctx, infra.CollectionProducts)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, raw := range records {
		var rec ProductRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Warn().Err(err).Msg("sync_pull: malformed product record skipped")
			continue
		}
		id, err := uuid.Parse(rec.LocalID)
		if err != nil {
			continue // record from a source that never set local_id
		}
		if _, err := w.productRepo.FindByID(ctx, id); err == nil {
			continue // local copy wins
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		p, err := productFromRecord(id, rec)
		if err != nil {
			log.Warn().Err(err).Str("product_id", rec.LocalID).Msg("sync_pull: malformed product record skipped")
			continue
		}
		if err := w.productRepo.Create(ctx, p); err != nil {
			log.Warn().Err(err).Str("product_id", rec.LocalID).Msg("sync_pull: product insert failed")
			continue
		}
		created++
	}
	return created, nil
}

func (w *SyncWorker) pullReceipts(ctx context.Context) (int, error) {
	records, err := w.listAll(ctx, infra.CollectionReceipts)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, raw := range records {
		var rec ReceiptRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Warn().Err(err).Msg("sync_pull: malformed receipt record skipped")
			continue
		}
		id, err := uuid.Parse(rec.LocalID)
		if err != nil {
			continue
		}
		if _, err := w.saleRepo.FindByID(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}
		shiftID, err := uuid.Parse(rec.ShiftID)
		if err != nil {
			continue
		}

		var items []ReceiptItem
		if len(rec.Items) > 0 {
			if err := json.Unmarshal(rec.Items, &items); err != nil {
				log.Warn().Err(err).Str("sale_id", rec.LocalID).Msg("sync_pull: receipt items unreadable")
			}
		}
		sale := &model.Sale{
			ID:            id,
			ShiftID:       shiftID,
			Total:         decimal.NewFromFloat(rec.Total),
			PaymentMethod: rec.PaymentMethod,
			Refunded:      rec.Refunded,
			CreatedAt:     rec.Date,
		}
		for _, it := range items {
			item := model.SaleItem{
				Name:     it.Name,
				Price:    decimal.NewFromFloat(it.Price),
				Quantity: it.Quantity,
			}
			if pid, err := uuid.Parse(it.ProductID); err == nil {
				item.ProductID = pid
			}
			sale.Items = append(sale.Items, item)
		}
		if err := w.saleRepo.CreateTx(nil, sale); err != nil {
			log.Warn().Err(err).Str("sale_id", rec.LocalID).Msg("sync_pull: receipt insert failed")
			continue
		}
		created++
	}
	return created, nil
}

func (w *SyncWorker) pullExpenses(ctx context.Context) (int, error) {
	records, err := w.listAll(ctx, infra.CollectionExpenses)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, raw := range records {
		var rec ExpenseRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Warn().Err(err).Msg("sync_pull: malformed expense record skipped")
			continue
		}
		id, err := uuid.Parse(rec.LocalID)
		if err != nil {
			continue
		}
		if _, err := w.expenseRepo.FindByID(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}
		shiftID, err := uuid.Parse(rec.ShiftID)
		if err != nil {
			continue
		}
		exp := &model.Expense{
			ID:        id,
			ShiftID:   shiftID,
			Name:      rec.Name,
			Amount:    decimal.NewFromFloat(rec.Amount),
			Notes:     rec.Notes,
			CreatedAt: rec.Date,
		}
		if err := w.expenseRepo.Create(ctx, exp); err != nil {
			log.Warn().Err(err).Str("expense_id", rec.LocalID).Msg("sync_pull: expense insert failed")
			continue
		}
		created++
	}
	return created, nil
}

func (w *SyncWorker) listAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var records []json.RawMessage
	err := w.cb.Execute(func() error {
		var e error
		records, e = w.pb.ListAll(ctx, collection)
		return e
	})
	return records, err
}
