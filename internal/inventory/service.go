package inventory

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/clinistock/clinistock/internal/catalog"
	"github.com/clinistock/clinistock/internal/clock"
	"github.com/clinistock/clinistock/internal/shared"
)

// CatalogPort resolves catalog items so ledger operations can reject unknown
// item ids.
type CatalogPort interface {
	Get(ctx context.Context, id int64) (catalog.Item, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards mutation refs against replays.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service coordinates batch ledger operations. All mutations pass through it.
type Service struct {
	repo        RepositoryPort
	catalog     CatalogPort
	clk         clock.Clock
	audit       AuditPort
	idempotency IdempotencyPort
	integration IntegrationHandler
}

// NewService builds Service. audit, idempotency and integration may be nil.
func NewService(repo RepositoryPort, cat CatalogPort, clk clock.Clock, audit AuditPort, idem IdempotencyPort, integration IntegrationHandler) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{repo: repo, catalog: cat, clk: clk, audit: audit, idempotency: idem, integration: integration}
}

// AddBatch records a newly received lot. Batches are never merged; every
// receipt creates a new batch with quantity remaining equal to quantity
// received.
func (s *Service) AddBatch(ctx context.Context, input AddBatchInput) (Batch, error) {
	if input.QtyReceived <= 0 {
		return Batch{}, shared.NewValidationError("quantity_received", "must be > 0")
	}
	if input.ExpiryDate.IsZero() {
		return Batch{}, shared.NewValidationError("expiry_date", "is required")
	}
	if _, err := s.catalog.Get(ctx, input.ItemID); err != nil {
		return Batch{}, err
	}

	insertedKey := false
	if input.Ref != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, "batch:"+input.Ref, "inventory"); err != nil {
			return Batch{}, err
		}
		insertedKey = true
	}

	now := s.clk.Now()
	batch := Batch{
		ItemID:       input.ItemID,
		BatchNumber:  input.BatchNumber,
		LotNumber:    input.LotNumber,
		QtyReceived:  input.QtyReceived,
		QtyRemaining: input.QtyReceived,
		ExpiryDate:   clock.DateOf(input.ExpiryDate),
		ReceivedAt:   now,
		UnitCost:     input.UnitCost,
		Supplier:     input.Supplier,
		CreatedAt:    now,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertBatch(ctx, batch)
		if err != nil {
			return err
		}
		batch.ID = id
		return nil
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, "batch:"+input.Ref)
		}
		return Batch{}, err
	}

	s.emit(ctx, BatchMutatedEvent{Kind: MutationAdded, ItemID: batch.ItemID, BatchID: batch.ID, Qty: batch.QtyReceived, At: now})
	s.recordAudit(ctx, input.ActorID, "inventory:add_batch", batch.ID, map[string]any{
		"item_id": batch.ItemID,
		"qty":     batch.QtyReceived,
		"expiry":  batch.ExpiryDate.Format("2006-01-02"),
	})
	return batch, nil
}

// Debit drains quantity from an item's batches, earliest expiry first, or
// from one explicitly named batch. The stock check, batch selection and
// decrement run atomically against other debits and removals on the item.
func (s *Service) Debit(ctx context.Context, req DebitRequest, actorID int64) ([]Allocation, error) {
	if _, err := s.catalog.Get(ctx, req.ItemID); err != nil {
		return nil, err
	}
	var allocs []Allocation
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		allocs, err = ApplyDebit(ctx, tx, req, -1)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, BatchMutatedEvent{Kind: MutationDebited, ItemID: req.ItemID, Qty: req.Quantity, At: s.clk.Now()})
	s.recordAudit(ctx, actorID, "inventory:debit", req.ItemID, map[string]any{
		"item_id":     req.ItemID,
		"qty":         req.Quantity,
		"allocations": allocs,
	})
	return allocs, nil
}

// RemoveBatch permanently deletes a batch and leaves a DisposalRecord behind.
// It does not judge expiry; that is the disposal workflow's responsibility.
// A second call with the same id fails with NotFoundError.
func (s *Service) RemoveBatch(ctx context.Context, batchID, actorID int64) (DisposalRecord, error) {
	var record DisposalRecord
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		batch, err := tx.GetBatchForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		record = DisposalRecord{
			Code:         uuid.NewString(),
			BatchID:      batch.ID,
			ItemID:       batch.ItemID,
			BatchNumber:  batch.BatchNumber,
			LotNumber:    batch.LotNumber,
			QtyRemaining: batch.QtyRemaining,
			ExpiryDate:   batch.ExpiryDate,
			UnitCost:     batch.UnitCost,
			Supplier:     batch.Supplier,
			Reason:       DisposalReasonExpired,
			DisposedAt:   s.clk.Now(),
			DisposedBy:   actorID,
		}
		id, err := tx.InsertDisposal(ctx, record)
		if err != nil {
			return err
		}
		record.ID = id
		return tx.DeleteBatch(ctx, batchID)
	})
	if err != nil {
		return DisposalRecord{}, err
	}
	s.emit(ctx, BatchMutatedEvent{Kind: MutationDisposed, ItemID: record.ItemID, BatchID: record.BatchID, Qty: record.QtyRemaining, At: record.DisposedAt})
	s.recordAudit(ctx, actorID, "inventory:dispose", record.BatchID, map[string]any{
		"item_id": record.ItemID,
		"qty":     record.QtyRemaining,
		"reason":  record.Reason,
	})
	return record, nil
}

// AggregateStock recomputes the item's live stock from its batches. The sum
// is always derived, never stored.
func (s *Service) AggregateStock(ctx context.Context, itemID int64) (int64, error) {
	if _, err := s.catalog.Get(ctx, itemID); err != nil {
		return 0, err
	}
	return s.repo.SumRemaining(ctx, itemID)
}

// StockStatus returns the item's aggregate stock with its health level.
func (s *Service) StockStatus(ctx context.Context, itemID int64) (StockStatus, error) {
	item, err := s.catalog.Get(ctx, itemID)
	if err != nil {
		return StockStatus{}, err
	}
	sum, err := s.repo.SumRemaining(ctx, itemID)
	if err != nil {
		return StockStatus{}, err
	}
	return StockStatus{
		ItemID:       itemID,
		Aggregate:    sum,
		MinimumStock: item.MinimumStock,
		Level:        ClassifyStock(sum, item.MinimumStock),
	}, nil
}

// GetBatch fetches one batch.
func (s *Service) GetBatch(ctx context.Context, batchID int64) (Batch, error) {
	return s.repo.GetBatch(ctx, batchID)
}

// ListBatches returns an item's batches ordered by expiry.
func (s *Service) ListBatches(ctx context.Context, itemID int64) ([]Batch, error) {
	if _, err := s.catalog.Get(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListByItem(ctx, itemID)
}

// ListExpiring returns every batch whose expiry falls within
// [today, today+windowDays], inclusive, sorted ascending by expiry date.
func (s *Service) ListExpiring(ctx context.Context, windowDays int) ([]Batch, error) {
	if windowDays < 0 {
		return nil, shared.NewValidationError("window_days", "must be >= 0")
	}
	today := clock.DateOf(s.clk.Now())
	return s.repo.ListExpiringBetween(ctx, today, today.AddDate(0, 0, windowDays))
}

// ListExpired returns every batch whose expiry date is before today.
func (s *Service) ListExpired(ctx context.Context) ([]Batch, error) {
	return s.repo.ListExpiredBefore(ctx, clock.DateOf(s.clk.Now()))
}

// ListDisposals returns recent disposal records, newest first.
func (s *Service) ListDisposals(ctx context.Context, limit int) ([]DisposalRecord, error) {
	return s.repo.ListDisposals(ctx, limit)
}

func (s *Service) emit(ctx context.Context, evt BatchMutatedEvent) {
	if s.integration == nil {
		return
	}
	_ = s.integration.HandleBatchMutated(ctx, evt)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "batch",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
