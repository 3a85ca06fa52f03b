package usage

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/clinistock/clinistock/internal/clock"
	"github.com/clinistock/clinistock/internal/inventory"
	"github.com/clinistock/clinistock/internal/shared"
)

// Service coordinates the append-only usage ledger.
type Service struct {
	repo        RepositoryPort
	catalog     inventory.CatalogPort
	clk         clock.Clock
	audit       inventory.AuditPort
	integration inventory.IntegrationHandler
}

// NewService builds Service. audit and integration may be nil.
func NewService(repo RepositoryPort, cat inventory.CatalogPort, clk clock.Clock, audit inventory.AuditPort, integration inventory.IntegrationHandler) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{repo: repo, catalog: cat, clk: clk, audit: audit, integration: integration}
}

// LogUsage records one consumption event. Every line debits the batch ledger
// inside a single transaction: if any line fails, no debit sticks. The error
// for an over-draining line carries its zero-based index.
func (s *Service) LogUsage(ctx context.Context, input LogInput) (Entry, error) {
	if len(input.Lines) == 0 {
		return Entry{}, shared.NewValidationError("items", "must not be empty")
	}
	for i, line := range input.Lines {
		if line.Quantity <= 0 {
			return Entry{}, shared.NewValidationError("items["+strconv.Itoa(i)+"].quantity", "must be > 0")
		}
	}
	if input.Date.IsZero() {
		return Entry{}, shared.NewValidationError("date", "is required")
	}
	now := s.clk.Now()
	usageDate := clock.DateOf(input.Date)
	if usageDate.After(clock.DateOf(now)) {
		return Entry{}, &shared.FutureDateError{Date: usageDate, Now: now}
	}
	for _, line := range input.Lines {
		if _, err := s.catalog.Get(ctx, line.ItemID); err != nil {
			return Entry{}, err
		}
	}

	entry := Entry{
		Code:       uuid.NewString(),
		UsageDate:  usageDate,
		Notes:      input.Notes,
		RecordedAt: now,
		RecordedBy: input.ActorID,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entryID, err := tx.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		entry.ID = entryID
		for i, line := range input.Lines {
			req := inventory.DebitRequest{ItemID: line.ItemID, Quantity: line.Quantity, BatchID: line.BatchID}
			allocs, err := inventory.ApplyDebit(ctx, tx.Ledger(), req, i)
			if err != nil {
				return err
			}
			saved := Line{ItemID: line.ItemID, Quantity: line.Quantity, BatchID: line.BatchID, Allocations: allocs}
			lineID, err := tx.InsertLine(ctx, entryID, saved)
			if err != nil {
				return err
			}
			saved.ID = lineID
			if err := tx.InsertAllocations(ctx, lineID, allocs); err != nil {
				return err
			}
			entry.Lines = append(entry.Lines, saved)
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	if s.integration != nil {
		for _, line := range entry.Lines {
			_ = s.integration.HandleBatchMutated(ctx, inventory.BatchMutatedEvent{
				Kind:   inventory.MutationDebited,
				ItemID: line.ItemID,
				Qty:    line.Quantity,
				At:     now,
			})
		}
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   "usage:log",
			Entity:   "usage_entry",
			EntityID: strconv.FormatInt(entry.ID, 10),
			Meta: map[string]any{
				"date":  usageDate.Format("2006-01-02"),
				"lines": len(entry.Lines),
			},
		})
	}
	return entry, nil
}

// ListEntries returns recorded entries for a window.
func (s *Service) ListEntries(ctx context.Context, filter ListFilter) ([]Entry, error) {
	return s.repo.ListEntries(ctx, filter)
}
