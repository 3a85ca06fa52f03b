package inventory

import (
	"context"
	"sort"
	"strconv"

	"github.com/clinistock/clinistock/internal/shared"
)

// allocate plans a debit of qty against the given batches without mutating
// them. Batches are drained earliest-expiry-first (ties by id ascending) so
// stock closest to expiry is always used before fresher stock. When explicit
// names a batch, the whole quantity must come from it.
func allocate(batches []Batch, itemID, qty int64, explicit *int64, line int) ([]Allocation, error) {
	if qty <= 0 {
		return nil, shared.NewValidationError("quantity", "must be > 0")
	}

	if explicit != nil {
		for _, b := range batches {
			if b.ID != *explicit {
				continue
			}
			if b.QtyRemaining < qty {
				return nil, shared.NewNotFoundError("batch", strconv.FormatInt(*explicit, 10))
			}
			return []Allocation{{BatchID: b.ID, Quantity: qty}}, nil
		}
		return nil, shared.NewNotFoundError("batch", strconv.FormatInt(*explicit, 10))
	}

	ordered := make([]Batch, len(batches))
	copy(ordered, batches)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].ExpiryDate.Equal(ordered[j].ExpiryDate) {
			return ordered[i].ExpiryDate.Before(ordered[j].ExpiryDate)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var available int64
	for _, b := range ordered {
		available += b.QtyRemaining
	}
	if available < qty {
		return nil, &shared.InsufficientStockError{ItemID: itemID, Line: line, Requested: qty, Available: available}
	}

	var allocs []Allocation
	need := qty
	for _, b := range ordered {
		if need == 0 {
			break
		}
		if b.QtyRemaining <= 0 {
			continue
		}
		take := b.QtyRemaining
		if take > need {
			take = need
		}
		allocs = append(allocs, Allocation{BatchID: b.ID, Quantity: take})
		need -= take
	}
	return allocs, nil
}

// ApplyDebit executes one debit inside an open ledger transaction: it locks
// the item's batches, plans the allocation and decrements each touched batch.
// line is reported in InsufficientStockError for multi-line callers; pass -1
// for standalone debits.
func ApplyDebit(ctx context.Context, tx TxRepository, req DebitRequest, line int) ([]Allocation, error) {
	batches, err := tx.GetBatchesForUpdate(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	allocs, err := allocate(batches, req.ItemID, req.Quantity, req.BatchID, line)
	if err != nil {
		return nil, err
	}
	remaining := make(map[int64]int64, len(batches))
	for _, b := range batches {
		remaining[b.ID] = b.QtyRemaining
	}
	for _, a := range allocs {
		if err := tx.UpdateBatchRemaining(ctx, a.BatchID, remaining[a.BatchID]-a.Quantity); err != nil {
			return nil, err
		}
	}
	return allocs, nil
}
