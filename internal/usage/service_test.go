package usage

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clinistock/clinistock/internal/catalog"
	"github.com/clinistock/clinistock/internal/clock"
	"github.com/clinistock/clinistock/internal/inventory"
	"github.com/clinistock/clinistock/internal/shared"
)

type memoryStore struct {
	batches   map[int64]inventory.Batch
	entries   []Entry
	nextEntry int64
	nextLine  int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{batches: make(map[int64]inventory.Batch)}
}

func (s *memoryStore) addBatch(b inventory.Batch) {
	s.batches[b.ID] = b
}

type memoryTx struct {
	store   *memoryStore
	batches map[int64]inventory.Batch
	entries []Entry
}

func (s *memoryStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{store: s, batches: make(map[int64]inventory.Batch, len(s.batches))}
	for id, b := range s.batches {
		tx.batches[id] = b
	}
	tx.entries = append(tx.entries, s.entries...)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.batches = tx.batches
	s.entries = tx.entries
	return nil
}

func (s *memoryStore) ListEntries(ctx context.Context, filter ListFilter) ([]Entry, error) {
	var out []Entry
	for _, e := range s.entries {
		if !filter.From.IsZero() && e.UsageDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.UsageDate.After(filter.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (tx *memoryTx) InsertEntry(ctx context.Context, e Entry) (int64, error) {
	tx.store.nextEntry++
	e.ID = tx.store.nextEntry
	tx.entries = append(tx.entries, e)
	return e.ID, nil
}

func (tx *memoryTx) InsertLine(ctx context.Context, entryID int64, line Line) (int64, error) {
	tx.store.nextLine++
	line.ID = tx.store.nextLine
	for i := range tx.entries {
		if tx.entries[i].ID == entryID {
			tx.entries[i].Lines = append(tx.entries[i].Lines, line)
		}
	}
	return line.ID, nil
}

func (tx *memoryTx) InsertAllocations(ctx context.Context, lineID int64, allocs []inventory.Allocation) error {
	return nil
}

func (tx *memoryTx) Ledger() inventory.TxRepository { return &memoryLedgerTx{tx: tx} }

type memoryLedgerTx struct {
	tx *memoryTx
}

func (l *memoryLedgerTx) GetBatchesForUpdate(ctx context.Context, itemID int64) ([]inventory.Batch, error) {
	var out []inventory.Batch
	for _, b := range l.tx.batches {
		if b.ItemID == itemID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (l *memoryLedgerTx) GetBatchForUpdate(ctx context.Context, batchID int64) (inventory.Batch, error) {
	b, ok := l.tx.batches[batchID]
	if !ok {
		return inventory.Batch{}, shared.NewNotFoundError("batch", strconv.FormatInt(batchID, 10))
	}
	return b, nil
}

func (l *memoryLedgerTx) InsertBatch(ctx context.Context, b inventory.Batch) (int64, error) {
	l.tx.batches[b.ID] = b
	return b.ID, nil
}

func (l *memoryLedgerTx) UpdateBatchRemaining(ctx context.Context, batchID, remaining int64) error {
	b, ok := l.tx.batches[batchID]
	if !ok {
		return shared.NewNotFoundError("batch", strconv.FormatInt(batchID, 10))
	}
	b.QtyRemaining = remaining
	l.tx.batches[batchID] = b
	return nil
}

func (l *memoryLedgerTx) DeleteBatch(ctx context.Context, batchID int64) error {
	delete(l.tx.batches, batchID)
	return nil
}

func (l *memoryLedgerTx) InsertDisposal(ctx context.Context, rec inventory.DisposalRecord) (int64, error) {
	return 0, nil
}

type fakeCatalog struct {
	items map[int64]catalog.Item
}

func (c *fakeCatalog) Get(ctx context.Context, id int64) (catalog.Item, error) {
	item, ok := c.items[id]
	if !ok {
		return catalog.Item{}, shared.NewNotFoundError("item", strconv.FormatInt(id, 10))
	}
	return item, nil
}

var testDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func newTestService() (*Service, *memoryStore) {
	store := newMemoryStore()
	store.addBatch(inventory.Batch{ID: 1, ItemID: 1, QtyReceived: 20, QtyRemaining: 20, ExpiryDate: testDay.AddDate(0, 0, 30)})
	store.addBatch(inventory.Batch{ID: 2, ItemID: 2, QtyReceived: 10, QtyRemaining: 10, ExpiryDate: testDay.AddDate(0, 0, 60)})
	cat := &fakeCatalog{items: map[int64]catalog.Item{
		1: {ID: 1, Name: "BCG", Kind: catalog.KindVaccine},
		2: {ID: 2, Name: "Gauze", Kind: catalog.KindSupply},
	}}
	return NewService(store, cat, clock.Fixed(testDay), nil, nil), store
}

func TestLogUsageDebitsBatches(t *testing.T) {
	svc, store := newTestService()

	entry, err := svc.LogUsage(context.Background(), LogInput{
		Date: testDay,
		Lines: []LineInput{
			{ItemID: 1, Quantity: 5},
			{ItemID: 2, Quantity: 3},
		},
		Notes: "morning clinic",
	})
	require.NoError(t, err)
	require.NotEmpty(t, entry.Code)
	require.Len(t, entry.Lines, 2)
	require.Equal(t, []inventory.Allocation{{BatchID: 1, Quantity: 5}}, entry.Lines[0].Allocations)
	require.Equal(t, int64(15), store.batches[1].QtyRemaining)
	require.Equal(t, int64(7), store.batches[2].QtyRemaining)
}

func TestLogUsageRollsBackAllLines(t *testing.T) {
	svc, store := newTestService()

	// second line over-drains; first line's debit must not stick
	_, err := svc.LogUsage(context.Background(), LogInput{
		Date: testDay,
		Lines: []LineInput{
			{ItemID: 1, Quantity: 5},
			{ItemID: 2, Quantity: 11},
		},
	})
	var ise *shared.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Equal(t, 1, ise.Line)
	require.Equal(t, int64(2), ise.ItemID)
	require.Equal(t, int64(20), store.batches[1].QtyRemaining)
	require.Equal(t, int64(10), store.batches[2].QtyRemaining)
	require.Empty(t, store.entries)
}

func TestLogUsageValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.LogUsage(ctx, LogInput{Date: testDay})
	require.True(t, shared.IsValidation(err))

	_, err = svc.LogUsage(ctx, LogInput{Date: testDay, Lines: []LineInput{{ItemID: 1, Quantity: 0}}})
	require.True(t, shared.IsValidation(err))

	_, err = svc.LogUsage(ctx, LogInput{Lines: []LineInput{{ItemID: 1, Quantity: 1}}})
	require.True(t, shared.IsValidation(err))

	_, err = svc.LogUsage(ctx, LogInput{Date: testDay, Lines: []LineInput{{ItemID: 99, Quantity: 1}}})
	require.True(t, shared.IsNotFound(err))
}

func TestLogUsageRejectsFutureDate(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.LogUsage(context.Background(), LogInput{
		Date:  testDay.AddDate(0, 0, 1),
		Lines: []LineInput{{ItemID: 1, Quantity: 1}},
	})
	var fde *shared.FutureDateError
	require.ErrorAs(t, err, &fde)
}

func TestLogUsageExplicitBatch(t *testing.T) {
	svc, store := newTestService()
	batchID := int64(1)

	entry, err := svc.LogUsage(context.Background(), LogInput{
		Date:  testDay,
		Lines: []LineInput{{ItemID: 1, Quantity: 4, BatchID: &batchID}},
	})
	require.NoError(t, err)
	require.Equal(t, []inventory.Allocation{{BatchID: 1, Quantity: 4}}, entry.Lines[0].Allocations)
	require.Equal(t, int64(16), store.batches[1].QtyRemaining)
}
