package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clinistock/clinistock/internal/catalog"
	"github.com/clinistock/clinistock/internal/clock"
)

type countingCounter struct {
	kinds     []string
	disposals int
}

func (c *countingCounter) RecordMutation(kind string) { c.kinds = append(c.kinds, kind) }
func (c *countingCounter) RecordDisposal()            { c.disposals++ }

type recordingHandler struct {
	events []BatchMutatedEvent
}

func (h *recordingHandler) HandleBatchMutated(ctx context.Context, evt BatchMutatedEvent) error {
	h.events = append(h.events, evt)
	return nil
}

func TestMetricsHookCountsMutations(t *testing.T) {
	repo := newMemoryLedger()
	cat := &fakeCatalog{items: map[int64]catalog.Item{
		1: {ID: 1, Code: "VAC-BCG", Name: "BCG", Kind: catalog.KindVaccine, MinimumStock: 10},
	}}
	counter := &countingCounter{}
	other := &recordingHandler{}
	svc := NewService(repo, cat, clock.Fixed(testDay), nil, nil, FanOut(other, NewMetricsHook(counter)))
	ctx := context.Background()

	batch, err := svc.AddBatch(ctx, AddBatchInput{ItemID: 1, QtyReceived: 10, ExpiryDate: testDay.AddDate(0, 0, 60)})
	require.NoError(t, err)

	_, err = svc.Debit(ctx, DebitRequest{ItemID: 1, Quantity: 3}, 1)
	require.NoError(t, err)

	_, err = svc.RemoveBatch(ctx, batch.ID, 1)
	require.NoError(t, err)

	require.Equal(t, []string{MutationAdded, MutationDebited, MutationDisposed}, counter.kinds)
	require.Equal(t, 1, counter.disposals)

	// every handler in the fan-out sees every event
	require.Len(t, other.events, 3)
	require.Equal(t, MutationDisposed, other.events[2].Kind)
}
