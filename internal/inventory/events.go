package inventory

import (
	"context"
	"errors"
	"time"
)

// Mutation kinds carried on BatchMutatedEvent.
const (
	MutationAdded    = "added"
	MutationDebited  = "debited"
	MutationDisposed = "disposed"
)

// BatchMutatedEvent signals that ledger state changed and derived views
// (analytics caches) must be refreshed.
type BatchMutatedEvent struct {
	Kind    string
	ItemID  int64
	BatchID int64
	Qty     int64
	At      time.Time
}

// IntegrationHandler receives ledger mutation events.
type IntegrationHandler interface {
	HandleBatchMutated(ctx context.Context, evt BatchMutatedEvent) error
}

// MutationCounter counts ledger mutations for monitoring.
type MutationCounter interface {
	RecordMutation(kind string)
	RecordDisposal()
}

// MetricsHook adapts a MutationCounter into an IntegrationHandler so every
// ledger mutation shows up on the counters.
type MetricsHook struct {
	counter MutationCounter
}

func NewMetricsHook(counter MutationCounter) *MetricsHook {
	return &MetricsHook{counter: counter}
}

func (h *MetricsHook) HandleBatchMutated(ctx context.Context, evt BatchMutatedEvent) error {
	if h == nil || h.counter == nil {
		return nil
	}
	h.counter.RecordMutation(evt.Kind)
	if evt.Kind == MutationDisposed {
		h.counter.RecordDisposal()
	}
	return nil
}

type fanOut []IntegrationHandler

// FanOut delivers each event to every handler. nil handlers are skipped;
// errors are joined so one failing subscriber does not hide another.
func FanOut(handlers ...IntegrationHandler) IntegrationHandler {
	var out fanOut
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

func (f fanOut) HandleBatchMutated(ctx context.Context, evt BatchMutatedEvent) error {
	var errs []error
	for _, h := range f {
		if err := h.HandleBatchMutated(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
