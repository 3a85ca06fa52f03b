// Package disposal implements the guarded confirmation workflow that stands
// between an operator and the irreversible removal of an expired batch. The
// countdown is deliberate friction against accidental destruction, not a
// concurrency lock: the ledger keeps its own transactional guarantees.
package disposal

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/clinistock/clinistock/internal/clock"
	"github.com/clinistock/clinistock/internal/inventory"
	"github.com/clinistock/clinistock/internal/shared"
)

// State names one phase of a disposal attempt.
type State string

const (
	// StateIdle means no batch is targeted.
	StateIdle State = "IDLE"
	// StateTargeted means the countdown is running and cancel is possible.
	StateTargeted State = "TARGETED"
	// StateConfirmed means the countdown elapsed and removal was invoked.
	StateConfirmed State = "CONFIRMED"
	// StateCancelled means the operator cancelled before confirmation.
	StateCancelled State = "CANCELLED"
)

// DefaultCountdown is the confirmation window before removal fires.
const DefaultCountdown = 5 * time.Second

// LedgerPort is the slice of the batch ledger the workflow commands.
type LedgerPort interface {
	GetBatch(ctx context.Context, batchID int64) (inventory.Batch, error)
	RemoveBatch(ctx context.Context, batchID, actorID int64) (inventory.DisposalRecord, error)
}

// Result reports the outcome of one disposal attempt.
type Result struct {
	State  State
	Record inventory.DisposalRecord
	Err    error
}

type attempt struct {
	batchID   int64
	actorID   int64
	startedAt time.Time
	state     State
	timer     *time.Timer
	done      chan Result
}

// Manager owns the active disposal attempts, one per targeted batch.
type Manager struct {
	mu        sync.Mutex
	ledger    LedgerPort
	clk       clock.Clock
	countdown time.Duration
	logger    *slog.Logger
	attempts  map[int64]*attempt
}

// NewManager builds Manager. countdown <= 0 selects DefaultCountdown.
func NewManager(ledger LedgerPort, clk clock.Clock, countdown time.Duration, logger *slog.Logger) *Manager {
	if clk == nil {
		clk = clock.System{}
	}
	if countdown <= 0 {
		countdown = DefaultCountdown
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		ledger:    ledger,
		clk:       clk,
		countdown: countdown,
		logger:    logger,
		attempts:  make(map[int64]*attempt),
	}
}

// Target selects an expired batch for disposal and starts the countdown.
// Targeting a non-expired batch, or a batch already counting down, fails
// with InvalidStateError. The returned channel delivers exactly one Result
// once the attempt resolves.
func (m *Manager) Target(ctx context.Context, batchID, actorID int64) (<-chan Result, error) {
	batch, err := m.ledger.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if risk := inventory.ClassifyExpiry(batch.ExpiryDate, m.clk.Now()); risk != inventory.RiskExpired {
		return nil, &shared.InvalidStateError{
			State:  string(StateIdle),
			Event:  "target",
			Reason: "batch " + strconv.FormatInt(batchID, 10) + " is not expired (" + string(risk) + ")",
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.attempts[batchID]; exists {
		return nil, &shared.InvalidStateError{
			State:  string(StateTargeted),
			Event:  "target",
			Reason: "batch already targeted",
		}
	}
	a := &attempt{
		batchID:   batchID,
		actorID:   actorID,
		startedAt: m.clk.Now(),
		state:     StateTargeted,
		done:      make(chan Result, 1),
	}
	a.timer = time.AfterFunc(m.countdown, func() { m.confirm(batchID) })
	m.attempts[batchID] = a
	m.logger.Info("disposal targeted",
		slog.Int64("batch_id", batchID),
		slog.Duration("countdown", m.countdown))
	return a.done, nil
}

// Cancel aborts a running countdown. Cancelling after confirmation, or with
// no attempt in flight, fails with InvalidStateError.
func (m *Manager) Cancel(batchID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[batchID]
	if !ok || a.state != StateTargeted {
		return &shared.InvalidStateError{
			State:  string(StateIdle),
			Event:  "cancel",
			Reason: "no disposal countdown in progress for batch " + strconv.FormatInt(batchID, 10),
		}
	}
	a.timer.Stop()
	a.state = StateCancelled
	delete(m.attempts, batchID)
	a.done <- Result{State: StateCancelled}
	m.logger.Info("disposal cancelled", slog.Int64("batch_id", batchID))
	return nil
}

// Status reports the state of a batch's attempt and the countdown remaining.
func (m *Manager) Status(batchID int64) (State, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[batchID]
	if !ok {
		return StateIdle, 0
	}
	remaining := m.countdown - m.clk.Now().Sub(a.startedAt)
	if remaining < 0 {
		remaining = 0
	}
	return a.state, remaining
}

// confirm fires when the countdown elapses uninterrupted. The transition to
// Confirmed happens under the mutex; the ledger call runs outside it so a
// slow removal never blocks Target/Cancel on other batches.
func (m *Manager) confirm(batchID int64) {
	m.mu.Lock()
	a, ok := m.attempts[batchID]
	if !ok || a.state != StateTargeted {
		m.mu.Unlock()
		return
	}
	a.state = StateConfirmed
	delete(m.attempts, batchID)
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	record, err := m.ledger.RemoveBatch(ctx, batchID, a.actorID)
	if err != nil {
		m.logger.Error("disposal remove batch", slog.Int64("batch_id", batchID), slog.Any("error", err))
		a.done <- Result{State: StateConfirmed, Err: err}
		return
	}
	m.logger.Info("disposal confirmed",
		slog.Int64("batch_id", batchID),
		slog.Int64("qty", record.QtyRemaining))
	a.done <- Result{State: StateConfirmed, Record: record}
}
