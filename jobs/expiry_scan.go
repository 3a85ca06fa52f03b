package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/hibiken/asynq"

	"github.com/clinistock/clinistock/internal/clock"
	"github.com/clinistock/clinistock/internal/inventory"
	jobmetrics "github.com/clinistock/clinistock/internal/jobs"
	"github.com/clinistock/clinistock/internal/shared"
)

// ExpiryScanJob sweeps the batch ledger and reports batches approaching or
// past expiry. It only observes; disposals stay operator-driven.
type ExpiryScanJob struct {
	Inventory *inventory.Service
	Clock     clock.Clock
	Audit     inventory.AuditPort
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewExpiryScanJob wires dependencies for the expiry scan handler.
func NewExpiryScanJob(inv *inventory.Service, clk clock.Clock, audit inventory.AuditPort, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExpiryScanJob {
	if clk == nil {
		clk = clock.System{}
	}
	return &ExpiryScanJob{Inventory: inv, Clock: clk, Audit: audit, Logger: logger, Metrics: metrics}
}

// Handle processes TaskInventoryExpiryScan tasks.
func (j *ExpiryScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Inventory == nil {
		return errors.New("expiry scan: handler not configured")
	}
	var payload ExpiryScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WarningDays <= 0 {
		payload.WarningDays = inventory.WarningWindowDays
	}

	tracker := j.metrics().Track(TaskInventoryExpiryScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("warning_days", payload.WarningDays))

	expiring, err := j.Inventory.ListExpiring(ctx, payload.WarningDays)
	if err != nil {
		resultErr = err
		logger.Error("list expiring batches", slog.Any("error", err))
		return resultErr
	}
	expired, err := j.Inventory.ListExpired(ctx)
	if err != nil {
		resultErr = err
		logger.Error("list expired batches", slog.Any("error", err))
		return resultErr
	}

	today := clock.DateOf(j.Clock.Now())
	critical := 0
	warning := 0
	for _, b := range expiring {
		if inventory.ClassifyExpiry(b.ExpiryDate, today) == inventory.RiskCritical {
			critical++
		} else {
			warning++
		}
	}
	j.metrics().SetExpiring(string(inventory.RiskExpired), len(expired))
	j.metrics().SetExpiring(string(inventory.RiskCritical), critical)
	j.metrics().SetExpiring(string(inventory.RiskWarning), warning)

	logger.Info("expiry scan complete",
		slog.Int("expiring", len(expiring)),
		slog.Int("critical", critical),
		slog.Int("expired", len(expired)))
	for _, b := range expired {
		logger.Warn("batch past expiry",
			slog.Int64("batch_id", b.ID),
			slog.Int64("item_id", b.ItemID),
			slog.Int64("qty_remaining", b.QtyRemaining),
			slog.String("expiry_date", b.ExpiryDate.Format("2006-01-02")))
		if j.Audit != nil {
			_ = j.Audit.Record(ctx, shared.AuditLog{
				Action:   "batch.expired_detected",
				Entity:   "batch",
				EntityID: strconv.FormatInt(b.ID, 10),
				Meta: map[string]any{
					"item_id":       b.ItemID,
					"qty_remaining": b.QtyRemaining,
					"expiry_date":   b.ExpiryDate.Format("2006-01-02"),
				},
			})
		}
	}
	return resultErr
}

func (j *ExpiryScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *ExpiryScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
