package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInventoryExpiryScan sweeps the ledger for expiring and expired batches.
	TaskInventoryExpiryScan = "inventory:expiry_scan"
	// TaskAnalyticsWarmup pre-populates the analytics caches.
	TaskAnalyticsWarmup = "analytics:warmup"
	// TaskIdempotencyCleanup prunes stale idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// ExpiryScanPayload configures one expiry sweep.
type ExpiryScanPayload struct {
	WarningDays int `json:"warning_days"`
}

// NewExpiryScanTask constructs an Asynq task for the expiry sweep.
func NewExpiryScanTask(payload ExpiryScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInventoryExpiryScan, data), nil
}

// WarmupPayload configures one analytics warmup run.
type WarmupPayload struct {
	TopN int `json:"top_n"`
}

// NewWarmupTask constructs an Asynq task for analytics warmup.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data), nil
}

// CleanupPayload configures one idempotency key sweep.
type CleanupPayload struct {
	OlderThanHours int `json:"older_than_hours"`
}

// NewCleanupTask constructs an Asynq task for idempotency cleanup.
func NewCleanupTask(payload CleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
