package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/clinistock/clinistock/internal/analytics"
	"github.com/clinistock/clinistock/internal/catalog"
	"github.com/clinistock/clinistock/internal/clock"
	jobmetrics "github.com/clinistock/clinistock/internal/jobs"
)

// WarmupJob pre-populates the analytics caches so the morning dashboard
// hits warm entries.
type WarmupJob struct {
	Analytics *analytics.Service
	Clock     clock.Clock
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(analyticsSvc *analytics.Service, clk clock.Clock, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	if clk == nil {
		clk = clock.System{}
	}
	return &WarmupJob{
		Analytics: analyticsSvc,
		Clock:     clk,
		Logger:    logger,
		Metrics:   metrics,
	}
}

// Handle processes TaskAnalyticsWarmup tasks.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.TopN <= 0 {
		payload.TopN = 10
	}

	tracker := j.metrics().Track(TaskAnalyticsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting analytics warmup", slog.Int("top_n", payload.TopN))

	kinds := []catalog.Kind{"", catalog.KindVaccine, catalog.KindMedication, catalog.KindSupply}
	for _, kind := range kinds {
		if _, err := j.Analytics.CategoryDistribution(ctx, kind); err != nil {
			resultErr = err
			logger.Error("warm distribution", slog.String("kind", string(kind)), slog.Any("error", err))
			return resultErr
		}
	}
	for _, bucket := range []analytics.Bucket{analytics.BucketDay, analytics.BucketWeek, analytics.BucketMonth, analytics.BucketYear} {
		if _, err := j.Analytics.Trend(ctx, bucket); err != nil {
			resultErr = err
			logger.Error("warm trend", slog.String("bucket", string(bucket)), slog.Any("error", err))
			return resultErr
		}
	}
	now := j.Clock.Now()
	if _, err := j.Analytics.TopUsage(ctx, payload.TopN, now.AddDate(0, 0, -30), now); err != nil {
		resultErr = err
		logger.Error("warm top usage", slog.Any("error", err))
		return resultErr
	}

	logger.Info("analytics warmup complete")
	return resultErr
}

func (j *WarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
