package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/clinistock/clinistock/internal/analytics"
	"github.com/clinistock/clinistock/internal/app"
	"github.com/clinistock/clinistock/internal/catalog"
	"github.com/clinistock/clinistock/internal/clock"
	"github.com/clinistock/clinistock/internal/inventory"
	"github.com/clinistock/clinistock/internal/platform/cache"
	"github.com/clinistock/clinistock/internal/platform/db"
	"github.com/clinistock/clinistock/internal/shared"
	"github.com/clinistock/clinistock/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	clockProvider := clock.NewProvider(clock.System{}, redisClient, logger)

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo)

	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	cacheBumper := analytics.NewCacheBumper(analyticsCache, logger)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, catalogService, clockProvider, auditLogger, idempotencyStore, cacheBumper)

	analyticsRepo := analytics.NewRepository(pool)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache, clockProvider)

	expiryScanJob := jobs.NewExpiryScanJob(inventoryService, clockProvider, auditLogger, logger, nil)
	warmupJob := jobs.NewWarmupJob(analyticsService, clockProvider, logger, nil)
	cleanupJob := jobs.NewCleanupJob(idempotencyStore, logger, nil)

	expiryScanTask, err := jobs.NewExpiryScanTask(jobs.ExpiryScanPayload{WarningDays: cfg.ExpiryWarningDays})
	if err != nil {
		logger.Error("build expiry scan task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewWarmupTask(jobs.WarmupPayload{TopN: 10})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	cleanupTask, err := jobs.NewCleanupTask(jobs.CleanupPayload{OlderThanHours: int(cfg.IdempotencyTTL.Hours())})
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskInventoryExpiryScan, Handler: expiryScanJob.Handle},
			{Type: jobs.TaskAnalyticsWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskIdempotencyCleanup, Handler: cleanupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: expiryScanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "15 6 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 3 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
