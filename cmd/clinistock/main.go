package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clinistock/clinistock/internal/analytics"
	"github.com/clinistock/clinistock/internal/app"
	"github.com/clinistock/clinistock/internal/catalog"
	"github.com/clinistock/clinistock/internal/clock"
	"github.com/clinistock/clinistock/internal/disposal"
	"github.com/clinistock/clinistock/internal/inventory"
	"github.com/clinistock/clinistock/internal/observability"
	"github.com/clinistock/clinistock/internal/platform/cache"
	"github.com/clinistock/clinistock/internal/platform/db"
	"github.com/clinistock/clinistock/internal/shared"
	"github.com/clinistock/clinistock/internal/usage"
	"github.com/clinistock/clinistock/jobs"
	"github.com/clinistock/clinistock/migrations"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	if err := migrations.Up(cfg.PGDSN); err != nil {
		logger.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	metrics := observability.NewMetrics()

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	if err := analyticsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("analytics invalidation listener", slog.Any("error", err))
	}
	cacheBumper := analytics.NewCacheBumper(analyticsCache, logger)

	inventoryRepo := inventory.NewRepository(dbpool)
	ledgerEvents := inventory.FanOut(cacheBumper, inventory.NewMetricsHook(metrics))
	inventoryService := inventory.NewService(inventoryRepo, catalogService, clockProvider, auditLogger, idempotencyStore, ledgerEvents)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, clockProvider)

	usageRepo := usage.NewRepository(dbpool)
	usageService := usage.NewService(usageRepo, catalogService, clockProvider, auditLogger, ledgerEvents)
	usageHandler := usage.NewHandler(logger, usageService)

	disposalManager := disposal.NewManager(inventoryService, clockProvider, cfg.DisposalCountdown, logger)
	disposalHandler := disposal.NewHandler(logger, disposalManager, inventoryService)

	analyticsRepo := analytics.NewRepository(dbpool)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache, clockProvider)
	analyticsHandler := analytics.NewHandler(logger, analyticsService, clockProvider)

	clockHandler := clock.NewHandler(logger, clockProvider)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalogHandler,
		InventoryHandler: inventoryHandler,
		UsageHandler:     usageHandler,
		DisposalHandler:  disposalHandler,
		AnalyticsHandler: analyticsHandler,
		ClockHandler:     clockHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
