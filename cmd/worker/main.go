package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/meridian-dms/meridian-dms/internal/app"
	"github.com/meridian-dms/meridian-dms/internal/distribution"
	"github.com/meridian-dms/meridian-dms/internal/platform/cache"
	"github.com/meridian-dms/meridian-dms/internal/platform/db"
	"github.com/meridian-dms/meridian-dms/internal/reports"
	"github.com/meridian-dms/meridian-dms/jobs"
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, snapshots will not be cached", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	stockService := distribution.NewService(distribution.NewRepository(pool), logger)
	reportService := reports.NewService(reports.NewRepository(pool), redisClient, cfg.ReportCacheTTL, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReorderScan, Handler: jobs.NewReorderScanHandler(stockService, cfg.ReorderLevel, logger)},
			{Type: jobs.TaskStockSnapshot, Handler: jobs.NewStockSnapshotHandler(reportService, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ReorderScanCron, Task: jobs.NewReorderScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.StockSnapshotCron, Task: jobs.NewStockSnapshotTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting", "redis", cfg.RedisAddr, "env", cfg.AppEnv)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
