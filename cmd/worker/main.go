package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/hanapbahay/hanapbahay/internal/app"
	"github.com/hanapbahay/hanapbahay/internal/bookings"
	"github.com/hanapbahay/hanapbahay/internal/deposit"
	"github.com/hanapbahay/hanapbahay/internal/events"
	"github.com/hanapbahay/hanapbahay/internal/listings"
	"github.com/hanapbahay/hanapbahay/internal/notify"
	"github.com/hanapbahay/hanapbahay/internal/observability"
	"github.com/hanapbahay/hanapbahay/internal/payments"
	"github.com/hanapbahay/hanapbahay/internal/platform/cache"
	"github.com/hanapbahay/hanapbahay/internal/platform/db"
	"github.com/hanapbahay/hanapbahay/internal/shared"
	"github.com/hanapbahay/hanapbahay/internal/termination"
	"github.com/hanapbahay/hanapbahay/jobs"
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

	txRunner := db.NewRunner(pool)
	bookingRepo := bookings.NewRepository(pool)
	paymentRepo := payments.NewRepository(pool)
	ledger := payments.NewLedger(paymentRepo)
	listingService := listings.NewService(listings.NewRepository(pool))
	notifyService := notify.NewService(notify.NewRepository(pool), txRunner)
	bus := events.NewBus(redisClient, cfg.EventsChannel)
	locks := shared.NewKeyedMutex()
	metrics := observability.NewMetrics()

	depositService := deposit.NewService(bookingRepo, paymentRepo, txRunner, locks, listingService, bus, logger)
	terminationService := termination.NewService(bookingRepo, paymentRepo, ledger, txRunner, locks,
		listingService, notifyService, bus, logger)

	sweepJob := jobs.NewTerminationSweepJob(terminationService, metrics, logger)
	rentDueJob := jobs.NewRentDueScanJob(bookingRepo, ledger, depositService, metrics, logger)

	sweepTask, err := jobs.NewTerminationSweepTask("cron")
	if err != nil {
		logger.Error("build sweep task", slog.Any("error", err))
		os.Exit(1)
	}
	rentDueTask, err := jobs.NewRentDueScanTask("cron")
	if err != nil {
		logger.Error("build rent due task", slog.Any("error", err))
		os.Exit(1)
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTerminationSweep, Handler: sweepJob.Handle},
			{Type: jobs.TaskRentDueScan, Handler: rentDueJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.TerminationSweepCron, Task: sweepTask},
			{Spec: cfg.RentDueScanCron, Task: rentDueTask},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting",
		slog.String("sweep_cron", cfg.TerminationSweepCron),
		slog.String("rent_due_cron", cfg.RentDueScanCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
}
