package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

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

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Metrics:            metrics,
		DepositHandler:     deposit.NewHandler(logger, depositService),
		TerminationHandler: termination.NewHandler(logger, terminationService),
		PaymentsHandler:    payments.NewHandler(logger, ledger),
		JobsHandler:        jobs.NewHandler(logger, jobsClient),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
