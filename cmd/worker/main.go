package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	overdueApp "github.com/booklend/booklend/internal/application/overdue"
	paymentApp "github.com/booklend/booklend/internal/application/payment"
	"github.com/booklend/booklend/internal/bootstrap"
	"github.com/booklend/booklend/internal/infrastructure/gateway"
	infraRedis "github.com/booklend/booklend/internal/infrastructure/redis"
	"github.com/booklend/booklend/internal/infrastructure/telegram"
	"github.com/booklend/booklend/internal/notification"
	"github.com/booklend/booklend/internal/repository/postgres"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "booklend-worker", "booklend_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	bookRepo := postgres.NewBookRepository(app.Pool)
	borrowingRepo := postgres.NewBorrowingRepository(app.Pool)
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	userRepo := postgres.NewUserRepository(app.Pool)
	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Services ---
	gw := gateway.NewResilientGateway(gateway.NewMockGateway("mock"), &app.Config.Gateway, app.Metrics)
	confirmUC := paymentApp.NewConfirmPaymentUseCase(
		paymentRepo, borrowingRepo, bookRepo, userRepo, outboxRepo, gw, txManager, app.Metrics)
	expiryScan := paymentApp.NewExpirePaymentsScan(paymentRepo, gw, confirmUC, txManager, app.Logger, app.Metrics)
	overdueScan := overdueApp.NewScanner(borrowingRepo, bookRepo, userRepo, outboxRepo, app.Logger, app.Metrics)

	bot := telegram.NewBot(app.Config.Notification.TelegramToken)
	dispatcher := notification.NewDispatcher(
		outboxRepo, bot, app.Config.Notification.TelegramChatID,
		app.Config.Worker.OutboxBatchSize, app.Logger, app.Metrics)

	workerCfg := app.Config.Worker

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Notification dispatcher (drains the outbox into Telegram).
	g.Go(func() error {
		ticker := time.NewTicker(workerCfg.OutboxPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
			}
			if _, err := dispatcher.DispatchPending(gCtx); err != nil {
				app.Logger.Error().Err(err).Msg("Notification dispatch error")
			}
		}
	})

	// 2. Overdue scan. The lock keeps it to one worker instance per run.
	g.Go(func() error {
		return runLockedScan(gCtx, app, "scan:overdue", workerCfg.OverdueScanInterval, overdueScan.Run)
	})

	// 3. Payment expiry scan.
	g.Go(func() error {
		return runLockedScan(gCtx, app, "scan:payment_expiry", workerCfg.ExpiryScanInterval, expiryScan.Run)
	})

	// 4. Wait for shutdown signal.
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}

func runLockedScan(
	ctx context.Context,
	app *bootstrap.App,
	lockKey string,
	interval time.Duration,
	scan func(context.Context) error,
) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		runScanOnce(ctx, app, lockKey, scan)
	}
}

// runScanOnce runs one scan iteration under a distributed lock so that only
// one worker instance performs it.
func runScanOnce(ctx context.Context, app *bootstrap.App, lockKey string, scan func(context.Context) error) {
	lock := infraRedis.NewDistributedLock(app.Redis, lockKey, app.Config.Worker.ScanLockTTL)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		app.Logger.Error().Err(err).Str("scan", lockKey).Msg("Could not acquire scan lock")
		return
	}
	if !acquired {
		app.Logger.Debug().Str("scan", lockKey).Msg("Scan running elsewhere, skipping")
		return
	}
	defer lock.Release(ctx)

	if err := scan(ctx); err != nil {
		app.Logger.Error().Err(err).Str("scan", lockKey).Msg("Scan failed")
	}
}
