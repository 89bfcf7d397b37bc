package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	borrowingApp "github.com/booklend/booklend/internal/application/borrowing"
	catalogApp "github.com/booklend/booklend/internal/application/catalog"
	paymentApp "github.com/booklend/booklend/internal/application/payment"
	userApp "github.com/booklend/booklend/internal/application/user"
	"github.com/booklend/booklend/internal/auth"
	"github.com/booklend/booklend/internal/bootstrap"
	"github.com/booklend/booklend/internal/controller"
	"github.com/booklend/booklend/internal/infrastructure/gateway"
	infraRedis "github.com/booklend/booklend/internal/infrastructure/redis"
	"github.com/booklend/booklend/internal/repository/postgres"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "booklend-api", "booklend")
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

	// --- Infrastructure services ---
	gw := gateway.NewResilientGateway(gateway.NewMockGateway("mock"), &app.Config.Gateway, app.Metrics)
	listCache := infraRedis.NewListCache(app.Redis, app.Config.Redis.CacheTTL)
	tokens := auth.NewTokenService(&app.Config.Auth)

	// --- Application services ---
	catalogSvc := catalogApp.NewService(bookRepo, listCache, app.Logger)
	checkout := paymentApp.NewCheckoutService(paymentRepo, gw, &app.Config.Gateway)

	createBorrowingUC := borrowingApp.NewCreateBorrowingUseCase(
		borrowingRepo, bookRepo, paymentRepo, userRepo, outboxRepo, checkout, txManager, app.Metrics)
	returnBorrowingUC := borrowingApp.NewReturnBorrowingUseCase(
		borrowingRepo, bookRepo, checkout, txManager, app.Metrics)
	listBorrowingsUC := borrowingApp.NewListBorrowingsUseCase(borrowingRepo)
	getBorrowingUC := borrowingApp.NewGetBorrowingUseCase(borrowingRepo)

	confirmPaymentUC := paymentApp.NewConfirmPaymentUseCase(
		paymentRepo, borrowingRepo, bookRepo, userRepo, outboxRepo, gw, txManager, app.Metrics)
	renewPaymentUC := paymentApp.NewRenewPaymentUseCase(
		paymentRepo, borrowingRepo, bookRepo, checkout, txManager, app.Metrics)
	listPaymentsUC := paymentApp.NewListPaymentsUseCase(paymentRepo)
	getPaymentUC := paymentApp.NewGetPaymentUseCase(paymentRepo, borrowingRepo)

	registerUserUC := userApp.NewRegisterUserUseCase(userRepo)
	authenticateUC := userApp.NewAuthenticateUserUseCase(userRepo, tokens)
	updateProfileUC := userApp.NewUpdateProfileUseCase(userRepo)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:        app.Pool,
		RedisClient: app.Redis,
		Tokens:      tokens,
		Books:       controller.NewBookController(catalogSvc),
		Borrowings:  controller.NewBorrowingController(createBorrowingUC, returnBorrowingUC, listBorrowingsUC, getBorrowingUC),
		Payments:    controller.NewPaymentController(listPaymentsUC, getPaymentUC, renewPaymentUC, confirmPaymentUC),
		Users:       controller.NewUserController(registerUserUC, authenticateUC, updateProfileUC, tokens, userRepo),
		Metrics:     app.Metrics,
		CORSConfig:  app.Config.Server.CORS,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
