// Package main запускает HTTP-сервер сервиса coursemart.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/coursemart/internal/backend"
	"github.com/mmeshcher/coursemart/internal/config"
	"github.com/mmeshcher/coursemart/internal/gateway"
	"github.com/mmeshcher/coursemart/internal/handler"
	"github.com/mmeshcher/coursemart/internal/middleware"
	"github.com/mmeshcher/coursemart/internal/repository"
	"github.com/mmeshcher/coursemart/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	var store backend.Client
	if cfg.DatabaseURI != "" {
		repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		defer repo.Close()
		store = repo
	} else {
		sugar.Warn("DATABASE_URI is not set, using in-memory backend")
		store = backend.NewMemory()
	}

	services := handler.Services{
		Courses:     service.NewCourseService(store),
		Payments:    service.NewPaymentService(store),
		Enrollments: service.NewEnrollmentService(store, logger, nil),
	}
	// Интерфейс остаётся nil, если шлюз не настроен.
	if cfg.PaymentGatewayAddress != "" {
		services.Verifier = gateway.NewClient(cfg.PaymentGatewayAddress, cfg.PaymentGatewaySecret)
	}

	reconciler := service.NewReconciler(store, logger, nil, cfg.ReconcileInterval)

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	h := handler.NewHandler(services, logger, authMiddleware)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Фоновая сверка записей без платёжных транзакций
	g.Go(func() error {
		reconciler.Start(ctx)
		return nil
	})

	g.Go(func() error {
		sugar.Infow("starting coursemart server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
