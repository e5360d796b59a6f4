package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/abhinav/feedback-service/internal/api/http"
	"github.com/abhinav/feedback-service/internal/api/http/handlers"
	"github.com/abhinav/feedback-service/internal/auth"
	"github.com/abhinav/feedback-service/internal/config"
	"github.com/abhinav/feedback-service/internal/events"
	"github.com/abhinav/feedback-service/internal/observability"
	"github.com/abhinav/feedback-service/internal/persistence"
	"github.com/abhinav/feedback-service/internal/repository"
	"github.com/abhinav/feedback-service/internal/service"
	"github.com/abhinav/feedback-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	signingKey, err := auth.ResolveSigningKey(cfg.Auth, logger)
	if err != nil {
		logger.Fatal("failed to resolve signing key", zap.Error(err))
	}
	tokenManager := auth.NewTokenManager(signingKey, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	authService := service.NewAuthService(userRepo, tokenManager, dispatcher, cfg.Auth.BcryptCost)
	feedbackService := service.NewFeedbackService(feedbackRepo, redis, dispatcher, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Feedback:       handlers.NewFeedbackHandler(feedbackService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
