/**
 * @description
 * This is the main entry point for the HTTP API. It wires together
 * configuration, the database pool, the RabbitMQ producer, repositories,
 * services, and the router, then serves until a termination signal.
 *
 * Creating or rescheduling a subscription triggers its reminder run inline;
 * the scheduler binary owns resuming suspended runs later.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/RoshisRai/Subscription-API/internal/api"
	"github.com/RoshisRai/Subscription-API/internal/app"
	"github.com/RoshisRai/Subscription-API/internal/config"
	"github.com/RoshisRai/Subscription-API/internal/notify"
	"github.com/RoshisRai/Subscription-API/internal/store"
	"github.com/RoshisRai/Subscription-API/pkg/rabbitmq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	producer, err := rabbitmq.NewEventProducer(ctx, cfg.RabbitMQURL, cfg.NotificationsExchange)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer producer.Close()
	logger.Info("rabbitmq producer connected", "exchange", cfg.NotificationsExchange)

	// Repositories.
	userRepo := store.NewUserRepository(dbpool)
	subRepo := store.NewSubscriptionRepository(dbpool)
	wakeupRepo := store.NewWakeupRepository(dbpool)

	// Services.
	mailer := notify.NewMailer(producer)
	runner := app.NewReminderRunner(reminderStore{subRepo, userRepo}, wakeupRepo, mailer, logger)
	authService := app.NewAuthService(userRepo, mailer, app.AuthConfig{
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.JWTExpiry,
		ActivationTTL: cfg.ActivationTTL,
		ServerURL:     cfg.ServerURL,
	}, logger)
	userService := app.NewUserService(userRepo, logger)
	subService := app.NewSubscriptionService(subRepo, wakeupRepo, runner, logger)

	handler := api.NewHandler(authService, userService, subService)
	router := api.NewRouter(handler, cfg.JWTSecret, userRepo)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}

// reminderStore joins the two repositories behind the runner's store
// interface.
type reminderStore struct {
	*store.SubscriptionRepository
	*store.UserRepository
}
