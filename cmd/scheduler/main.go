/**
 * @description
 * This is the main entry point for the scheduler. It is a non-HTTP,
 * long-running process: a cron dispatcher resumes due reminder wakeups
 * every minute and performs a daily catch-up sweep over upcoming renewals.
 */
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/RoshisRai/Subscription-API/internal/app"
	"github.com/RoshisRai/Subscription-API/internal/config"
	"github.com/RoshisRai/Subscription-API/internal/notify"
	"github.com/RoshisRai/Subscription-API/internal/store"
	"github.com/RoshisRai/Subscription-API/pkg/rabbitmq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

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

	userRepo := store.NewUserRepository(dbpool)
	subRepo := store.NewSubscriptionRepository(dbpool)
	wakeupRepo := store.NewWakeupRepository(dbpool)

	mailer := notify.NewMailer(producer)
	runner := app.NewReminderRunner(reminderStore{subRepo, userRepo}, wakeupRepo, mailer, logger)
	dispatcher := app.NewDispatcher(runner, wakeupRepo, subRepo, logger, app.DispatcherSchedules{
		WakeupPoll:   cfg.WakeupPollSchedule,
		RenewalSweep: cfg.RenewalSweepSchedule,
	})

	dispatcher.Start()
	logger.Info("scheduler started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping scheduler")
	stopCtx := dispatcher.Stop()
	<-stopCtx.Done()
	logger.Info("scheduler stopped gracefully")
}

// reminderStore joins the two repositories behind the runner's store
// interface.
type reminderStore struct {
	*store.SubscriptionRepository
	*store.UserRepository
}
