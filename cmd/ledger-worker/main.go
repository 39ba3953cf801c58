package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ledger/internal/config"
	"ledger/internal/events"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting ledger-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming ledger events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	if err := client.Consume(ctx, handleEvent); err != nil && ctx.Err() == nil {
		logger.Error("Event consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// handleEvent is the worker's reaction to a ledger mutation: an audit
// log entry per event. Consumers with side effects slot in here.
func handleEvent(event *events.LedgerEvent) error {
	switch event.Kind {
	case events.KindImportCommitted:
		slog.Info("Import committed",
			"account_id", event.AccountID,
			"count", event.Count,
			"at", event.Timestamp)
	case events.KindTransactionsCleared:
		slog.Info("Transactions cleared",
			"account_id", event.AccountID,
			"at", event.Timestamp)
	case events.KindAccountDeleted:
		slog.Info("Account deleted",
			"account_id", event.AccountID,
			"at", event.Timestamp)
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
	return nil
}
