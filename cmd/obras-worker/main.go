package main

import (
	"context"
	"errors"
	"os"
	"time"

	"obras/internal/amqp"
	"obras/internal/cli"
	applog "obras/internal/log"
	"obras/internal/storage"
	"obras/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), true, nil)
	logger.Info("Starting obras-worker", applog.FieldOperation, applog.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required to consume approval events")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger.WithComponent(applog.ComponentStorage).Logger)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey,
		logger.WithComponent(applog.ComponentAMQP).Logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	journal := worker.NewApprovalJournal(repo, logger)
	consumeDone := make(chan error, 1)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		select {
		case <-consumeDone:
		case <-ctx.Done():
		}
	})

	go func() {
		consumeDone <- client.ConsumeProgressApproved(ctx, journal.HandleApproval)
	}()

	logger.Info("Journaling approval events",
		"exchange", cfg.AMQPExchange,
		"routing_key", cfg.AMQPRoutingKey,
		"db_path", cfg.SQLiteDBPath)

	select {
	case <-done:
	case err := <-consumeDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err)
			os.Exit(1)
		}
	}
}
