package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"obras/internal/cli"
	"obras/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// stdout carries command output
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level, false, os.Stderr)
	cfg := cli.LoadAndValidateConfig(logger)

	rt, err := cli.Bootstrap(ctx, cfg, logger, cli.Options{Publisher: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	app := &cli.App{
		Service: rt.Service,
		OpenJournal: func() (cli.ApprovalLister, func() error, error) {
			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger.Logger)
			if err != nil {
				return nil, nil, err
			}
			return repo, repo.Close, nil
		},
	}
	return cli.Execute(ctx, app, os.Args[1:])
}
