package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"obras/internal/cli"
	apphttp "obras/internal/http"
	applog "obras/internal/log"
	"obras/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	// JSON logs unless a person is watching the terminal
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), !isatty.IsTerminal(os.Stdout.Fd()), nil)
	cfg := cli.LoadAndValidateConfig(logger)

	// the backend keeps this context for token refresh, so it must outlive startup
	rt, err := cli.Bootstrap(context.Background(), cfg, logger, cli.Options{Publisher: true})
	if err != nil {
		logger.Error("Failed to start dashboard", applog.FieldError, err, applog.FieldOperation, applog.OpStartup)
		os.Exit(1)
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:             ":" + cfg.Port,
		FeaturedDocument: cfg.FeaturedDocument,
		Logger:           logger,
	}, rt.Service, rt.Renderers)
	if err != nil {
		logger.Error("Failed to build HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		rt.Caches.Wait()
		if err := rt.Close(); err != nil {
			logger.Error("Cleanup error", applog.FieldError, err)
		}
	})
	rt.Caches.Start(ctx, time.Minute)
	if cfg.CatalogRefreshInterval > 0 {
		go worker.NewCatalogRefresher(rt.Service, cfg.CatalogMaxAge, logger).Run(ctx, cfg.CatalogRefreshInterval)
	}

	logger.Info("Starting HTTP server", "addr", srv.Addr, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed to start", applog.FieldError, err)
		os.Exit(1)
	}
	<-done
}
