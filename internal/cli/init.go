// Package cli provides the initialization shared by cmd/obras and
// cmd/obrasctl.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"obras/internal/amqp"
	"obras/internal/backend"
	"obras/internal/cache"
	"obras/internal/config"
	applog "obras/internal/log"
	"obras/internal/report"
	"obras/internal/services"
)

// SetupLogger builds the process logger and makes it the slog default.
// Unknown levels fall back to info; a nil out means stdout.
func SetupLogger(level string, json bool, out io.Writer) *applog.Logger {
	lvl, err := applog.ParseLevel(level)
	cfg := applog.DefaultConfig()
	cfg.Level = lvl
	cfg.JSON = json
	if out != nil {
		cfg.Output = out
	}
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info level", applog.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// Runtime is the wired dashboard: the service, its renderer capability and
// the cache sweeper.
type Runtime struct {
	Service   *services.DashboardService
	Renderers *report.Capability
	Caches    *cache.Manager

	cleanup []func() error
}

// Options selects the optional pieces of the runtime.
type Options struct {
	// Publisher connects to AMQP when the config enables it.
	Publisher bool
	// SweepInterval starts the cache sweeper when positive.
	SweepInterval time.Duration
}

// Bootstrap creates the configured catalog backend, provides the PDF
// renderer, and loads the catalog once.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *applog.Logger, opts Options) (*Runtime, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}

	rt := &Runtime{Renderers: report.NewCapability(), Caches: cache.NewManager(logger)}
	if res.Cleanup != nil {
		rt.cleanup = append(rt.cleanup, res.Cleanup)
	}
	rt.Renderers.Provide(report.NewPDFRenderer())

	svcOpts := []services.Option{services.WithLogger(logger)}
	if cfg.ReportCacheSize > 0 {
		reports := cache.NewLRUCache[services.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL)
		rt.Caches.Register(reports)
		svcOpts = append(svcOpts, services.WithReportCache(reports))
	}
	if opts.Publisher && cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey,
			logger.WithComponent(applog.ComponentAMQP).Logger)
		if err != nil {
			// approvals still work, they are only logged
			logger.Warn("AMQP unavailable, approvals will not be published", applog.FieldError, err)
		} else {
			svcOpts = append(svcOpts, services.WithPublisher(client))
		}
	}

	rt.Service = services.NewDashboardService(res.Source, rt.Renderers, svcOpts...)
	rt.cleanup = append([]func() error{rt.Service.Close}, rt.cleanup...)

	if err := rt.Service.Reload(ctx); err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if opts.SweepInterval > 0 {
		rt.Caches.Start(ctx, opts.SweepInterval)
	}

	logger.Info("Dashboard ready",
		"backend", bcfg.Type.String(),
		"projects", len(rt.Service.Catalog().Projects),
		"publisher", opts.Publisher && cfg.AMQPEnabled())
	return rt, nil
}

// Close releases the service and the backend in that order.
func (rt *Runtime) Close() error {
	var errs []error
	for _, fn := range rt.cleanup {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.cleanup = nil
	return errors.Join(errs...)
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// cleanup runs with a context bounded by timeout; done is closed after it
// returns.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), applog.FieldOperation, applog.OpShutdown)

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}
