// Package worker holds the background jobs around the dashboard: keeping
// the catalog fresh and journaling approval events.
package worker

import (
	"context"
	"fmt"
	"time"

	applog "obras/internal/log"
)

// Reloader is the part of the dashboard service the refresher drives.
type Reloader interface {
	Reload(ctx context.Context) error
	LoadedAt() time.Time
}

// CatalogRefresher reloads the catalog once it is older than MaxAge.
type CatalogRefresher struct {
	catalog Reloader
	maxAge  time.Duration
	logger  *applog.Logger
	now     func() time.Time
}

func NewCatalogRefresher(catalog Reloader, maxAge time.Duration, logger *applog.Logger) *CatalogRefresher {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &CatalogRefresher{
		catalog: catalog,
		maxAge:  maxAge,
		logger:  logger.WithComponent(applog.ComponentCatalog),
		now:     time.Now,
	}
}

// RefreshIfStale reloads when the catalog was never loaded or is older
// than maxAge, and reports whether it reloaded.
func (r *CatalogRefresher) RefreshIfStale(ctx context.Context) (bool, error) {
	loaded := r.catalog.LoadedAt()
	if !loaded.IsZero() {
		age := r.now().Sub(loaded)
		if age < r.maxAge {
			r.logger.DebugContext(ctx, "Catalog is fresh", "age", age.Round(time.Second))
			return false, nil
		}
		r.logger.InfoContext(ctx, "Catalog is stale, reloading",
			"loaded_at", loaded.Format(time.RFC3339),
			"age", age.Round(time.Second))
	}
	if err := r.ForceRefresh(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ForceRefresh reloads regardless of age. A failed reload keeps the
// catalog already being served.
func (r *CatalogRefresher) ForceRefresh(ctx context.Context) error {
	if err := r.catalog.Reload(ctx); err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}
	return nil
}

// Run checks the catalog every interval until ctx is cancelled.
func (r *CatalogRefresher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RefreshIfStale(ctx); err != nil {
				r.logger.ErrorContext(ctx, "Periodic catalog refresh failed",
					applog.FieldError, err, applog.FieldOperation, applog.OpLoad)
			}
		}
	}
}
