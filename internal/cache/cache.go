// Package cache keeps rendered reports in memory between requests.
package cache

import (
	"context"
	"sync"
	"time"

	applog "obras/internal/log"
)

type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Purge()
	Size() int
}

// Cleaner is a cache that can drop its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager sweeps every registered cache on a fixed interval until its
// context is cancelled.
type Manager struct {
	mu     sync.Mutex
	caches []Cleaner
	logger *applog.Logger
	done   chan struct{}
}

func NewManager(logger *applog.Logger) *Manager {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Manager{logger: logger.WithComponent(applog.ComponentCache)}
}

func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// Sweep cleans every registered cache once and returns how many entries
// were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	removed := 0
	for _, c := range caches {
		removed += c.CleanExpired()
	}
	return removed
}

func (m *Manager) Start(ctx context.Context, interval time.Duration) {
	m.done = make(chan struct{})
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					m.logger.Debug("Expired cache entries removed", "removed", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Wait blocks until the sweeper started by Start has returned.
func (m *Manager) Wait() {
	if m.done != nil {
		<-m.done
	}
}
