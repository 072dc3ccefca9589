// Package ratelimit bounds how often one client may call state-changing
// endpoints.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Limiter is a fixed one-minute window per client address.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	methods map[string]bool
	now     func() time.Time
}

type window struct {
	start    time.Time
	requests int
}

type Config struct {
	RequestsPerMinute int
	// Methods lists the HTTP methods that are limited. Empty limits all.
	Methods []string
}

func DefaultConfig() Config {
	return Config{RequestsPerMinute: 30, Methods: []string{http.MethodPost}}
}

func NewLimiter(config Config) *Limiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	l := &Limiter{
		clients: make(map[string]*window),
		limit:   config.RequestsPerMinute,
		now:     time.Now,
	}
	if len(config.Methods) > 0 {
		l.methods = make(map[string]bool, len(config.Methods))
		for _, m := range config.Methods {
			l.methods[m] = true
		}
	}
	return l
}

// Allow counts one request for clientIP and reports whether it is within
// the limit.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[clientIP]
	if !ok || now.Sub(w.start) >= time.Minute {
		l.clients[clientIP] = &window{start: now, requests: 1}
		return true
	}
	w.requests++
	return w.requests <= l.limit
}

// RunCleanup drops idle clients every interval until ctx is done.
func (l *Limiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-ctx.Done():
			return
		}
	}
}

func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-10 * time.Minute)
	for ip, w := range l.clients {
		if w.start.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *Limiter) limited(method string) bool {
	return l.methods == nil || l.methods[method]
}

// Middleware rejects requests over the limit. onLimit writes the response
// when set; otherwise a plain 429 is sent.
func (l *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.limited(r.Method) && !l.Allow(extractIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(60))
				if onLimit != nil {
					onLimit(w, r)
					return
				}
				http.Error(w, "Demasiadas solicitudes. Intente nuevamente en un minuto.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
