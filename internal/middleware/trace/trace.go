// Package trace assigns request ids and records one log line and one
// latency sample per HTTP request.
package trace

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	applog "obras/internal/log"
	"obras/internal/metrics"
)

type ContextKey string

const (
	RequestIDKey    ContextKey = "request_id"
	RequestIDHeader            = "X-Request-ID"
)

// Middleware traces requests. Route maps a request to a low-cardinality
// label for metrics; when nil the raw path is used.
type Middleware struct {
	extractIP func(*http.Request) string
	route     func(*http.Request) string
	logger    *applog.Logger
	events    *applog.StructuredLogger
	total     int64
}

func NewMiddleware(logger *applog.Logger, extractIP, route func(*http.Request) string) *Middleware {
	logger = logger.WithComponent(applog.ComponentTrace)
	return &Middleware{
		extractIP: extractIP,
		route:     route,
		logger:    logger,
		events:    applog.NewStructuredLogger(logger),
	}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}
		requestID := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = applog.NewContext(ctx, m.logger.With(applog.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		atomic.AddInt64(&m.total, 1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		m.events.LogHTTPEnd(ctx, r, rw.statusCode, elapsed.Milliseconds(), clientIP)

		label := r.URL.Path
		if m.route != nil {
			label = m.route(r)
		}
		metrics.RecordHTTPRequest(r.Method, label, strconv.Itoa(rw.statusCode), elapsed)
	})
}

// Total returns how many requests went through the middleware.
func (m *Middleware) Total() int64 {
	return atomic.LoadInt64(&m.total)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func GenerateRequestID() string {
	return uuid.NewString()
}

// GetRequestID returns the id stored by the middleware, or "".
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
