package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ContextKey string

const LoggerContextKey ContextKey = "logger"

// Middleware stores logger in every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext returns the request logger, or one over slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// RequestIDMiddleware adds the request id to the context logger.
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context()).With(FieldRequestID, extractRequestID(r))
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// StructuredLogger logs the recurring events of the dashboard with a fixed
// set of fields.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// from prefers the request logger in ctx so request ids travel with every
// event.
func (sl *StructuredLogger) from(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return sl.logger
}

func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithHTTPResponse(statusCode, durationMs).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.from(ctx).Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogFilter(ctx context.Context, status, term string, results int) {
	fields := NewFields().
		WithFilter(status, term, results).
		WithOperation(OpFilter).
		WithComponent(ComponentDashboard)
	sl.from(ctx).Logger.DebugContext(ctx, "Projects filtered", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogReportGenerated(ctx context.Context, projectID string, pages, size int, cacheHit bool) {
	fields := NewFields().
		WithProject(projectID, "").
		WithReport(pages, size, cacheHit).
		WithOperation(OpReport).
		WithComponent(ComponentReport)
	sl.from(ctx).Logger.InfoContext(ctx, "Report generated", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogApproval(ctx context.Context, projectID, name string, published bool) {
	fields := NewFields().
		WithProject(projectID, name).
		WithOperation(OpApprove).
		WithComponent(ComponentDashboard)
	fields["published"] = published
	sl.from(ctx).Logger.InfoContext(ctx, "Progress approved", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.WithError(err).WithOperation(operation).WithComponent(component)
	sl.from(ctx).Logger.ErrorContext(ctx, msg, all.ToSlice()...)
}
