package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Level: level, Component: ComponentReport, JSON: true, Output: buf})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestLogger_AddsComponent(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, slog.LevelInfo).Info("hello", FieldProjectID, "1")

	rec := decodeLine(t, &buf)
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, ComponentReport, rec[FieldComponent])
	assert.Equal(t, "1", rec[FieldProjectID])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, slog.LevelWarn)
	l.Info("dropped")
	assert.Zero(t, buf.Len())
	l.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "": slog.LevelInfo, "WARN": slog.LevelWarn, "error": slog.LevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestMiddleware_FromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, slog.LevelInfo)

	var got *Logger
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-42" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			got.InfoContext(r.Context(), "inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, got)
	rec := decodeLine(t, &buf)
	assert.Equal(t, "req-42", rec[FieldRequestID])

	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(jsonLogger(&buf, slog.LevelInfo))

	sl.LogReportGenerated(context.Background(), "3", 2, 1024, true)
	rec := decodeLine(t, &buf)
	assert.Equal(t, "3", rec[FieldProjectID])
	assert.Equal(t, float64(2), rec[FieldReportPages])
	assert.Equal(t, true, rec[FieldCacheHit])

	buf.Reset()
	sl.LogError(context.Background(), "render failed", errors.New("boom"), ComponentReport, OpRender, nil)
	rec = decodeLine(t, &buf)
	assert.Equal(t, "boom", rec[FieldError])
	assert.Equal(t, "ERROR", rec["level"])

	buf.Reset()
	r := httptest.NewRequest(http.MethodGet, "/ui/obras?q=norte", nil)
	sl.LogHTTPEnd(context.Background(), r, http.StatusNotFound, 3, "10.0.0.1")
	rec = decodeLine(t, &buf)
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, false, rec[FieldSuccess])
	assert.Equal(t, "q=norte", rec[FieldQuery])
}

func TestStructuredLogger_UsesRequestLogger(t *testing.T) {
	var base, request bytes.Buffer
	sl := NewStructuredLogger(jsonLogger(&base, slog.LevelInfo))
	ctx := NewContext(context.Background(), jsonLogger(&request, slog.LevelInfo).With(FieldRequestID, "req-42"))

	r := httptest.NewRequest(http.MethodGet, "/ui/obras", nil)
	sl.LogHTTPEnd(ctx, r, http.StatusTeapot, 1, "10.0.0.1")

	assert.Zero(t, base.Len())
	rec := decodeLine(t, &request)
	assert.Equal(t, "req-42", rec[FieldRequestID])
	assert.Equal(t, float64(http.StatusTeapot), rec[FieldStatusCode])
}
