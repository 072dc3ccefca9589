package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_Allow(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	l := NewLimiter(Config{RequestsPerMinute: 2})
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "clients are counted separately")

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("a"), "window resets after a minute")
}

func TestLimiter_Cleanup(t *testing.T) {
	now := time.Now()
	l := NewLimiter(Config{RequestsPerMinute: 5})
	l.now = func() time.Time { return now }
	l.Allow("old")
	now = now.Add(11 * time.Minute)
	l.Allow("new")

	l.cleanup()
	assert.Equal(t, 1, l.ActiveClients())
}

func TestLimiter_MiddlewareOnlyLimitsConfiguredMethods(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1, Methods: []string{http.MethodPost}})
	h := l.Middleware(func(*http.Request) string { return "1.2.3.4" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/obras/1/approve", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/obras/1/approve", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
