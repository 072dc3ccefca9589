package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordReport(t *testing.T) {
	before := testutil.ToFloat64(ReportRenders.WithLabelValues(OutcomeRendered))
	RecordReport(OutcomeRendered, 20*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(ReportRenders.WithLabelValues(OutcomeRendered)))
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(ReportCacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(ReportCacheLookups.WithLabelValues("miss"))
	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)
	assert.Equal(t, hits+1, testutil.ToFloat64(ReportCacheLookups.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(ReportCacheLookups.WithLabelValues("miss")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	RecordFilter(3)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "obras_filter_results"))
}
