// Package metrics exposes Prometheus collectors for the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "obras_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	ReportRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obras_report_renders_total",
			Help: "Project reports requested, by outcome",
		},
		[]string{"outcome"}, // rendered, cached, unavailable, failed
	)

	ReportRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "obras_report_render_duration_seconds",
			Help:    "Time spent composing and rendering a project report",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	ReportCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obras_report_cache_lookups_total",
			Help: "Report cache lookups, by result",
		},
		[]string{"result"}, // hit, miss
	)

	FilterResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "obras_filter_results",
			Help:    "Number of projects kept by a list filter",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)

	ApprovalsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obras_approvals_total",
			Help: "Progress approvals, by publish result",
		},
		[]string{"result"}, // published, logged, failed
	)
)

const (
	OutcomeRendered    = "rendered"
	OutcomeCached      = "cached"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
)

func RecordHTTPRequest(method, route, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func RecordReport(outcome string, d time.Duration) {
	ReportRenders.WithLabelValues(outcome).Inc()
	if outcome == OutcomeRendered {
		ReportRenderDuration.Observe(d.Seconds())
	}
}

func RecordCacheLookup(hit bool) {
	if hit {
		ReportCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	ReportCacheLookups.WithLabelValues("miss").Inc()
}

func RecordFilter(results int) {
	FilterResults.Observe(float64(results))
}

func RecordApproval(result string) {
	ApprovalsPublished.WithLabelValues(result).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
