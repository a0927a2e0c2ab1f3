package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the substitution engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	scanCreated     prometheus.Counter
	scanRuns        prometheus.Counter
	commitTotal     *prometheus.CounterVec
	notifyFailures  prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	scanCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "substitution_vacancies_created_total",
		Help: "Total vacancy records created by scans",
	})

	scanRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "substitution_scan_runs_total",
		Help: "Total vacancy scan executions",
	})

	commitTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "substitution_commits_total",
		Help: "Commit attempts by outcome",
	}, []string{"outcome"})

	notifyFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_notify_failures_total",
		Help: "Assignment notifications that could not be published",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, scanCreated, scanRuns, commitTotal, notifyFailures, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		scanCreated:     scanCreated,
		scanRuns:        scanRuns,
		commitTotal:     commitTotal,
		notifyFailures:  notifyFailures,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records per-route request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordScan counts one scan run and the vacancies it created.
func (m *MetricsService) RecordScan(created int) {
	if m == nil {
		return
	}
	m.scanRuns.Inc()
	m.scanCreated.Add(float64(created))
}

// RecordCommit counts one commit attempt labelled by outcome, either
// "committed" or a rejection code.
func (m *MetricsService) RecordCommit(outcome string) {
	if m == nil {
		return
	}
	m.commitTotal.WithLabelValues(outcome).Inc()
}

// RecordNotifyFailure counts a dropped assignment notification.
func (m *MetricsService) RecordNotifyFailure() {
	if m == nil {
		return
	}
	m.notifyFailures.Inc()
}
