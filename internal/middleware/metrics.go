package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domain "github.com/bryanwahyu/fiscaliza/internal/domain/analysis"
	"github.com/bryanwahyu/fiscaliza/internal/domain/failures"
)

// Metrics holds the prometheus collectors for HTTP traffic and the
// screening pipeline. It satisfies the analysis service's Recorder.
type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	inFlight   prometheus.Gauge
	duration   *prometheus.HistogramVec
	analyses   *prometheus.CounterVec
	cacheHits  prometheus.Counter
	rejected   prometheus.Counter
	alerts     *prometheus.CounterVec
	failureCnt *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fiscaliza_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fiscaliza_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fiscaliza_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fiscaliza_analyses_total",
			Help: "Fresh analyses by resulting status.",
		}, []string{"status"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fiscaliza_cache_hits_total",
			Help: "Analyses served from the store.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fiscaliza_unanalyzable_total",
			Help: "Inputs rejected for carrying no text.",
		}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fiscaliza_alerts_total",
			Help: "Alert deliveries by outcome.",
		}, []string{"outcome"}),
		failureCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fiscaliza_pipeline_failures_total",
			Help: "Degraded pipeline steps by phase.",
		}, []string{"phase"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.inFlight, m.duration,
		m.analyses, m.cacheHits, m.rejected, m.alerts, m.failureCnt,
	)
	return m
}

func (m *Metrics) CacheHit() { m.cacheHits.Inc() }
func (m *Metrics) Analyzed(status domain.Status) { m.analyses.WithLabelValues(string(status)).Inc() }
func (m *Metrics) Unanalyzable() { m.rejected.Inc() }
func (m *Metrics) Failure(phase failures.Phase) { m.failureCnt.WithLabelValues(string(phase)).Inc() }

func (m *Metrics) Alert(ok bool) {
	outcome := "sent"
	if !ok {
		outcome = "failed"
	}
	m.alerts.WithLabelValues(outcome).Inc()
}

// Middleware tracks request metrics. Routes are labelled by chi pattern
// so fingerprints do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()
		start := time.Now()

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
