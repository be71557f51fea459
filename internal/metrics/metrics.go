// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "problemhub_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "problemhub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "problemhub_http_in_flight_requests",
		Help: "In-flight HTTP requests",
	})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "problemhub_rate_limited_requests_total",
		Help: "Requests rejected by the API rate limiter",
	})

	auditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "problemhub_audit_write_failures_total",
		Help: "Audit log writes that failed after a successful mutation",
	})

	problemTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "problemhub_problem_transitions_total",
		Help: "Problem statement lifecycle events by kind",
	}, []string{"event"})

	registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "problemhub_registrations_total",
		Help: "Organization accounts registered",
	})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "problemhub_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	statsCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "problemhub_public_stats_cache_total",
		Help: "Public statistics cache lookups by result",
	}, []string{"result"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func RequestStarted()  { httpInFlight.Inc() }
func RequestFinished() { httpInFlight.Dec() }

func RateLimited() { rateLimited.Inc() }

func AuditWriteFailed() { auditWriteFailures.Inc() }

// ProblemEvent counts created, updated, deleted, approved, rejected,
// featured and unfeatured events.
func ProblemEvent(event string) {
	problemTransitions.WithLabelValues(event).Inc()
}

func Registered() { registrations.Inc() }

// Login records a login attempt; result is "success" or an error code.
func Login(result string) {
	logins.WithLabelValues(result).Inc()
}

func StatsCacheHit()  { statsCache.WithLabelValues("hit").Inc() }
func StatsCacheMiss() { statsCache.WithLabelValues("miss").Inc() }
