package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Advisor-API Metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisorhub",
			Subsystem: "advisor_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "advisorhub",
			Subsystem: "advisor_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	ProvisionCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisorhub",
			Subsystem: "advisor_api",
			Name:      "provision_calls_total",
			Help:      "Total team provisioning calls by outcome",
		},
		[]string{"outcome"},
	)

	AdvisorsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisorhub",
			Subsystem: "advisor_api",
			Name:      "advisors_created_total",
			Help:      "Total advisors created",
		},
		[]string{"source"},
	)

	RateLimitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisorhub",
			Subsystem: "advisor_api",
			Name:      "rate_limit_rejections_total",
			Help:      "Total calls rejected by the rate limiter",
		},
		[]string{"action"},
	)

	IdempotencyLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisorhub",
			Subsystem: "advisor_api",
			Name:      "idempotency_lookups_total",
			Help:      "Idempotency guard lookups by result",
		},
		[]string{"result"},
	)

	SweepDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisorhub",
			Subsystem: "advisor_api",
			Name:      "sweep_deleted_total",
			Help:      "Rows removed by the background sweep",
		},
		[]string{"table"},
	)
)

// RecordRequest records one HTTP request observation.
func RecordRequest(method, endpoint, status string, duration float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(duration)
}
