// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the fitpulse backend.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts all HTTP requests by method, path, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpulse_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method and path.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitpulse_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AuthFailuresTotal counts rejected bearer credentials. No reason label:
	// rejection causes are collapsed externally and stay collapsed here.
	AuthFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fitpulse_auth_failures_total",
			Help: "Rejected bearer credentials",
		},
	)

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpulse_logins_total",
			Help: "Login attempts",
		},
		[]string{"outcome"},
	)

	// RegistrationsTotal counts registration attempts by outcome.
	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpulse_registrations_total",
			Help: "Registration attempts",
		},
		[]string{"outcome"},
	)

	// ReportGenerationsTotal counts report generations by model and outcome.
	ReportGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitpulse_report_generations_total",
			Help: "Report generations",
		},
		[]string{"model", "outcome"},
	)

	// GeneratorLatency records LLM backend latency in seconds.
	GeneratorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitpulse_generator_latency_seconds",
			Help:    "Report generator latency",
			Buckets: LLMBuckets,
		},
		[]string{"generator"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthFailuresTotal,
		LoginsTotal,
		RegistrationsTotal,
		ReportGenerationsTotal,
		GeneratorLatency,
	)
}
