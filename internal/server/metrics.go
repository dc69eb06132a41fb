package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the practice API.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Grades          *prometheus.CounterVec
	LLMFailures     *prometheus.CounterVec
	RateLimited     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chemthink_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chemthink_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "route"},
		),
		Grades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chemthink_grades_total",
				Help: "Graded answers by verdict",
			},
			[]string{"correct"},
		),
		LLMFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chemthink_llm_failures_total",
				Help: "LLM calls that failed, by operation and reason",
			},
			[]string{"op", "reason"},
		),
		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chemthink_rate_limited_total",
				Help: "Requests rejected by the per-client rate limit",
			},
		),
	}
	reg.MustRegister(m.Requests, m.RequestDuration, m.Grades, m.LLMFailures, m.RateLimited)
	return m
}
