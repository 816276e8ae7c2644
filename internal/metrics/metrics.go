package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalysisRequests tracks call-analysis invocations by outcome
	AnalysisRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "closecall_analysis_requests_total",
			Help: "Total number of call analysis requests",
		},
		[]string{"outcome"},
	)

	// AnalysisFailures tracks classified analysis failures
	AnalysisFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "closecall_analysis_failures_total",
			Help: "Total number of call analysis failures by class",
		},
		[]string{"class"},
	)

	// AnalysisLatency tracks remote analysis latency
	AnalysisLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "closecall_analysis_latency_seconds",
			Help:    "Remote call analysis latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// EmailSends tracks email dispatch attempts by outcome
	EmailSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "closecall_email_sends_total",
			Help: "Total number of follow-up email send attempts",
		},
		[]string{"outcome"},
	)

	// HTTPRequestDuration tracks API request latency per route
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "closecall_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
