// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codexr_pipeline_outcomes_total",
			Help: "Answers produced by the pipeline, by outcome and context",
		},
		[]string{"outcome", "context"},
	)

	ModelLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codexr_model_latency_seconds",
			Help:    "Model provider call latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"provider"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codexr_search_requests_total",
			Help: "Live web search calls, by result",
		},
		[]string{"result"},
	)

	HistoryWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codexr_history_write_failures_total",
			Help: "History saves that failed and were skipped",
		},
	)

	SessionsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "codexr_sessions_swept_total",
			Help: "Expired login sessions removed by the sweeper",
		},
	)
)
