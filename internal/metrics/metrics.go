// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PapersGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papers_generated_total",
			Help: "Total number of paper generation attempts",
		},
		[]string{"trigger", "status"},
	)

	QuestionsPromotedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "questions_promoted_total",
			Help: "Questions promoted from section D to section E",
		},
	)

	PaperGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "paper_generation_duration_seconds",
			Help:    "Full generation cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
