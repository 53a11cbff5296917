// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_submissions_total",
			Help: "Total number of submission attempts by outcome",
		},
		[]string{"status"},
	)

	StepValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_step_validation_failures_total",
			Help: "Total number of step validations that blocked forward navigation",
		},
		[]string{"step"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "onboarding_submission_duration_seconds",
			Help: "Duration of the multi-resource submission in seconds",
		},
		[]string{"status"},
	)

	UploadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onboarding_upload_bytes",
			Help:    "Size of uploaded documents and photos in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"kind"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "onboarding_active_sessions",
			Help: "Number of in-flight onboarding sessions",
		},
	)
)
