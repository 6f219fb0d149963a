// Package metrics declares the Prometheus collectors used across proagent.
// Collectors are registered with the default registry via promauto and
// served by the health server on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "proagent"

var (
	// ResolutionsTotal counts resolved calls.
	//
	// Labels:
	//   - strategy: "reasoning" or "fallback"
	//   - function: operation id
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolve",
			Name:      "resolutions_total",
			Help:      "Total resolved calls by strategy and function.",
		},
		[]string{"strategy", "function"},
	)

	// ReasoningFailuresTotal counts reasoning-tier failures that caused a fallback.
	//
	// Labels:
	//   - reason: "unavailable", "rate_limited", "timeout", "request", "decode",
	//     "unknown_function", "confidence", "parameters"
	ReasoningFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolve",
			Name:      "reasoning_failures_total",
			Help:      "Reasoning service failures absorbed by the fallback resolver.",
		},
		[]string{"reason"},
	)

	// ReasoningDuration measures reasoning service round trips.
	ReasoningDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolve",
			Name:      "reasoning_duration_seconds",
			Help:      "Duration of reasoning service calls in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"backend", "status"},
	)

	// DispatchTotal counts transformation executions.
	//
	// Labels:
	//   - function: operation id
	//   - outcome: "success" or an error kind
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "executions_total",
			Help:      "Total transformation executions by function and outcome.",
		},
		[]string{"function", "outcome"},
	)

	// DispatchDuration measures transformation run time.
	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Duration of transformation executions in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"function"},
	)

	// SpeechCallsTotal counts speech service calls.
	//
	// Labels:
	//   - backend: "sarvam", "whisper", "piper"
	//   - op: "transcribe" or "synthesize"
	//   - status: "success" or "error"
	SpeechCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "speech",
			Name:      "calls_total",
			Help:      "Total speech service calls.",
		},
		[]string{"backend", "op", "status"},
	)

	// CleanupRemovedTotal counts files removed by the storage cleanup loop.
	CleanupRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "cleanup_removed_total",
			Help:      "Files and directories removed by age-based cleanup.",
		},
	)
)

// Status maps an error to the "success"/"error" label value.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveReasoning records one reasoning call.
func ObserveReasoning(backend string, start time.Time, err error) {
	ReasoningDuration.WithLabelValues(backend, Status(err)).Observe(time.Since(start).Seconds())
}

// ObserveSpeech records one speech call.
func ObserveSpeech(backend, op string, err error) {
	SpeechCallsTotal.WithLabelValues(backend, op, Status(err)).Inc()
}
