// Package metrics exposes Prometheus collectors for the trip-context
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_engine_turns_processed_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"state"},
	)

	EntitiesExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_engine_entities_extracted_total",
			Help: "Total number of entities extracted by type",
		},
		[]string{"entity_type"},
	)

	ConflictsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_engine_conflicts_detected_total",
			Help: "Total number of merge conflicts detected by severity",
		},
		[]string{"severity"},
	)

	ClarificationsFlagged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trip_engine_clarifications_flagged_total",
			Help: "Total number of conflicts surfaced for user clarification",
		},
	)

	HintsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trip_engine_hints_emitted_total",
			Help: "Total number of hints emitted by category",
		},
		[]string{"hint_type"},
	)

	TurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "trip_engine_turn_duration_seconds",
			Help: "Duration of one full extract-classify-merge-generate pass",
		},
	)
)
