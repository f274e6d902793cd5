// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchCyclesTotal tracks completed scheduler fetch cycles
	FetchCyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "scheduler",
			Name:      "fetch_cycles_total",
			Help:      "Total number of completed provider fetch cycles",
		},
	)

	// FetchCyclesSkipped tracks ticks skipped because a cycle was still running
	FetchCyclesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "scheduler",
			Name:      "fetch_cycles_skipped_total",
			Help:      "Total number of ticks skipped while a fetch cycle was in flight",
		},
	)

	// ProviderFetchFailures tracks provider fetch or normalization failures
	ProviderFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "scheduler",
			Name:      "provider_failures_total",
			Help:      "Total number of failed provider fetches by provider",
		},
		[]string{"provider"},
	)

	// FetchDuration tracks the duration of a full fetch cycle
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "scheduler",
			Name:      "fetch_cycle_duration_seconds",
			Help:      "Duration of provider fetch cycles in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	// JobsIngested tracks newly persisted jobs
	JobsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "ingest",
			Name:      "jobs_ingested_total",
			Help:      "Total number of jobs persisted",
		},
	)

	// JobsSkipped tracks duplicate jobs skipped during ingestion
	JobsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "ingest",
			Name:      "jobs_skipped_total",
			Help:      "Total number of duplicate jobs skipped",
		},
	)

	// JobsFailed tracks jobs that could not be ingested
	JobsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "ingest",
			Name:      "jobs_failed_total",
			Help:      "Total number of jobs that failed ingestion",
		},
	)

	// SearchRetries tracks retried search query attempts
	SearchRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "search",
			Name:      "query_retries_total",
			Help:      "Total number of retried search query attempts",
		},
	)
)
