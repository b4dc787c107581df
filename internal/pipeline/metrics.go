package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	runsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockplan_analysis_runs_started_total",
			Help: "Number of batch analysis runs started",
		},
	)

	runsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockplan_analysis_runs_finished_total",
			Help: "Number of batch analysis runs finished, by final status",
		},
		[]string{"status"},
	)

	componentsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockplan_analysis_components_processed_total",
			Help: "Number of components successfully analyzed across all runs",
		},
	)

	componentsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockplan_analysis_components_failed_total",
			Help: "Number of components that could not be analyzed",
		},
	)

	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockplan_analysis_run_duration_seconds",
			Help:    "Wall time of batch analysis runs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(
		runsStarted,
		runsFinished,
		componentsProcessed,
		componentsFailed,
		runDuration,
	)
}
