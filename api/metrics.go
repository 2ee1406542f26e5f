package api

import "github.com/prometheus/client_golang/prometheus"

var (
	mtxRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtester_runs_total",
			Help: "Backtest runs served, by outcome",
		},
		[]string{"status"}, // ok|invalid|error
	)

	mtxRejectedEntries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backtester_rejected_entries_total",
			Help: "Entry requests skipped across all served runs",
		},
	)

	mtxRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backtester_run_duration_seconds",
			Help:    "Wall time of one engine pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	mtxBars = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backtester_run_bars",
			Help:    "Bars per served run",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6),
		},
	)
)

func init() {
	prometheus.MustRegister(mtxRuns, mtxRejectedEntries, mtxRunDuration, mtxBars)
}
