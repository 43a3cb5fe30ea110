package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the synchronization pipeline.
type Metrics struct {
	Runs            *prometheus.CounterVec
	RecordsAffected *prometheus.GaugeVec
	RunDuration     *prometheus.HistogramVec
}

// New creates and registers all sync metrics.
func New() *Metrics {
	return &Metrics{
		Runs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sanctionwatch_sync_runs_total",
			Help: "Synchronization runs by source and terminal status",
		}, []string{"source", "status"}),
		RecordsAffected: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sanctionwatch_sync_records_affected",
			Help: "Entities written by the most recent successful run per source",
		}, []string{"source"}),
		RunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sanctionwatch_sync_run_duration_seconds",
			Help:    "Wall-clock duration of synchronization runs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"source"}),
	}
}
