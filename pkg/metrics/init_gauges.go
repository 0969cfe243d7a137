package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGaugeMetrics() {
	r.GaugePointsCollectedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "profiledb_gauge_points_collected_total",
			Help: "Total number of gauge points collected",
		},
	)

	r.GaugeCollectionErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "profiledb_gauge_collection_errors_total",
			Help: "Gauge collection failures by reason",
		},
		[]string{"reason"},
	)

	r.GaugeCollectionDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "profiledb_gauge_collection_duration_seconds",
			Help:    "Duration of one gauge collection pass in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)
}
