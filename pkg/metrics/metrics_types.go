package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Capped store metrics
	StoreWritesTotal            prometheus.Counter
	StoreWriteBytesCompressed   prometheus.Counter
	StoreWriteBytesUncompressed prometheus.Counter
	StoreExpiredReadsTotal      prometheus.Counter
	StoreRolledOverReadsTotal   prometheus.Counter
	StoreHeaderFlushesTotal     *prometheus.CounterVec
	StoreResizesTotal           prometheus.Counter
	StoreCurrentLengthBytes     prometheus.Gauge
	StoreCapacityBytes          prometheus.Gauge

	// Gauge collection metrics
	GaugePointsCollectedTotal  prometheus.Counter
	GaugeCollectionErrorsTotal *prometheus.CounterVec
	GaugeCollectionDuration    prometheus.Histogram

	// System metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// Default returns the global metrics registry
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}
	r.initStoreMetrics()
	r.initGaugeMetrics()
	r.initSystemMetrics()
	return r
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}
