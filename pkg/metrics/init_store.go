package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStoreMetrics() {
	r.StoreWritesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "profiledb_store_writes_total",
			Help: "Total number of blocks written to the capped store",
		},
	)

	r.StoreWriteBytesCompressed = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "profiledb_store_write_bytes_compressed_total",
			Help: "Compressed payload bytes written to the ring",
		},
	)

	r.StoreWriteBytesUncompressed = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "profiledb_store_write_bytes_uncompressed_total",
			Help: "Uncompressed payload bytes accepted from producers",
		},
	)

	r.StoreExpiredReadsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "profiledb_store_expired_reads_total",
			Help: "Reads of block ids already overwritten by the wrap-around",
		},
	)

	r.StoreRolledOverReadsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "profiledb_store_rolled_over_reads_total",
			Help: "Reads aborted because the block was overwritten mid-read",
		},
	)

	r.StoreHeaderFlushesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "profiledb_store_header_flushes_total",
			Help: "Periodic header flushes by status",
		},
		[]string{"status"},
	)

	r.StoreResizesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "profiledb_store_resizes_total",
			Help: "Total number of capacity changes",
		},
	)

	r.StoreCurrentLengthBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "profiledb_store_current_length_bytes",
			Help: "Total bytes ever written to the ring (monotone write head)",
		},
	)

	r.StoreCapacityBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "profiledb_store_capacity_bytes",
			Help: "Current ring capacity in bytes",
		},
	)
}
