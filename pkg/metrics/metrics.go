package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordBlockWrite records one committed block write
func (r *Registry) RecordBlockWrite(compressedBytes, uncompressedBytes int64) {
	r.StoreWritesTotal.Inc()
	r.StoreWriteBytesCompressed.Add(float64(compressedBytes))
	r.StoreWriteBytesUncompressed.Add(float64(uncompressedBytes))
}

// RecordExpiredRead records a read of an already-overwritten block id
func (r *Registry) RecordExpiredRead() {
	r.StoreExpiredReadsTotal.Inc()
}

// RecordRolledOverRead records a read aborted by a mid-read rollover
func (r *Registry) RecordRolledOverRead() {
	r.StoreRolledOverReadsTotal.Inc()
}

// RecordHeaderFlush records a periodic header flush attempt
func (r *Registry) RecordHeaderFlush(ok bool) {
	if ok {
		r.StoreHeaderFlushesTotal.WithLabelValues("ok").Inc()
	} else {
		r.StoreHeaderFlushesTotal.WithLabelValues("error").Inc()
	}
}

// RecordResize records a capacity change
func (r *Registry) RecordResize() {
	r.StoreResizesTotal.Inc()
}

// SetStoreState updates the write head and capacity gauges
func (r *Registry) SetStoreState(currentLength, capacityBytes uint64) {
	r.StoreCurrentLengthBytes.Set(float64(currentLength))
	r.StoreCapacityBytes.Set(float64(capacityBytes))
}

// RecordGaugeCollection records one gauge collection pass
func (r *Registry) RecordGaugeCollection(points int, duration time.Duration) {
	r.GaugePointsCollectedTotal.Add(float64(points))
	r.GaugeCollectionDuration.Observe(duration.Seconds())
}

// RecordGaugeError records a gauge collection failure
func (r *Registry) RecordGaugeError(reason string) {
	r.GaugeCollectionErrorsTotal.WithLabelValues(reason).Inc()
}

// UpdateSystemMetrics refreshes the runtime gauges
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}

// Handler returns an HTTP handler exposing the registry in Prometheus text
// format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
