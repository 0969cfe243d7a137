package gauges

import (
	"runtime"
)

// RuntimeObjectName is the object the built-in reader responds to.
const RuntimeObjectName = "go.runtime"

// RuntimeReader is an AttributeReader over the Go runtime, the built-in
// gauge source every deployment has. The "memstats" attribute is composite;
// dotted paths select individual fields.
type RuntimeReader struct{}

func (RuntimeReader) ReadAttribute(objectName, attribute string) (any, error) {
	if objectName != RuntimeObjectName {
		return nil, ErrObjectNotFound
	}
	switch attribute {
	case "goroutines":
		return runtime.NumGoroutine(), nil
	case "cpus":
		return runtime.NumCPU(), nil
	case "memstats":
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return map[string]any{
			"heapAlloc":    m.HeapAlloc,
			"heapObjects":  m.HeapObjects,
			"heapSys":      m.HeapSys,
			"stackInuse":   m.StackInuse,
			"numGC":        uint64(m.NumGC),
			"pauseTotalNs": m.PauseTotalNs,
		}, nil
	default:
		return nil, ErrAttributeNotFound
	}
}
