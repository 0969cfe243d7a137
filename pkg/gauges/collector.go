// Package gauges implements the periodic gauge collection pipeline: on each
// scheduler tick the collector reads the configured attributes through an
// AttributeReader, converts numeric values to points and hands the batch to
// a Repository.
package gauges

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/probeq/profiledb/pkg/logging"
	"github.com/probeq/profiledb/pkg/metrics"
	"github.com/probeq/profiledb/pkg/scheduler"
)

// Sentinel errors an AttributeReader reports so the collector can apply its
// suppression rules.
var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrAttributeNotFound = errors.New("attribute not found")
)

// Gauge is one configured gauge: a named object and the attributes to
// sample from it.
type Gauge struct {
	Name       string
	ObjectName string
	Attributes []string
}

// key identifies a gauge for once-only logging.
func (g Gauge) key() string {
	return g.Name + "|" + g.ObjectName
}

// Point is one sampled value.
type Point struct {
	GaugeName   string  `json:"gaugeName"`
	CaptureTime int64   `json:"captureTime"` // unix milliseconds
	Value       float64 `json:"value"`
}

// AttributeReader resolves an attribute of a named object. A dotted
// attribute name addresses a nested value inside a composite attribute.
type AttributeReader interface {
	ReadAttribute(objectName, attribute string) (any, error)
}

// Repository receives collected point batches.
type Repository interface {
	Store(points []Point) error
}

// Collector periodically samples all configured gauges. Collection failures
// are expected during startup (objects register late), so "not found" is
// suppressed for a configurable delay after construction and every distinct
// failure is logged at most once.
type Collector struct {
	gauges  func() []Gauge
	reader  AttributeReader
	repo    Repository
	clock   scheduler.Clock
	logger  logging.Logger
	metrics *metrics.Registry

	startTime     time.Time
	notFoundDelay time.Duration

	mu      sync.Mutex
	pending map[string]bool
	logged  map[string]bool
}

// NewCollector creates a collector. gauges is re-evaluated on every pass so
// config updates take effect without restarting the schedule.
func NewCollector(gauges func() []Gauge, reader AttributeReader, repo Repository,
	clock scheduler.Clock, notFoundDelay time.Duration, logger logging.Logger) *Collector {
	return &Collector{
		gauges:        gauges,
		reader:        reader,
		repo:          repo,
		clock:         clock,
		logger:        logger,
		metrics:       metrics.Default(),
		startTime:     clock.Now(),
		notFoundDelay: notFoundDelay,
		pending:       make(map[string]bool),
		logged:        make(map[string]bool),
	}
}

// Collect runs one pass over all configured gauges and stores the batch.
func (c *Collector) Collect() error {
	start := c.clock.Now()
	points := make([]Point, 0)
	for _, gauge := range c.gauges() {
		points = append(points, c.collectGauge(gauge)...)
	}
	if err := c.repo.Store(points); err != nil {
		c.metrics.RecordGaugeError("store")
		return fmt.Errorf("store gauge points: %w", err)
	}
	c.metrics.RecordGaugeCollection(len(points), c.clock.Now().Sub(start))
	return nil
}

func (c *Collector) collectGauge(gauge Gauge) []Point {
	captureTime := c.clock.Now().UnixMilli()
	points := make([]Point, 0, len(gauge.Attributes))
	for _, attribute := range gauge.Attributes {
		value, err := c.readAttribute(gauge.ObjectName, attribute)
		if errors.Is(err, ErrObjectNotFound) {
			// other attributes for this object will give the same
			// error, so log object not found and move on
			c.logFirstTimeObjectNotFound(gauge)
			c.metrics.RecordGaugeError("object_not_found")
			break
		}
		if errors.Is(err, ErrAttributeNotFound) {
			c.logFirstTimeAttributeError(gauge, attribute, "attribute not found")
			c.metrics.RecordGaugeError("attribute_not_found")
			continue
		}
		if err != nil {
			c.logFirstTimeAttributeError(gauge, attribute, err.Error())
			c.metrics.RecordGaugeError("read")
			continue
		}
		number, ok := toFloat(value)
		if !ok {
			c.logFirstTimeAttributeError(gauge, attribute, "attribute value is not a number")
			c.metrics.RecordGaugeError("not_a_number")
			continue
		}
		points = append(points, Point{
			GaugeName:   gauge.Name + "/" + attribute,
			CaptureTime: captureTime,
			Value:       number,
		})
	}
	return points
}

// readAttribute resolves a dotted attribute path: the reader is asked for
// the base attribute and the remainder is traversed through nested maps.
func (c *Collector) readAttribute(objectName, attribute string) (any, error) {
	base, remainder, nested := strings.Cut(attribute, ".")
	value, err := c.reader.ReadAttribute(objectName, base)
	if err != nil || !nested {
		return value, err
	}
	for _, segment := range strings.Split(remainder, ".") {
		composite, ok := value.(map[string]any)
		if !ok {
			return nil, ErrAttributeNotFound
		}
		value, ok = composite[segment]
		if !ok {
			return nil, ErrAttributeNotFound
		}
	}
	return value, nil
}

// logFirstTimeObjectNotFound warns once per gauge, but not before the
// startup delay has passed: objects commonly register after the process
// comes up, and warning during that window is pure noise.
func (c *Collector) logFirstTimeObjectNotFound(gauge Gauge) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := gauge.key()
	if c.clock.Now().Sub(c.startTime) < c.notFoundDelay {
		c.pending[key] = true
		return
	}
	if c.logged[key] {
		return
	}
	c.logged[key] = true
	if c.pending[key] {
		delete(c.pending, key)
		c.logger.Warn("gauge object not found (waited for startup registration before logging this)",
			logging.GaugeName(gauge.Name), logging.String("object", gauge.ObjectName))
		return
	}
	c.logger.Warn("gauge object not found",
		logging.GaugeName(gauge.Name), logging.String("object", gauge.ObjectName))
}

func (c *Collector) logFirstTimeAttributeError(gauge Gauge, attribute, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := gauge.key() + "/" + attribute
	if c.logged[key] {
		return
	}
	c.logged[key] = true
	c.logger.Warn("gauge attribute error",
		logging.GaugeName(gauge.Name), logging.String("object", gauge.ObjectName),
		logging.String("attribute", attribute), logging.String("reason", message))
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
