package metrics

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Outcome is the result of one request attempt. Exactly one of StatusCode or
// Kind is meaningful: a transported response carries a status code, a
// transport failure carries an error kind.
type Outcome struct {
	StatusCode int
	Latency    time.Duration
	Kind       ErrorKind
}

// ClassCounts groups status codes by leading digit.
type ClassCounts struct {
	C2xx  int64 `json:"2xx"`
	C3xx  int64 `json:"3xx"`
	C4xx  int64 `json:"4xx"`
	C5xx  int64 `json:"5xx"`
	Other int64 `json:"other"`
}

func (c *ClassCounts) record(code int) {
	switch code / 100 {
	case 2:
		c.C2xx++
	case 3:
		c.C3xx++
	case 4:
		c.C4xx++
	case 5:
		c.C5xx++
	default:
		c.Other++
	}
}

// Sum returns the total number of classified responses.
func (c ClassCounts) Sum() int64 {
	return c.C2xx + c.C3xx + c.C4xx + c.C5xx + c.Other
}

// Collector accumulates outcomes from concurrent workers. A single mutex
// guards the in-memory update; it is never held across network I/O, so
// contention stays negligible next to request latency.
type Collector struct {
	mu          sync.Mutex
	runID       string
	hist        *Histogram
	statusCodes map[int]int64
	classes     ClassCounts
	errorKinds  map[ErrorKind]int64
	minLatency  time.Duration
	maxLatency  time.Duration
	sumLatency  time.Duration
	total       int64
	start       time.Time
}

// Stats is an immutable snapshot of aggregated run statistics.
type Stats struct {
	RunID          string        `json:"run_id"`
	Total          int64         `json:"total"`
	Duration       time.Duration `json:"-"`
	RequestsPerSec float64       `json:"requests_per_sec"`

	StatusCounts map[int]int64    `json:"status_counts"`
	ClassCounts  ClassCounts      `json:"class_counts"`
	ErrorCounts  map[string]int64 `json:"error_counts,omitempty"`

	MinLatency  time.Duration `json:"-"`
	MaxLatency  time.Duration `json:"-"`
	MeanLatency time.Duration `json:"-"`
	P50Latency  time.Duration `json:"-"`
	P90Latency  time.Duration `json:"-"`
	P95Latency  time.Duration `json:"-"`
	P99Latency  time.Duration `json:"-"`
	P999Latency time.Duration `json:"-"`

	// JSON-friendly millisecond fields.
	MinLatencyMs  float64 `json:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms"`
	P95LatencyMs  float64 `json:"p95_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms"`
	P999LatencyMs float64 `json:"p999_latency_ms"`
	DurationMs    float64 `json:"duration_ms"`

	// OverflowCount reports samples beyond the histogram's trackable
	// maximum. They are counted in Total but excluded from percentiles.
	OverflowCount int64 `json:"overflow_count"`
}

func NewCollector() *Collector {
	return &Collector{
		runID:       ulid.Make().String(),
		hist:        NewHistogram(),
		statusCodes: make(map[int]int64),
		errorKinds:  make(map[ErrorKind]int64),
		start:       time.Now(),
	}
}

// RunID returns the identifier assigned to this collector's run.
func (c *Collector) RunID() string {
	return c.runID
}

// Start marks the beginning of the run for elapsed-time calculations.
// Call it immediately before dispatching the first request.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// Record accumulates one outcome. Safe for concurrent use.
func (c *Collector) Record(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	c.hist.Record(o.Latency)
	c.sumLatency += o.Latency
	if c.minLatency == 0 || o.Latency < c.minLatency {
		c.minLatency = o.Latency
	}
	if o.Latency > c.maxLatency {
		c.maxLatency = o.Latency
	}

	if o.Kind != "" {
		c.errorKinds[o.Kind]++
		return
	}
	c.statusCodes[o.StatusCode]++
	c.classes.record(o.StatusCode)
}

// Elapsed returns the wall time since the run started.
func (c *Collector) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.start)
}

// Stats computes a snapshot of the aggregated statistics. The snapshot owns
// its maps, so later calls never mutate an earlier result.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		RunID:         c.runID,
		Total:         c.total,
		ClassCounts:   c.classes,
		StatusCounts:  make(map[int]int64, len(c.statusCodes)),
		MinLatency:    c.minLatency,
		MaxLatency:    c.maxLatency,
		OverflowCount: c.hist.Overflow(),
	}
	for code, count := range c.statusCodes {
		stats.StatusCounts[code] = count
	}
	if len(c.errorKinds) > 0 {
		stats.ErrorCounts = make(map[string]int64, len(c.errorKinds))
		for kind, count := range c.errorKinds {
			stats.ErrorCounts[string(kind)] = count
		}
	}

	if c.total > 0 {
		stats.MeanLatency = time.Duration(int64(c.sumLatency) / c.total)
	}
	if c.hist.Count() > 0 {
		stats.P50Latency = c.hist.Quantile(50)
		stats.P90Latency = c.hist.Quantile(90)
		stats.P95Latency = c.hist.Quantile(95)
		stats.P99Latency = c.hist.Quantile(99)
		stats.P999Latency = c.hist.Quantile(99.9)
	}

	stats.MinLatencyMs = toMillis(stats.MinLatency)
	stats.MaxLatencyMs = toMillis(stats.MaxLatency)
	stats.MeanLatencyMs = toMillis(stats.MeanLatency)
	stats.P50LatencyMs = toMillis(stats.P50Latency)
	stats.P90LatencyMs = toMillis(stats.P90Latency)
	stats.P95LatencyMs = toMillis(stats.P95Latency)
	stats.P99LatencyMs = toMillis(stats.P99Latency)
	stats.P999LatencyMs = toMillis(stats.P999Latency)

	stats.Duration = elapsed
	stats.DurationMs = toMillis(elapsed)
	if elapsed > 0 && c.total > 0 {
		stats.RequestsPerSec = float64(c.total) / elapsed.Seconds()
	}

	return stats
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
