package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// lowestTrackableMicros is the smallest latency the histogram resolves.
	lowestTrackableMicros = int64(1)
	// highestTrackableMicros bounds the trackable range at 60s. Samples
	// beyond it land in the overflow counter and are excluded from
	// quantile interpolation.
	highestTrackableMicros = int64(60 * time.Second / time.Microsecond)
)

// Histogram records latency samples into logarithmic buckets with three
// significant figures of resolution, spanning 1µs to 60s. Samples beyond the
// trackable maximum are counted separately instead of being clamped, so
// quantiles are never interpolated into a range the histogram cannot
// represent.
type Histogram struct {
	hist     *hdrhistogram.Histogram
	overflow int64
}

func NewHistogram() *Histogram {
	return &Histogram{
		hist: hdrhistogram.New(lowestTrackableMicros, highestTrackableMicros, 3),
	}
}

// Record adds one latency sample. Sub-microsecond samples are rounded up to
// the lowest trackable value so every sample is counted exactly once.
func (h *Histogram) Record(latency time.Duration) {
	us := latency.Microseconds()
	if us > highestTrackableMicros {
		h.overflow++
		return
	}
	if us < lowestTrackableMicros {
		us = lowestTrackableMicros
	}
	_ = h.hist.RecordValue(us)
}

// Quantile returns the latency at the given percentile (e.g. 50, 99, 99.9)
// over the in-range samples. Returns 0 when no samples were recorded.
func (h *Histogram) Quantile(p float64) time.Duration {
	if h.hist.TotalCount() == 0 {
		return 0
	}
	return time.Duration(h.hist.ValueAtQuantile(p)) * time.Microsecond
}

// Count returns the number of in-range samples.
func (h *Histogram) Count() int64 {
	return h.hist.TotalCount()
}

// Overflow returns the number of samples beyond the trackable maximum.
func (h *Histogram) Overflow() int64 {
	return h.overflow
}

// Snapshot returns an independent copy so a finalized run can hand out
// stable statistics while the original is no longer touched.
func (h *Histogram) Snapshot() *Histogram {
	dup := hdrhistogram.Import(h.hist.Export())
	return &Histogram{hist: dup, overflow: h.overflow}
}
