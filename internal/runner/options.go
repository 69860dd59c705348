package runner

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// Requester abstracts executing a single request operation. Implementations
// record their own outcome and return an error only for transport-level
// failures.
type Requester interface {
	Do(ctx context.Context) error
}

// ErrModeConflict is returned when the termination mode is ambiguous: a run
// must set exactly one of TotalRequests or Duration.
var ErrModeConflict = errors.New("exactly one of total requests or duration must be set")

// ErrNoRequester is returned when Options carry no Requester.
var ErrNoRequester = errors.New("requester is required")

// Options configure the Runner.
type Options struct {
	Concurrency   int           // number of worker goroutines
	TotalRequests int           // count mode: stop after exactly this many dispatches
	Duration      time.Duration // duration mode: stop dispatching after this long
	RatePerSecond int           // requests per second pacing (0 means unlimited)
	Requester     Requester     // request executor (required)

	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalRequests < 0 {
		o.TotalRequests = 0
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

func (o Options) validate() error {
	if o.Requester == nil {
		return ErrNoRequester
	}
	if (o.TotalRequests > 0) == (o.Duration > 0) {
		return ErrModeConflict
	}
	return nil
}
