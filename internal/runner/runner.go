package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Result captures execution summary.
type Result struct {
	Total    int64
	Errors   int64
	Duration time.Duration
}

// Runner drives a fixed worker pool against a Requester.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Run blocks until the stop condition fires and every worker has exited.
// Workers never start a request after the stop condition; requests already in
// flight run to completion under their own per-request timeout and are still
// recorded, so total run time is bounded by the stop condition plus at most
// one request timeout.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if err := r.opt.validate(); err != nil {
		return Result{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	var total int64
	var errs int64

	// The dispatch context bounds only the scheduler. Requests execute under
	// the caller's context so the duration cutoff never preempts an
	// in-flight call.
	dispatchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if r.opt.Duration > 0 {
		deadlineCtx, deadlineCancel := context.WithTimeout(dispatchCtx, r.opt.Duration)
		dispatchCtx = deadlineCtx
		defer deadlineCancel()
	}

	limiter := r.opt.LimiterFactory(r.opt.RatePerSecond)

	// Unbuffered: a permit is handed over only when a worker is ready, so
	// closing the channel stops dispatch instantly with no queued backlog.
	permits := make(chan struct{})

	// Scheduler: serializes slot claims so the count-mode target is hit
	// exactly, with no overshoot across workers.
	go func() {
		defer close(permits)
		for {
			if dispatchCtx.Err() != nil {
				return
			}
			current := atomic.LoadInt64(&total)
			if r.opt.TotalRequests > 0 && current >= int64(r.opt.TotalRequests) {
				return
			}
			if err := limiter.Wait(dispatchCtx); err != nil {
				return
			}
			// Claim the dispatch slot before releasing the permit so
			// workers only execute allocated slots.
			atomic.AddInt64(&total, 1)
			select {
			case permits <- struct{}{}:
			case <-dispatchCtx.Done():
				// Slot claimed but never dispatched.
				atomic.AddInt64(&total, -1)
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(r.opt.Concurrency)
	for i := 0; i < r.opt.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for range permits {
				if err := r.opt.Requester.Do(ctx); err != nil {
					atomic.AddInt64(&errs, 1)
				}
			}
		}()
	}
	wg.Wait()

	return Result{
		Total:    atomic.LoadInt64(&total),
		Errors:   atomic.LoadInt64(&errs),
		Duration: time.Since(start),
	}, nil
}
