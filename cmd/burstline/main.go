package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/torosent/burstline/internal/config"
	"github.com/torosent/burstline/internal/httpclient"
	"github.com/torosent/burstline/internal/metrics"
	"github.com/torosent/burstline/internal/output"
	"github.com/torosent/burstline/internal/runner"
	"github.com/torosent/burstline/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

type stderrFailureLogger struct {
	mu sync.Mutex
}

func (l *stderrFailureLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[burstline] request failed: %v\n", err)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		return err
	}

	client := httpclient.NewClient(cfg.Timeout)
	collector := metrics.NewCollector()

	requester := &httpRequester{
		client:    client,
		builder:   builder,
		collector: collector,
		tracing:   tp,
		method:    cfg.Method,
		target:    cfg.TargetURL,
	}

	var wrapped runner.Requester = requester
	if cfg.LogErrors {
		wrapped = runner.WithLogging(wrapped, &stderrFailureLogger{})
	}

	r := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.Total,
		Duration:      cfg.Duration,
		RatePerSecond: cfg.Rate,
		Requester:     wrapped,
	})

	var progress *output.ProgressReporter
	if !cfg.JSONOutput {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
	}

	// Mark the actual start time so elapsed-time and RPS figures measure the
	// run itself, not setup.
	collector.Start()
	result, runErr := r.Run(ctx)
	stats := collector.Stats(result.Duration)

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}

	// An aborted or interrupted run still reports whatever was collected.
	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, stats); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, stats)
	}

	if cfg.OutputFile != "" {
		if err := output.WriteReportFile(cfg.OutputFile, stats); err != nil {
			return err
		}
	}

	return runErr
}
