package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/torosent/burstline/internal/metrics"
)

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, stats metrics.Stats) {
	fmt.Fprintln(w, "\n--- Load Test Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", stats.RunID)
	fmt.Fprintf(w, "Total Requests:    %d\n", stats.Total)
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", stats.RequestsPerSec)

	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanLatency)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Latency)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Latency)
	fmt.Fprintf(w, "  P95:             %s\n", stats.P95Latency)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Latency)
	fmt.Fprintf(w, "  P99.9:           %s\n", stats.P999Latency)
	if stats.OverflowCount > 0 {
		fmt.Fprintf(w, "  Beyond max:      %d samples\n", stats.OverflowCount)
	}

	fmt.Fprintln(w, "\nStatus Classes:")
	fmt.Fprintf(w, "  2xx:             %d\n", stats.ClassCounts.C2xx)
	fmt.Fprintf(w, "  3xx:             %d\n", stats.ClassCounts.C3xx)
	fmt.Fprintf(w, "  4xx:             %d\n", stats.ClassCounts.C4xx)
	fmt.Fprintf(w, "  5xx:             %d\n", stats.ClassCounts.C5xx)
	if stats.ClassCounts.Other > 0 {
		fmt.Fprintf(w, "  other:           %d\n", stats.ClassCounts.Other)
	}

	if len(stats.StatusCounts) > 0 {
		fmt.Fprintln(w, "\nStatus Codes:")
		codes := make([]int, 0, len(stats.StatusCounts))
		for code := range stats.StatusCounts {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Fprintf(w, "  %d:             %d\n", code, stats.StatusCounts[code])
		}
	}

	if len(stats.ErrorCounts) > 0 {
		fmt.Fprintln(w, "\nTransport Errors:")
		kinds := make([]string, 0, len(stats.ErrorCounts))
		for kind := range stats.ErrorCounts {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(w, "  %-16s %d\n", kind+":", stats.ErrorCounts[kind])
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, stats metrics.Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
