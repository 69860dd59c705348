// Package metrics provides concurrency-safe aggregation of per-request
// outcomes: exact status and error counts plus an HDR latency histogram
// used for percentile extraction.
package metrics
