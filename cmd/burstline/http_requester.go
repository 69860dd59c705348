package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/torosent/burstline/internal/httpclient"
	"github.com/torosent/burstline/internal/metrics"
	"github.com/torosent/burstline/internal/tracing"
)

// httpRequester implements runner.Requester. It issues one request per Do
// call, measures latency, classifies the outcome, and records it.
type httpRequester struct {
	client    *http.Client
	builder   *httpclient.RequestBuilder
	collector *metrics.Collector
	tracing   *tracing.Provider
	method    string
	target    string
}

// Do executes a single HTTP request attempt. Latency is measured from
// request dispatch through the full response body read, so percentiles stay
// comparable for large payloads. A transported response is never an error,
// regardless of status code; only transport failures return one.
func (r *httpRequester) Do(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartRequestSpan(ctx, r.tracing.Tracer(), r.method, r.target)

	start := time.Now()
	req, err := r.builder.Build(ctx)
	if err != nil {
		r.collector.Record(metrics.Outcome{Latency: time.Since(start), Kind: metrics.ErrorProtocol})
		tracing.EndSpan(span, err)
		return err
	}
	if r.tracing.ShouldPropagate() {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		latency := time.Since(start)
		kind := metrics.Classify(err)
		r.collector.Record(metrics.Outcome{Latency: latency, Kind: kind})
		tracing.EndSpan(span, err, attribute.String("burstline.error_kind", string(kind)))
		return err
	}

	_, copyErr := io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	latency := time.Since(start)

	if copyErr != nil {
		// The body never arrived in full, so no status is counted for this
		// attempt; the failure keeps the outcome totals consistent.
		kind := metrics.Classify(copyErr)
		r.collector.Record(metrics.Outcome{Latency: latency, Kind: kind})
		tracing.EndSpan(span, copyErr, attribute.String("burstline.error_kind", string(kind)))
		return copyErr
	}

	r.collector.Record(metrics.Outcome{StatusCode: resp.StatusCode, Latency: latency})
	tracing.EndSpan(span, nil, attribute.Int("http.response.status_code", resp.StatusCode))
	return nil
}
