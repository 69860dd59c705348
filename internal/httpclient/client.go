package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/torosent/burstline/internal/config"
)

// RequestBuilder constructs one http.Request per attempt from the immutable
// run configuration.
type RequestBuilder struct {
	method  string
	target  string
	headers []config.Header
	bearer  string
	body    BodySource
	hasBody bool
}

func NewRequestBuilder(cfg *config.Config) (*RequestBuilder, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	target := strings.TrimSpace(cfg.TargetURL)
	if target == "" {
		return nil, errors.New("target URL is required")
	}

	method := strings.TrimSpace(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	bodySource, err := NewBodySource(cfg)
	if err != nil {
		return nil, err
	}

	headers := make([]config.Header, 0, len(cfg.Headers))
	for _, h := range cfg.Headers {
		name := strings.TrimSpace(h.Name)
		if name == "" {
			return nil, fmt.Errorf("invalid header key %q", h.Name)
		}
		if strings.ContainsAny(name, "\r\n") || strings.ContainsAny(h.Value, "\r\n") {
			return nil, fmt.Errorf("invalid header %q", name)
		}
		headers = append(headers, config.Header{Name: name, Value: h.Value})
	}

	length, _ := bodySource.ContentLength()

	return &RequestBuilder{
		method:  method,
		target:  target,
		headers: headers,
		bearer:  strings.TrimSpace(cfg.APIKey),
		body:    bodySource,
		hasBody: length > 0,
	}, nil
}

// Build constructs a request. Headers are applied in configured order with
// duplicates preserved via Add; a configured API key becomes a single
// Authorization bearer header.
func (b *RequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	if b == nil {
		return nil, errors.New("builder cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reader, err := b.body.NewReader()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, b.method, b.target, reader)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	for _, h := range b.headers {
		req.Header.Add(h.Name, h.Value)
	}
	if b.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+b.bearer)
	}
	if b.hasBody && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if length, ok := b.body.ContentLength(); ok {
		req.ContentLength = length
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return b.body.NewReader()
	}

	return req, nil
}

// NewClient returns an http.Client whose timeout bounds each request from
// dispatch through the end of the body read.
func NewClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
