package httpclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/torosent/burstline/internal/config"
	"github.com/torosent/burstline/internal/httpclient"
)

func baseConfig(target string) *config.Config {
	return &config.Config{
		TargetURL:   target,
		Method:      "GET",
		Concurrency: 1,
		Total:       1,
		Timeout:     config.DefaultTimeout,
	}
}

func TestBuildOrderedHeaders(t *testing.T) {
	cfg := baseConfig("http://localhost:8080")
	cfg.Headers = []config.Header{
		{Name: "X-Env", Value: "staging"},
		{Name: "Accept", Value: "application/json"},
		{Name: "X-Env", Value: "override"},
	}

	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Repeated names accumulate in configured order.
	values := req.Header.Values("X-Env")
	if len(values) != 2 || values[0] != "staging" || values[1] != "override" {
		t.Errorf("unexpected X-Env values: %v", values)
	}
	if got := req.Header.Get("Accept"); got != "application/json" {
		t.Errorf("unexpected Accept header: %q", got)
	}
}

func TestBuildBearerToken(t *testing.T) {
	cfg := baseConfig("http://localhost:8080")
	cfg.APIKey = "secret-token"

	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer secret-token" {
		t.Errorf("unexpected Authorization header: %q", got)
	}
}

func TestBuildContentType(t *testing.T) {
	cfg := baseConfig("http://localhost:8080")
	cfg.Method = "POST"
	cfg.Body = `{"query": "test"}`

	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("expected default application/json, got %q", got)
	}
	if req.ContentLength != int64(len(cfg.Body)) {
		t.Errorf("expected content length %d, got %d", len(cfg.Body), req.ContentLength)
	}

	// An explicit Content-Type wins over the default.
	cfg.Headers = []config.Header{{Name: "Content-Type", Value: "application/vnd.api+json"}}
	builder, err = httpclient.NewRequestBuilder(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, err = builder.Build(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Header.Get("Content-Type"); got != "application/vnd.api+json" {
		t.Errorf("explicit Content-Type overridden: %q", got)
	}
}

func TestBuildFreshBodyPerRequest(t *testing.T) {
	cfg := baseConfig("http://localhost:8080")
	cfg.Method = "POST"
	cfg.Body = `{"n": 1}`

	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 2; i++ {
		req, err := builder.Build(context.Background())
		if err != nil {
			t.Fatalf("build %d: %v", i, err)
		}
		data, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if string(data) != cfg.Body {
			t.Errorf("build %d: body %q, want %q", i, data, cfg.Body)
		}
	}
}

func TestNewRequestBuilderRejects(t *testing.T) {
	if _, err := httpclient.NewRequestBuilder(nil); err == nil {
		t.Error("expected error for nil config")
	}

	cfg := baseConfig("")
	if _, err := httpclient.NewRequestBuilder(cfg); err == nil {
		t.Error("expected error for empty target")
	}

	cfg = baseConfig("http://localhost:8080")
	cfg.Headers = []config.Header{{Name: "X-Bad", Value: "a\r\nInjected: yes"}}
	if _, err := httpclient.NewRequestBuilder(cfg); err == nil {
		t.Error("expected error for CRLF header value")
	}
}

func TestClientRoundTrip(t *testing.T) {
	var gotMethod, gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := baseConfig(server.URL)
	cfg.Method = "POST"
	cfg.APIKey = "token"
	cfg.Body = `{"ping": true}`

	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client := httpclient.NewClient(5 * time.Second)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("unexpected status %d", resp.StatusCode)
	}
	if gotMethod != "POST" || gotAuth != "Bearer token" || gotBody != cfg.Body {
		t.Errorf("server saw method=%q auth=%q body=%q", gotMethod, gotAuth, gotBody)
	}
}

func TestNewClientTimeout(t *testing.T) {
	client := httpclient.NewClient(7 * time.Second)
	if client.Timeout != 7*time.Second {
		t.Errorf("expected 7s timeout, got %s", client.Timeout)
	}
}
