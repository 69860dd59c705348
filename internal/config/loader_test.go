package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/torosent/burstline/internal/config"
)

func TestLoadFlags(t *testing.T) {
	loader := config.NewLoader()
	cfg, err := loader.Load([]string{
		"--target", "http://localhost:9000/api",
		"--method", "post",
		"--total", "25",
		"-c", "6",
		"-r", "50",
		"--timeout", "10s",
		"--api-key", "secret-token",
		"--header", "X-Env=staging",
		"--header", "Accept=application/json",
		"--header", "X-Env=override",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TargetURL != "http://localhost:9000/api" {
		t.Errorf("unexpected target: %q", cfg.TargetURL)
	}
	if cfg.Method != "POST" {
		t.Errorf("expected method normalized to POST, got %q", cfg.Method)
	}
	if cfg.Total != 25 || cfg.Concurrency != 6 || cfg.Rate != 50 {
		t.Errorf("unexpected load settings: total=%d concurrency=%d rate=%d", cfg.Total, cfg.Concurrency, cfg.Rate)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.Timeout)
	}
	if cfg.APIKey != "secret-token" {
		t.Errorf("unexpected api key: %q", cfg.APIKey)
	}

	// Repeated headers keep their flag order, duplicates included.
	want := []config.Header{
		{Name: "X-Env", Value: "staging"},
		{Name: "Accept", Value: "application/json"},
		{Name: "X-Env", Value: "override"},
	}
	if len(cfg.Headers) != len(want) {
		t.Fatalf("expected %d headers, got %v", len(want), cfg.Headers)
	}
	for i, h := range want {
		if cfg.Headers[i] != h {
			t.Errorf("headers[%d] = %+v, want %+v", i, cfg.Headers[i], h)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--target", "http://localhost", "--total", "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Method != "GET" {
		t.Errorf("expected default method GET, got %q", cfg.Method)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("expected default concurrency 1, got %d", cfg.Concurrency)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("expected default timeout %s, got %s", config.DefaultTimeout, cfg.Timeout)
	}
	if cfg.Tracing.Protocol != "grpc" || cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("unexpected tracing defaults: %+v", cfg.Tracing)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `target: http://localhost:8080/search
method: post
concurrency: 3
duration: 5s
timeout: 2s
headers:
  - X-From-File=yes
  - Accept=application/json
tracing:
  endpoint: localhost:4317
  service_name: loadtest
  sample_rate: 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TargetURL != "http://localhost:8080/search" {
		t.Errorf("unexpected target: %q", cfg.TargetURL)
	}
	if cfg.Method != "POST" {
		t.Errorf("expected POST, got %q", cfg.Method)
	}
	if cfg.Concurrency != 3 || cfg.Duration != 5*time.Second || cfg.Timeout != 2*time.Second {
		t.Errorf("unexpected settings: concurrency=%d duration=%s timeout=%s", cfg.Concurrency, cfg.Duration, cfg.Timeout)
	}
	if len(cfg.Headers) != 2 || cfg.Headers[0].Name != "X-From-File" {
		t.Errorf("unexpected headers: %v", cfg.Headers)
	}
	if cfg.Tracing.Endpoint != "localhost:4317" || cfg.Tracing.ServiceName != "loadtest" || cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("unexpected tracing config: %+v", cfg.Tracing)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `target: http://localhost:8080
total: 10
concurrency: 2
headers:
  - X-From-File=yes
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{
		"--config", path,
		"-c", "8",
		"--header", "X-From-Flag=yes",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Concurrency != 8 {
		t.Errorf("expected flag to override concurrency, got %d", cfg.Concurrency)
	}
	if cfg.Total != 10 {
		t.Errorf("expected total from file, got %d", cfg.Total)
	}
	// Flag headers are appended after file headers.
	if len(cfg.Headers) != 2 || cfg.Headers[0].Name != "X-From-File" || cfg.Headers[1].Name != "X-From-Flag" {
		t.Errorf("unexpected header merge: %v", cfg.Headers)
	}
}

func TestLoadHelp(t *testing.T) {
	loader := config.NewLoader()
	if _, err := loader.Load([]string{"--help"}); !errors.Is(err, config.ErrHelpRequested) {
		t.Errorf("expected ErrHelpRequested for --help, got %v", err)
	}
	if _, err := loader.Load(nil); !errors.Is(err, config.ErrHelpRequested) {
		t.Errorf("expected ErrHelpRequested for empty args, got %v", err)
	}
}

func TestLoadBadHeaderFlag(t *testing.T) {
	loader := config.NewLoader()
	if _, err := loader.Load([]string{"--target", "http://localhost", "--total", "1", "--header", "not-a-pair"}); err == nil {
		t.Error("expected error for malformed header flag")
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	loader := config.NewLoader()
	if _, err := loader.Load([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}); err == nil {
		t.Error("expected error for missing config file")
	}
}
