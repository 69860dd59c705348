package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/torosent/burstline/internal/metrics"
)

func TestRunHelp(t *testing.T) {
	if err := run([]string{"--help"}); err != nil {
		t.Errorf("expected nil for --help, got %v", err)
	}
	if err := run(nil); err != nil {
		t.Errorf("expected nil for no args, got %v", err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	err := run([]string{"--target", "ftp://example.com", "--total", "1"})
	if err == nil || !strings.Contains(err.Error(), "http or https") {
		t.Errorf("expected scheme validation error, got %v", err)
	}
}

func TestRunRejectsModeConflict(t *testing.T) {
	err := run([]string{"--target", "http://localhost", "--total", "10", "--duration", "5s"})
	if err == nil || !strings.Contains(err.Error(), "exactly one of total or duration") {
		t.Errorf("expected mode conflict error, got %v", err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reportPath := filepath.Join(t.TempDir(), "report.json")
	err := run([]string{
		"--target", server.URL,
		"--total", "5",
		"-c", "2",
		"--json-output",
		"--output-file", reportPath,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report file: %v", err)
	}
	var stats metrics.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatalf("report file is not valid JSON: %v", err)
	}
	if stats.Total != 5 || stats.StatusCounts[200] != 5 {
		t.Errorf("unexpected report: %+v", stats)
	}
}
