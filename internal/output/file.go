package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"github.com/torosent/burstline/internal/metrics"
)

// WriteReportFile writes the JSON report to path. A sidecar flock serializes
// writers so concurrent runs pointed at the same file cannot interleave.
func WriteReportFile(path string, stats metrics.Stats) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock report file: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}
