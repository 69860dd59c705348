package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds each request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Header is a single name/value pair. Headers keep their configured order
// and may repeat; repeated names merge per standard HTTP multi-value
// semantics.
type Header struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

// TracingConfig controls optional OTLP span export.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether span export is configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers are injected into
// outgoing requests.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

// Config holds the immutable parameters of one run. It is read-only once the
// run starts.
type Config struct {
	TargetURL   string        `mapstructure:"target"`
	Method      string        `mapstructure:"method"`
	Headers     []Header      `mapstructure:"headers"`
	APIKey      string        `mapstructure:"api_key"`
	Body        string        `mapstructure:"body"`
	BodyFile    string        `mapstructure:"body_file"`
	Concurrency int           `mapstructure:"concurrency"`
	Rate        int           `mapstructure:"rate"`
	Duration    time.Duration `mapstructure:"duration"`
	Total       int           `mapstructure:"total"`
	Timeout     time.Duration `mapstructure:"timeout"`
	JSONOutput  bool          `mapstructure:"json_output"`
	LogErrors   bool          `mapstructure:"log_errors"`
	OutputFile  string        `mapstructure:"output_file"`
	ConfigFile  string        `mapstructure:"-"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

var allowedMethods = map[string]struct{}{
	"GET": {}, "POST": {}, "PUT": {}, "PATCH": {}, "DELETE": {}, "HEAD": {}, "OPTIONS": {},
}

// ValidationError aggregates every configuration issue found.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks the configuration before any request is issued. A run with
// an invalid configuration never starts.
func (c Config) Validate() error {
	var issues []string

	target := strings.TrimSpace(c.TargetURL)
	if target == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	} else if u, err := url.Parse(target); err != nil {
		issues = append(issues, fmt.Sprintf("target is not a valid URL: %v", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		issues = append(issues, fmt.Sprintf("target must be an absolute http or https URL, got scheme %q", u.Scheme))
	} else if u.Host == "" {
		issues = append(issues, "target must include a host")
	}

	method := strings.ToUpper(strings.TrimSpace(c.Method))
	if _, ok := allowedMethods[method]; !ok {
		issues = append(issues, fmt.Sprintf("method %q is not supported", c.Method))
	}

	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Total < 0 {
		issues = append(issues, "total must be >= 0")
	}
	if c.Duration < 0 {
		issues = append(issues, "duration must be >= 0")
	}
	if (c.Total > 0) == (c.Duration > 0) {
		issues = append(issues, "exactly one of total or duration must be set")
	}
	if c.Timeout <= 0 {
		issues = append(issues, "timeout must be > 0")
	}

	if strings.TrimSpace(c.Body) != "" && strings.TrimSpace(c.BodyFile) != "" {
		issues = append(issues, "body and bodyFile are mutually exclusive")
	}
	if body := strings.TrimSpace(c.Body); body != "" && !gjson.Valid(body) {
		issues = append(issues, "body is not valid JSON")
	}

	for idx, h := range c.Headers {
		name := strings.TrimSpace(h.Name)
		if name == "" {
			issues = append(issues, fmt.Sprintf("headers[%d]: name cannot be empty", idx))
			continue
		}
		if strings.ContainsAny(name, "\r\n") || strings.ContainsAny(h.Value, "\r\n") {
			issues = append(issues, fmt.Sprintf("headers[%d]: name and value cannot contain newlines", idx))
		}
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	if t.SampleRate < 0 || t.SampleRate > 1.0 {
		issues = append(issues, "tracing: sample_rate must be between 0.0 and 1.0")
	}
	if protocol := strings.ToLower(strings.TrimSpace(t.Protocol)); protocol != "" && protocol != "grpc" && protocol != "http" {
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	return issues
}
