package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/torosent/burstline/internal/config"
)

// BodySource produces a fresh reader for the request payload on every
// request. Payload bytes are resolved once, up front, so workers never touch
// the filesystem mid-run.
type BodySource interface {
	NewReader() (io.ReadCloser, error)
	ContentLength() (int64, bool)
}

func NewBodySource(cfg *config.Config) (BodySource, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Body != "" && strings.TrimSpace(cfg.BodyFile) != "" {
		return nil, errors.New("body and body file cannot both be provided")
	}

	if cfg.Body != "" {
		if !gjson.Valid(cfg.Body) {
			return nil, errors.New("inline body is not valid JSON")
		}
		return &bytesBodySource{data: []byte(cfg.Body)}, nil
	}

	bodyFile := strings.TrimSpace(cfg.BodyFile)
	if bodyFile != "" {
		data, err := os.ReadFile(bodyFile)
		if err != nil {
			return nil, fmt.Errorf("body file: %w", err)
		}
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("body file %q is not valid JSON", bodyFile)
		}
		return &bytesBodySource{data: data}, nil
	}

	return emptyBodySource{}, nil
}

type bytesBodySource struct {
	data []byte
}

func (s *bytesBodySource) NewReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *bytesBodySource) ContentLength() (int64, bool) {
	return int64(len(s.data)), true
}

type emptyBodySource struct{}

func (emptyBodySource) NewReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (emptyBodySource) ContentLength() (int64, bool) {
	return 0, true
}
