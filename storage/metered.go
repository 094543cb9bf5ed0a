package storage

import (
	"context"
	"io"
	"time"

	"github.com/kbukum/datafeed/observability"
)

// Metered wraps a Storage and records download latency per object.
type Metered struct {
	Storage
	backend string
	metrics *observability.PipelineMetrics
}

// WithMetrics returns s instrumented with m. A nil m returns s unchanged.
func WithMetrics(s Storage, backend string, m *observability.PipelineMetrics) Storage {
	if m == nil {
		return s
	}
	return &Metered{Storage: s, backend: backend, metrics: m}
}

// Download records the time to open the object.
func (m *Metered) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	start := time.Now()
	rc, err := m.Storage.Download(ctx, path)
	status := "ok"
	switch {
	case IsNotFound(err):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	m.metrics.RecordFetch(ctx, m.backend, status, time.Since(start))
	return rc, err
}
