package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/datafeed/logger"
)

const meterName = "github.com/kbukum/datafeed"

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The caller shuts it down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns the datafeed meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(meterName)
}

// Item outcomes recorded on datafeed.items.
const (
	OutcomeFilled  = "filled"
	OutcomeSkipped = "skipped"
)

// PipelineMetrics holds the prefetch pipeline's instruments. A nil
// *PipelineMetrics records nothing.
type PipelineMetrics struct {
	batches       metric.Int64Counter
	items         metric.Int64Counter
	itemErrors    metric.Int64Counter
	epochs        metric.Int64Counter
	fillDuration  metric.Float64Histogram
	stageDuration metric.Float64Histogram
	waitDuration  metric.Float64Histogram
	fetchDuration metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.batches, err = meter.Int64Counter("datafeed.batches",
		metric.WithDescription("Batches published to the consumer"),
	); err != nil {
		return nil, fmt.Errorf("creating datafeed.batches counter: %w", err)
	}
	if m.items, err = meter.Int64Counter("datafeed.items",
		metric.WithDescription("Examples consumed by the worker, by outcome"),
	); err != nil {
		return nil, fmt.Errorf("creating datafeed.items counter: %w", err)
	}
	if m.itemErrors, err = meter.Int64Counter("datafeed.item_errors",
		metric.WithDescription("Recoverable per-item errors by code"),
	); err != nil {
		return nil, fmt.Errorf("creating datafeed.item_errors counter: %w", err)
	}
	if m.epochs, err = meter.Int64Counter("datafeed.epochs",
		metric.WithDescription("Completed passes over the example index"),
	); err != nil {
		return nil, fmt.Errorf("creating datafeed.epochs counter: %w", err)
	}
	if m.fillDuration, err = meter.Float64Histogram("datafeed.batch.fill.duration",
		metric.WithDescription("Wall time to fill one batch"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating datafeed.batch.fill.duration histogram: %w", err)
	}
	if m.stageDuration, err = meter.Float64Histogram("datafeed.batch.stage.duration",
		metric.WithDescription("Per-batch time spent reading or transforming"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating datafeed.batch.stage.duration histogram: %w", err)
	}
	if m.waitDuration, err = meter.Float64Histogram("datafeed.consumer.wait",
		metric.WithDescription("Time the consumer blocked waiting for a ready batch"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating datafeed.consumer.wait histogram: %w", err)
	}
	if m.fetchDuration, err = meter.Float64Histogram("datafeed.fetch.duration",
		metric.WithDescription("Storage read latency per object"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating datafeed.fetch.duration histogram: %w", err)
	}
	return m, nil
}

// RecordBatch records one published batch with its fill split.
func (m *PipelineMetrics) RecordBatch(ctx context.Context, filled, skipped int, read, transform, total time.Duration) {
	if m == nil {
		return
	}
	m.batches.Add(ctx, 1)
	m.items.Add(ctx, int64(filled), metric.WithAttributes(attribute.String("outcome", OutcomeFilled)))
	if skipped > 0 {
		m.items.Add(ctx, int64(skipped), metric.WithAttributes(attribute.String("outcome", OutcomeSkipped)))
	}
	m.fillDuration.Record(ctx, total.Seconds())
	m.stageDuration.Record(ctx, read.Seconds(), metric.WithAttributes(attribute.String("stage", "read")))
	m.stageDuration.Record(ctx, transform.Seconds(), metric.WithAttributes(attribute.String("stage", "transform")))
}

// RecordItemError records a recoverable per-item error.
func (m *PipelineMetrics) RecordItemError(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.itemErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// RecordEpoch records a wrap of the example index.
func (m *PipelineMetrics) RecordEpoch(ctx context.Context) {
	if m == nil {
		return
	}
	m.epochs.Add(ctx, 1)
}

// RecordWait records how long the consumer blocked in NextBatch.
func (m *PipelineMetrics) RecordWait(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.waitDuration.Record(ctx, d.Seconds())
}

// RecordFetch records one storage read.
func (m *PipelineMetrics) RecordFetch(ctx context.Context, backend, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("status", status),
	))
}
