package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, agg metricdata.Aggregation, key, value string) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected int64 sum, got %T", agg)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if key == "" {
			total += dp.Value
			continue
		}
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestPipelineMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewPipelineMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewPipelineMetrics failed: %v", err)
	}

	ctx := context.Background()
	m.RecordBatch(ctx, 3, 1, 20*time.Millisecond, 5*time.Millisecond, 26*time.Millisecond)
	m.RecordBatch(ctx, 4, 0, 10*time.Millisecond, 5*time.Millisecond, 15*time.Millisecond)
	m.RecordItemError(ctx, "DECODE_ERROR")
	m.RecordEpoch(ctx)
	m.RecordWait(ctx, time.Millisecond)
	m.RecordFetch(ctx, "local", "ok", 2*time.Millisecond)

	data := collect(t, reader)
	if got := sumFor(t, data["datafeed.batches"], "", ""); got != 2 {
		t.Errorf("expected 2 batches, got %d", got)
	}
	if got := sumFor(t, data["datafeed.items"], "outcome", OutcomeFilled); got != 7 {
		t.Errorf("expected 7 filled items, got %d", got)
	}
	if got := sumFor(t, data["datafeed.items"], "outcome", OutcomeSkipped); got != 1 {
		t.Errorf("expected 1 skipped item, got %d", got)
	}
	if got := sumFor(t, data["datafeed.item_errors"], "code", "DECODE_ERROR"); got != 1 {
		t.Errorf("expected 1 decode error, got %d", got)
	}
	if got := sumFor(t, data["datafeed.epochs"], "", ""); got != 1 {
		t.Errorf("expected 1 epoch, got %d", got)
	}
	for _, name := range []string{"datafeed.batch.fill.duration", "datafeed.batch.stage.duration", "datafeed.consumer.wait", "datafeed.fetch.duration"} {
		if _, ok := data[name].(metricdata.Histogram[float64]); !ok {
			t.Errorf("expected histogram %s, got %T", name, data[name])
		}
	}
}

func TestPipelineMetricsNilSafe(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()
	m.RecordBatch(ctx, 1, 1, 0, 0, 0)
	m.RecordItemError(ctx, "DECODE_ERROR")
	m.RecordEpoch(ctx)
	m.RecordWait(ctx, 0)
	m.RecordFetch(ctx, "s3", "error", 0)
}

func TestPipelineMetricsNoopMeter(t *testing.T) {
	m, err := NewPipelineMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewPipelineMetrics failed: %v", err)
	}
	m.RecordBatch(context.Background(), 1, 0, 0, 0, 0)
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		tp.Shutdown(context.Background())
	})
	return sr
}

func TestStartSpanAttributes(t *testing.T) {
	sr := withRecorder(t)

	ctx, span := StartSpan(context.Background(), SpanBatchFill)
	SetSpanAttribute(ctx, AttrBatchSeq, int64(4))
	SetSpanAttribute(ctx, AttrFilled, 3)
	SetSpanAttribute(ctx, AttrRunID, "run-1")
	SetSpanAttribute(ctx, AttrEpoch, uint64(2))
	SetSpanAttribute(ctx, "ignored", struct{}{})
	span.End()

	ended := sr.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != SpanBatchFill {
		t.Errorf("unexpected span name %q", ended[0].Name())
	}
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrBatchSeq].AsInt64() != 4 || attrs[AttrFilled].AsInt64() != 3 {
		t.Errorf("unexpected attributes %v", attrs)
	}
	if attrs[AttrRunID].AsString() != "run-1" || attrs[AttrEpoch].AsInt64() != 2 {
		t.Errorf("unexpected attributes %v", attrs)
	}
	if _, ok := attrs["ignored"]; ok {
		t.Error("unsupported value types should be ignored")
	}
}

func TestSetSpanError(t *testing.T) {
	sr := withRecorder(t)

	ctx, span := StartSpan(context.Background(), SpanPipelineSetup)
	SetSpanError(ctx, fmt.Errorf("empty manifest"))
	span.End()

	s := sr.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status())
	}
	if len(s.Events()) != 1 {
		t.Errorf("expected a recorded error event, got %d", len(s.Events()))
	}
}

func TestSpanHelpersWithoutSpan(t *testing.T) {
	SetSpanAttribute(context.Background(), "k", "v")
	SetSpanError(context.Background(), fmt.Errorf("x"))
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}
	for _, tc := range tests {
		if got := sampler(tc.rate).Description(); got != tc.want {
			t.Errorf("sampler(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}
	if got := sampler(0.5).Description(); got == "AlwaysOnSampler" || got == "AlwaysOffSampler" {
		t.Errorf("expected ratio sampler, got %q", got)
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("datafeed", "1.2.3", "test")
	if err != nil {
		t.Fatalf("newResource failed: %v", err)
	}
	v, ok := res.Set().Value(AttrServiceName)
	if !ok || v.AsString() != "datafeed" {
		t.Errorf("expected service.name=datafeed, got %v", v)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.Interval != 15*time.Second || cfg.SampleRate != 1.0 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false}, "datafeed", "dev", "test")
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown failed: %v", err)
	}
}

func TestSetupEnabled(t *testing.T) {
	prevM, prevT := otel.GetMeterProvider(), otel.GetTracerProvider()
	defer func() {
		otel.SetMeterProvider(prevM)
		otel.SetTracerProvider(prevT)
	}()

	cfg := Config{Enabled: true, Endpoint: "localhost:4318", Insecure: true, Interval: time.Hour, SampleRate: 1}
	shutdown, err := Setup(context.Background(), cfg, "datafeed", "dev", "test")
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if _, ok := otel.GetMeterProvider().(*sdkmetric.MeterProvider); !ok {
		t.Error("expected the sdk meter provider to be installed")
	}
	// No collector is listening; shutdown may report an export error but must return.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = shutdown(ctx)
}
