// Package observability wires OpenTelemetry metrics and tracing for
// datafeed.
//
// Setup installs OTLP/HTTP meter and tracer providers when telemetry is
// enabled; otherwise the global no-op providers stay in place and every
// instrument is free to call. PipelineMetrics holds the prefetch pipeline's
// instruments and is nil-safe.
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4318"
//	  interval: 15s
//	  sample_rate: 0.1
package observability
