// Package observe provides application-wide observability primitives for the
// inference core: OpenTelemetry metrics, distributed tracing, structured
// logging, and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all engine metrics.
const meterName = "github.com/indiandesillm/inference-core"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// TurnDuration tracks end-to-end turn processing latency. Use with
	// attributes:
	//   attribute.String("intent", ...), attribute.String("skeleton", ...)
	TurnDuration metric.Float64Histogram

	// Turns counts processed turns. Use with attributes:
	//   attribute.String("intent", ...), attribute.String("skeleton", ...)
	Turns metric.Int64Counter

	// GuardrailOverrides counts guardrail text overrides. Use with attributes:
	//   attribute.String("category", ...), attribute.String("severity", ...)
	GuardrailOverrides metric.Int64Counter

	// Fallbacks counts fallback activations. Use with attributes:
	//   attribute.String("reason", ...), attribute.String("level", ...)
	Fallbacks metric.Int64Counter

	// ActiveSessions tracks the number of live voice sessions.
	ActiveSessions metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds). The
// pipeline has no blocking operations, so the interesting range is small.
var latencyBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.TurnDuration, err = m.Float64Histogram("inference_core.turn.duration",
		metric.WithDescription("End-to-end turn processing latency by intent and skeleton."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Turns, err = m.Int64Counter("inference_core.turns",
		metric.WithDescription("Total processed turns by intent and skeleton."),
	); err != nil {
		return nil, err
	}
	if met.GuardrailOverrides, err = m.Int64Counter("inference_core.guardrail.overrides",
		metric.WithDescription("Total guardrail text overrides by category and severity."),
	); err != nil {
		return nil, err
	}
	if met.Fallbacks, err = m.Int64Counter("inference_core.fallbacks",
		metric.WithDescription("Total fallback activations by reason and level."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("inference_core.active_sessions",
		metric.WithDescription("Number of live voice sessions."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("inference_core.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordTurn is a convenience method that records one processed turn: the
// counter increment plus the latency sample.
func (m *Metrics) RecordTurn(ctx context.Context, intent, skeleton string, seconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("skeleton", skeleton),
	)
	m.Turns.Add(ctx, 1, attrs)
	m.TurnDuration.Record(ctx, seconds, attrs)
}

// RecordGuardrailOverride records a guardrail override counter increment.
func (m *Metrics) RecordGuardrailOverride(ctx context.Context, category, severity string) {
	m.GuardrailOverrides.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("category", category),
			attribute.String("severity", severity),
		),
	)
}

// RecordFallback records a fallback activation counter increment.
func (m *Metrics) RecordFallback(ctx context.Context, reason, level string) {
	m.Fallbacks.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("reason", reason),
			attribute.String("level", level),
		),
	)
}
