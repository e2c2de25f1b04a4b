package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricCallTotal      = "resumekit.call.total"
	MetricCallErrors     = "resumekit.call.errors"
	MetricCallDuration   = "resumekit.call.duration_ms"
	MetricCacheLookups   = "resumekit.cache.lookups"
	MetricCacheEvictions = "resumekit.cache.evictions"
	MetricCodecDecodes   = "resumekit.codec.decodes"
)

// Metrics records client-core metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records a remote call with duration and error status.
	RecordCall(ctx context.Context, op Operation, duration time.Duration, err error)

	// RecordCacheLookup records a cache hit or miss for variant.
	RecordCacheLookup(ctx context.Context, variant string, hit bool)

	// RecordEviction records an entry leaving the cache for reason.
	RecordEviction(ctx context.Context, reason string)

	// RecordDecode records an identifier decode outcome.
	RecordDecode(ctx context.Context, outcome string)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	lookups      metric.Int64Counter
	evictions    metric.Int64Counter
	decodes      metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	if m.totalCount, err = meter.Int64Counter(MetricCallTotal,
		metric.WithDescription("Total number of remote calls"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}
	if m.errorCount, err = meter.Int64Counter(MetricCallErrors,
		metric.WithDescription("Total number of failed remote calls"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if m.durationHist, err = meter.Float64Histogram(MetricCallDuration,
		metric.WithDescription("Remote call duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.lookups, err = meter.Int64Counter(MetricCacheLookups,
		metric.WithDescription("Result cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}
	if m.evictions, err = meter.Int64Counter(MetricCacheEvictions,
		metric.WithDescription("Result cache removals by reason"),
		metric.WithUnit("{entry}"),
	); err != nil {
		return nil, err
	}
	if m.decodes, err = meter.Int64Counter(MetricCodecDecodes,
		metric.WithDescription("Identifier decodes by outcome"),
		metric.WithUnit("{decode}"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *metricsImpl) RecordCall(ctx context.Context, op Operation, duration time.Duration, err error) {
	opt := metric.WithAttributes(op.attributes()...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, variant string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.variant", variant),
		attribute.String("cache.result", result),
	))
}

func (m *metricsImpl) RecordEviction(ctx context.Context, reason string) {
	m.evictions.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.reason", reason)))
}

func (m *metricsImpl) RecordDecode(ctx context.Context, outcome string) {
	m.decodes.Add(ctx, 1, metric.WithAttributes(attribute.String("codec.outcome", outcome)))
}

type noopMetrics struct{}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordCall(context.Context, Operation, time.Duration, error) {}
func (noopMetrics) RecordCacheLookup(context.Context, string, bool)             {}
func (noopMetrics) RecordEviction(context.Context, string)                      {}
func (noopMetrics) RecordDecode(context.Context, string)                        {}
