package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumWhere totals the data points of an int64 counter whose attributes
// contain key=value. An empty key matches every point.
func sumWhere(t *testing.T, rm metricdata.ResourceMetrics, name string, key attribute.Key, value string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if key == "" {
			total += dp.Value
			continue
		}
		if v, ok := dp.Attributes.Value(key); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestMetrics_RecordCall(t *testing.T) {
	m, reader := newTestMetrics(t)
	op := Operation{Component: "analysis", Name: "analyze", Variant: "basic"}

	m.RecordCall(context.Background(), op, 100*time.Millisecond, nil)
	m.RecordCall(context.Background(), op, 50*time.Millisecond, errors.New("boom"))

	rm := collect(t, reader)
	if got := sumWhere(t, rm, MetricCallTotal, "", ""); got != 2 {
		t.Errorf("%s = %d, want 2", MetricCallTotal, got)
	}
	if got := sumWhere(t, rm, MetricCallErrors, "op.variant", "basic"); got != 1 {
		t.Errorf("%s = %d, want 1", MetricCallErrors, got)
	}

	hist := findMetric(rm, MetricCallDuration)
	if hist == nil {
		t.Fatalf("%s not found", MetricCallDuration)
	}
	h, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok || len(h.DataPoints) == 0 {
		t.Fatalf("expected histogram data points, got %T", hist.Data)
	}
	if h.DataPoints[0].Count != 2 || h.DataPoints[0].Sum != 150 {
		t.Errorf("histogram count=%d sum=%v, want 2 and 150", h.DataPoints[0].Count, h.DataPoints[0].Sum)
	}
}

func TestMetrics_ErrorCounterOnSuccess(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordCall(context.Background(), Operation{Name: "analyze"}, time.Millisecond, nil)

	if got := sumWhere(t, collect(t, reader), MetricCallErrors, "", ""); got != 0 {
		t.Errorf("%s = %d, want 0", MetricCallErrors, got)
	}
}

func TestMetrics_CacheAndCodec(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCacheLookup(ctx, "premium", true)
	m.RecordCacheLookup(ctx, "premium", false)
	m.RecordCacheLookup(ctx, "basic", false)
	m.RecordEviction(ctx, "capacity")
	m.RecordEviction(ctx, "expired")
	m.RecordDecode(ctx, "decoded")
	m.RecordDecode(ctx, "fallback")
	m.RecordDecode(ctx, "fallback")

	rm := collect(t, reader)
	if got := sumWhere(t, rm, MetricCacheLookups, "cache.result", "miss"); got != 2 {
		t.Errorf("misses = %d, want 2", got)
	}
	if got := sumWhere(t, rm, MetricCacheLookups, "cache.result", "hit"); got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}
	if got := sumWhere(t, rm, MetricCacheEvictions, "cache.reason", "capacity"); got != 1 {
		t.Errorf("capacity evictions = %d, want 1", got)
	}
	if got := sumWhere(t, rm, MetricCodecDecodes, "codec.outcome", "fallback"); got != 2 {
		t.Errorf("fallback decodes = %d, want 2", got)
	}
}

func TestMetrics_Concurrent(t *testing.T) {
	m, reader := newTestMetrics(t)
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				m.RecordCall(context.Background(), Operation{Name: "analyze"}, time.Millisecond, nil)
			}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	if got := sumWhere(t, collect(t, reader), MetricCallTotal, "", ""); got != 1000 {
		t.Errorf("%s = %d, want 1000", MetricCallTotal, got)
	}
}

func TestNopMetrics_NoPanic(t *testing.T) {
	m := NopMetrics()
	ctx := context.Background()
	m.RecordCall(ctx, Operation{Name: "noop"}, time.Millisecond, errors.New("x"))
	m.RecordCacheLookup(ctx, "basic", true)
	m.RecordEviction(ctx, "capacity")
	m.RecordDecode(ctx, "decoded")
}
