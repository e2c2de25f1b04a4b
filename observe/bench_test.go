package observe

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func BenchmarkLogger_Info(b *testing.B) {
	logger := NewLoggerWithWriter(LoggingConfig{Level: "info"}, io.Discard)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info(ctx, "call completed", F("op", "analyze"), F("duration_ms", 12))
	}
}

func BenchmarkLogger_Redacted(b *testing.B) {
	logger := NewLoggerWithWriter(LoggingConfig{Level: "info"}, io.Discard)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info(ctx, "m", F("token", "abc"), F("passphrase", "p"))
	}
}

func BenchmarkLogger_LevelFiltered(b *testing.B) {
	logger := NewLoggerWithWriter(LoggingConfig{Level: "error"}, io.Discard)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug(ctx, "filtered", F("k", "v"))
	}
}

func BenchmarkTracer_StartEndSpan(b *testing.B) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	tr := NewTracer(tp.Tracer("bench"))
	op := Operation{Component: "analysis", Name: "analyze", Variant: "basic"}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, span := tr.StartSpan(ctx, op)
		tr.EndSpan(span, nil)
	}
}

func BenchmarkMetrics_RecordCall(b *testing.B) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	defer func() { _ = mp.Shutdown(context.Background()) }()
	m, err := NewMetrics(mp.Meter("bench"))
	if err != nil {
		b.Fatal(err)
	}
	op := Operation{Name: "analyze"}
	ctx := context.Background()
	errBoom := errors.New("boom")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var err error
		if i%10 == 0 {
			err = errBoom
		}
		m.RecordCall(ctx, op, 5*time.Millisecond, err)
	}
}

func BenchmarkMiddleware_Wrap(b *testing.B) {
	mw := NewMiddleware(nil, nil, NewLoggerWithWriter(LoggingConfig{Level: "info"}, io.Discard))
	call := mw.Wrap(func(context.Context, Operation) error { return nil })
	op := Operation{Component: "analysis", Name: "analyze"}
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = call(ctx, op)
		}
	})
}

func BenchmarkConfig_Validate(b *testing.B) {
	cfg := Config{
		ServiceName: "resumekit",
		Tracing:     TracingConfig{Enabled: true, Exporter: "otlp", SamplePct: 0.1},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
		Logging:     LoggingConfig{Enabled: true, Level: "info", Format: "json"},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cfg.Validate()
	}
}
