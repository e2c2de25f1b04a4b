package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Operation describes one instrumented call.
type Operation struct {
	Component string // Emitting package, e.g. "analysis" (optional)
	Name      string // Operation name, e.g. "analyze" (required)
	Variant   string // Result variant or tier (optional)
}

// SpanName returns the deterministic span name for this operation.
// Format: resumekit.<component>.<name> or resumekit.<name>
func (o Operation) SpanName() string {
	if o.Component != "" {
		return "resumekit." + o.Component + "." + o.Name
	}
	return "resumekit." + o.Name
}

// Validate reports whether o can be used for telemetry.
func (o Operation) Validate() error {
	if o.Name == "" {
		return ErrMissingOperationName
	}
	return nil
}

func (o Operation) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("op.name", o.Name)}
	if o.Component != "" {
		attrs = append(attrs, attribute.String("op.component", o.Component))
	}
	if o.Variant != "" {
		attrs = append(attrs, attribute.String("op.variant", o.Variant))
	}
	return attrs
}

func (o Operation) fields() []Field {
	fields := []Field{F("op", o.Name)}
	if o.Component != "" {
		fields = append(fields, F("component", o.Component))
	}
	if o.Variant != "" {
		fields = append(fields, F("variant", o.Variant))
	}
	return fields
}

// Tracer wraps OpenTelemetry tracing with operation spans.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a client span for op.
	StartSpan(ctx context.Context, op Operation) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return NopTracer()
	}
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, op Operation) (context.Context, trace.Span) {
	attrs := append(op.attributes(), attribute.Bool("op.error", false))
	return t.tracer.Start(ctx, op.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("op.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

// NopTracer returns a Tracer whose spans are never recorded.
func NopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, op Operation) (context.Context, trace.Span) {
	return t.noop.Start(ctx, op.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ error) {
	span.End()
}
