package observe

import (
	"context"
	"time"
)

// CallFunc is the signature Middleware wraps.
type CallFunc func(ctx context.Context, op Operation) error

// Middleware wraps remote calls with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a function safe for concurrent use.
//   - Context: the span context is propagated to the wrapped call.
//   - Errors: errors from the wrapped call are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
	now     func() time.Time
}

// NewMiddleware creates a Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger, now: time.Now}
}

// Metrics returns the metrics sink used by m.
func (m *Middleware) Metrics() Metrics { return m.metrics }

// Logger returns the logger used by m.
func (m *Middleware) Logger() Logger { return m.logger }

// Wrap wraps fn with a span, call metrics and one log line per call.
func (m *Middleware) Wrap(fn CallFunc) CallFunc {
	return func(ctx context.Context, op Operation) error {
		ctx, span := m.tracer.StartSpan(ctx, op)
		start := m.now()

		err := fn(ctx, op)

		duration := m.now().Sub(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordCall(ctx, op, duration, err)

		fields := append(op.fields(), F("duration_ms", duration.Milliseconds()))
		if err != nil {
			m.logger.Error(ctx, "call failed", append(fields, F("error", err))...)
		} else {
			m.logger.Info(ctx, "call completed", fields...)
		}
		return err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
