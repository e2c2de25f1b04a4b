// Package observe provides tracing, metrics and structured logging for the
// resumekit client core.
//
// Remote calls are described by an Operation and wrapped by Middleware, which
// opens a span, records call metrics and writes one log line per call. The
// cache and the identifier codec report through Metrics without importing
// OpenTelemetry themselves; see CacheHooks and CodecHook.
//
// Logging is backed by zerolog. Field keys that may carry credentials or key
// material are written as [REDACTED].
package observe
