package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped logging fields.
type LogContext struct {
	TraceID    string // OpenTelemetry trace ID
	SpanID     string // OpenTelemetry span ID
	RequestID  string // HTTP request ID (chi middleware)
	Component  string // session, prefetch, api, cli
	Generation uint64 // Batch generation the work belongs to
	StartTime  time.Time
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if not present.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for the named component.
func NewLogContext(component string) *LogContext {
	return &LogContext{
		Component: component,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithGeneration returns a copy bound to a batch generation.
func (lc *LogContext) WithGeneration(gen uint64) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.Generation = gen
	}
	return c
}

// WithRequestID returns a copy with the request ID set.
func (lc *LogContext) WithRequestID(id string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.RequestID = id
	}
	return c
}

// WithTrace returns a copy with trace info set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.TraceID = traceID
		c.SpanID = spanID
	}
	return c
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return Duration(lc.StartTime)
}
