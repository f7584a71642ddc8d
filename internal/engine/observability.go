package engine

import (
	"context"
	"log/slog"
	"time"

	"editcore/pkg/collection"
)

// MetricsRecorder receives one observation per engine operation (dispatch,
// load, save) with its outcome and duration.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// TraceSpan terminates a span started by a Tracer.
type TraceSpan interface {
	End(err error)
}

// Tracer opens a span around an engine operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// AuditStatus tags an audit entry outcome.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one completed engine operation for audit sinks.
type AuditEntry struct {
	Operation  string        `json:"operation"`
	Status     AuditStatus   `json:"status"`
	Domain     string        `json:"domain,omitempty"`
	EntityName string        `json:"entity"`
	ContextID  string        `json:"context_id"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// AuditRecorder receives audit entries. Implementations must not block.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

type noopSpan struct{}

func (noopSpan) End(error) {}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, AuditEntry) {}

// slogLogger adapts a *slog.Logger to the collection.Logger surface.
type slogLogger struct {
	base *slog.Logger
}

// NewSlogLogger wraps a slog logger for injection via WithLogger. A nil
// argument wraps slog.Default.
func NewSlogLogger(base *slog.Logger) collection.Logger {
	if base == nil {
		base = slog.Default()
	}
	return slogLogger{base: base}
}

func (l slogLogger) Debug(msg string, args ...any) { l.base.Debug(msg, args...) }
func (l slogLogger) Info(msg string, args ...any)  { l.base.Info(msg, args...) }
func (l slogLogger) Warn(msg string, args ...any)  { l.base.Warn(msg, args...) }
func (l slogLogger) Error(msg string, args ...any) { l.base.Error(msg, args...) }
