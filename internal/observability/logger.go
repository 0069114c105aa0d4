package observability

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// NewLogger builds the process-wide JSON logger. Log lines emitted inside an
// active span carry its trace and span ids so a log entry can be pulled up
// next to its trace.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	json := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(spanAwareHandler{next: json})
}

// spanAwareHandler decorates records with the ambient span context. It stays
// out of the way when no span is recording.
type spanAwareHandler struct {
	next slog.Handler
}

func (h spanAwareHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h spanAwareHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	return h.next.Handle(ctx, r)
}

func (h spanAwareHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return spanAwareHandler{next: h.next.WithAttrs(attrs)}
}

func (h spanAwareHandler) WithGroup(name string) slog.Handler {
	return spanAwareHandler{next: h.next.WithGroup(name)}
}
