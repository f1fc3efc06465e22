package logger

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// New builds the process-wide JSON logger and installs it as slog default.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(log)
	return log
}

// From returns the default logger enriched with trace identifiers when an
// active span is present in ctx.
func From(ctx context.Context) *slog.Logger {
	log := slog.Default()

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		log = log.With(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
		)
	}

	return log
}
