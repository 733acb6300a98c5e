package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var stageTracer = otel.Tracer("nba-totals/internal/usecase")

// startUsecaseSpan opens a child span only when the caller already sits
// inside a recorded trace. Cron runs without tracing configured stay
// span-free instead of emitting orphan roots.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if name == "" || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return stageTracer.Start(ctx, name)
}
