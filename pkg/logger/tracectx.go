package logger

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// AttrsFromCtx достаёт trace_id/span_id из активного спана.
// Без валидного спана возвращает пустой срез.
func AttrsFromCtx(ctx context.Context) []slog.Attr {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	attrs := []slog.Attr{
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	}
	if sc.IsSampled() {
		attrs = append(attrs, slog.Bool("sampled", true))
	}
	return attrs
}
