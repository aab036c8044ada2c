package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	tracerName        = "github.com/riskibarqy/clubsync/internal/interfaces/httpapi"
	handlerSpanPrefix = "httpapi.Handler."
)

// startSpan opens a child span for handler entry points only. Middleware and
// response helpers stay inside the otelhttp server span, and untraced routes
// such as /healthz carry no parent to attach to.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !isHandlerSpan(name) || !parent.SpanContext().IsValid() {
		return ctx, noop.Span{}
	}
	return parent.TracerProvider().Tracer(tracerName).Start(ctx, name)
}

func isHandlerSpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix) && len(name) > len(handlerSpanPrefix)
}
