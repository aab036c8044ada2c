package httpapi

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestIsHandlerSpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "sync handler", in: "httpapi.Handler.SyncWithSettings", want: true},
		{name: "scheduled job handler", in: "httpapi.Handler.RunScheduledSync", want: true},
		{name: "bare prefix", in: "httpapi.Handler.", want: false},
		{name: "middleware", in: "httpapi.RequestLogging", want: false},
		{name: "response helper", in: "httpapi.writeError", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isHandlerSpan(tt.in); got != tt.want {
				t.Fatalf("isHandlerSpan(%q)=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStartSpan_RecordsHandlersUnderRequestSpanOnly(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	_, orphan := startSpan(context.Background(), "httpapi.Handler.Sync")
	orphan.End()

	ctx, request := provider.Tracer("test").Start(context.Background(), "POST /api/spond/sync")
	_, helper := startSpan(ctx, "httpapi.writeError")
	helper.End()
	handlerCtx, handler := startSpan(ctx, "httpapi.Handler.Sync")
	handler.End()
	request.End()

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected handler and request spans, got=%d", len(ended))
	}
	if ended[0].Name() != "httpapi.Handler.Sync" || ended[1].Name() != "POST /api/spond/sync" {
		t.Fatalf("unexpected spans: %s, %s", ended[0].Name(), ended[1].Name())
	}
	if ended[0].Parent().SpanID() != request.SpanContext().SpanID() {
		t.Fatalf("handler span must be a child of the request span")
	}
	if handlerCtx == ctx {
		t.Fatalf("expected a new context carrying the handler span")
	}
}
