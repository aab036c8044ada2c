package usecase

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartUsecaseSpan_NestsUnderCallerOnly(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	_, detached := startUsecaseSpan(context.Background(), "usecase.SpondSyncService.Run")
	detached.End()

	ctx, parent := provider.Tracer("test").Start(context.Background(), "httpapi.Handler.Sync")
	_, unnamed := startUsecaseSpan(ctx, "  ")
	unnamed.End()
	_, step := startUsecaseSpan(ctx, "usecase.SpondSyncService.Run")
	step.End()
	parent.End()

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected step and parent spans, got=%d", len(ended))
	}
	if ended[0].Name() != "usecase.SpondSyncService.Run" {
		t.Fatalf("unexpected first span %q", ended[0].Name())
	}
	if ended[0].Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Fatalf("step span must be a child of the caller span")
	}
}
