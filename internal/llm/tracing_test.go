package llm

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracing_RecordsSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	mock := NewMockProvider(
		MockResponse{Text: "ok", Usage: Usage{InputTokens: 7}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithTracing(mock, tp)
	ctx := WithPurpose(context.Background(), PurposeExplain)

	if _, err := p.Generate(ctx, UserRequest("", "x", 10, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, UserRequest("", "x", 10, 0)); err == nil {
		t.Fatal("expected error")
	}

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name != "llm.generate" {
		t.Fatalf("unexpected span name %q", spans[0].Name)
	}

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["llm.purpose"] != PurposeExplain || attrs["llm.model"] != "mock" || attrs["llm.input_tokens"] != "7" {
		t.Fatalf("unexpected attributes: %v", attrs)
	}
	if spans[1].Status.Code != codes.Error {
		t.Fatalf("expected error status, got %v", spans[1].Status.Code)
	}
}
