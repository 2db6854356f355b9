package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("mockmate/llm")

// StartChatSpan opens a client span following the OTel GenAI conventions.
// Span name is "chat {model}".
func StartChatSpan(ctx context.Context, provider, model string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "chat "+model,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", provider),
			attribute.String("gen_ai.request.model", model),
		),
	)
}

// FailSpan marks the span as failed with the provider error code.
func FailSpan(span trace.Span, code string, err error) {
	span.SetAttributes(attribute.String("error.type", code))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// RecordUsage attaches token usage reported by the provider.
func RecordUsage(span trace.Span, inputTokens, outputTokens int64) {
	span.SetAttributes(
		attribute.Int64("gen_ai.usage.input_tokens", inputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", outputTokens),
	)
}
