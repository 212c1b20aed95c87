package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
)

// TracingCollector implements apiclient.TracingCollector with an OpenTelemetry tracer.
// The returned context carries the span, so outgoing work is correlated with it.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a TracingCollector; tracer comes from your TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, apiclient.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(toAttributes(attrs)...),
	)

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan sets the final attributes and status and ends the span.
// SpanContexts not created by this collector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx apiclient.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(toAttributes(attrs)...)
	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

var _ apiclient.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext wraps an OpenTelemetry span as an apiclient.SpanContext.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps an outcome string onto an OpenTelemetry status code.
// Unknown outcomes are kept as an "outcome" attribute and leave the status unset.
func (s *OTelSpanContext) SetStatus(status string) {
	switch status {
	case apiclient.StatusSuccess, "ok", "completed":
		s.span.SetStatus(codes.Ok, "")
	case apiclient.StatusError, "failed":
		s.span.SetStatus(codes.Error, "Request failed")
	case apiclient.StatusNetwork:
		s.span.SetStatus(codes.Error, "No response received")
	case apiclient.StatusSessionExpired:
		s.span.SetStatus(codes.Error, "Session expired")
	case "canceled", "cancelled":
		s.span.SetStatus(codes.Error, "Request canceled")
	default:
		s.span.SetAttributes(toAttributes(map[string]string{"outcome": status})...)
	}
}

func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(toAttributes(map[string]string{key: value})...)
}

var _ apiclient.SpanContext = (*OTelSpanContext)(nil)
