package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/apiclient/oteladapters"
	"github.com/AntonStoeckl/circulation-desk/testutil/testdoubles"
)

func Test_TracingCollector_RecordsClientSpanWithAttributes(t *testing.T) {
	// arrange
	exporter, collector := newTracingCollector(t)

	// act
	ctx, span := collector.StartSpan(context.Background(), apiclient.SpanNameRequest, map[string]string{
		"method": "POST",
		"route":  "/borrow-records/return-borrow-record",
	})
	span.AddAttribute("request_id", "r-1")
	collector.FinishSpan(span, apiclient.StatusSuccess, map[string]string{"http_status": "200"})

	// assert
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	got := spans[0]
	assert.Equal(t, apiclient.SpanNameRequest, got.Name)
	assert.Equal(t, trace.SpanKindClient, got.SpanKind)
	assert.Equal(t, codes.Ok, got.Status.Code)
	assertAttribute(t, got.Attributes, "method", "POST")
	assertAttribute(t, got.Attributes, "route", "/borrow-records/return-borrow-record")
	assertAttribute(t, got.Attributes, "request_id", "r-1")
	assertAttribute(t, got.Attributes, "http_status", "200")
}

func Test_TracingCollector_MapsOutcomesToStatusCodes(t *testing.T) {
	testCases := []struct {
		outcome     string
		wantCode    codes.Code
		wantMessage string
	}{
		{outcome: apiclient.StatusSuccess, wantCode: codes.Ok},
		{outcome: apiclient.StatusError, wantCode: codes.Error, wantMessage: "Request failed"},
		{outcome: apiclient.StatusNetwork, wantCode: codes.Error, wantMessage: "No response received"},
		{outcome: apiclient.StatusSessionExpired, wantCode: codes.Error, wantMessage: "Session expired"},
		{outcome: "canceled", wantCode: codes.Error, wantMessage: "Request canceled"},
		{outcome: "something-else", wantCode: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.outcome, func(t *testing.T) {
			exporter, collector := newTracingCollector(t)

			_, span := collector.StartSpan(context.Background(), "op", nil)
			collector.FinishSpan(span, tc.outcome, nil)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.wantCode, spans[0].Status.Code)
			assert.Equal(t, tc.wantMessage, spans[0].Status.Description)
		})
	}
}

func Test_TracingCollector_RecordsUnknownOutcomeAsAttribute(t *testing.T) {
	exporter, collector := newTracingCollector(t)

	_, span := collector.StartSpan(context.Background(), "op", nil)
	collector.FinishSpan(span, "throttled", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assertAttribute(t, spans[0].Attributes, "outcome", "throttled")
}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpanContexts(t *testing.T) {
	exporter, collector := newTracingCollector(t)

	assert.NotPanics(t, func() {
		collector.FinishSpan(&testdoubles.SpanSpy{}, apiclient.StatusSuccess, nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

func newTracingCollector(t *testing.T) (*tracetest.InMemoryExporter, *oteladapters.TracingCollector) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return exporter, oteladapters.NewTracingCollector(provider.Tracer("apiclient-test"))
}

func assertAttribute(t *testing.T, attrs []attribute.KeyValue, key, want string) {
	t.Helper()

	for _, attr := range attrs {
		if string(attr.Key) == key {
			assert.Equal(t, want, attr.Value.AsString(), "attribute %s", key)
			return
		}
	}

	t.Errorf("attribute %s not found", key)
}
