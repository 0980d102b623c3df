package traces

import (
	"context"
	"time"

	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/ptrace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Exporter adapts an OTLP otlptrace.Exporter to pdata-built traces.
type Exporter struct {
	otlpExporter *otlptrace.Exporter
}

func NewExporter(e *otlptrace.Exporter) Exporter {
	return Exporter{otlpExporter: e}
}

// Export submits the traces and reports the per-submission result: a nil
// error means the collector accepted the batch.
func (e Exporter) Export(ctx context.Context, traces ptrace.Traces) error {
	return e.otlpExporter.ExportSpans(ctx, toTraceSpans(traces))
}

func (e Exporter) Shutdown(ctx context.Context) error {
	return e.otlpExporter.Shutdown(ctx)
}

func toTraceSpans(traces ptrace.Traces) []tracesdk.ReadOnlySpan {
	var spans []tracesdk.ReadOnlySpan

	for i := range traces.ResourceSpans().Len() {
		rs := traces.ResourceSpans().At(i)
		for j := range rs.ScopeSpans().Len() {
			ss := rs.ScopeSpans().At(j)
			for k := range ss.Spans().Len() {
				s := ss.Spans().At(k)
				spans = append(spans, toSpan(s.TraceID(), s.SpanID(), s.Name(), s.Attributes(), s.StartTimestamp().AsTime()))
			}
		}
	}

	return spans
}

func toSpan(traceID pcommon.TraceID, spanID pcommon.SpanID, name string, attrs pcommon.Map, startTimestamp time.Time) tracesdk.ReadOnlySpan {
	var attributes []attribute.KeyValue
	for k, v := range attrs.AsRaw() {
		if s, ok := v.(string); ok {
			attributes = append(attributes, attribute.String(k, s))
		}
	}

	return tracetest.SpanStub{
		Name: name,
		SpanContext: oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
			TraceID: [16]byte(traceID),
			SpanID:  [8]byte(spanID),
		}),
		StartTime:  startTimestamp,
		EndTime:    startTimestamp,
		Attributes: attributes,
	}.Snapshot()
}
