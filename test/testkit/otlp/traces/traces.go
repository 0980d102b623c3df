// Package traces builds OTLP trace payloads and exports them to the
// collector's NodePort endpoints over both wire transports.
package traces

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"

	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/ptrace"
)

func NewSpanID() pcommon.SpanID {
	var rngSeed int64
	_ = binary.Read(crand.Reader, binary.LittleEndian, &rngSeed)
	randSource := rand.New(rand.NewSource(rngSeed)) //nolint:gosec // random number generator is sufficient.
	sid := pcommon.SpanID{}
	_, _ = randSource.Read(sid[:])

	return sid
}

func NewTraceID() pcommon.TraceID {
	var rngSeed int64
	_ = binary.Read(crand.Reader, binary.LittleEndian, &rngSeed)
	randSource := rand.New(rand.NewSource(rngSeed)) //nolint:gosec // random number generator is sufficient.
	tid := pcommon.TraceID{}
	_, _ = randSource.Read(tid[:])

	return tid
}

func MakeTraces(traceID pcommon.TraceID, spanIDs []pcommon.SpanID, attributes pcommon.Map) ptrace.Traces {
	traces := ptrace.NewTraces()

	spans := traces.ResourceSpans().
		AppendEmpty().
		ScopeSpans().
		AppendEmpty().
		Spans()

	for _, spanID := range spanIDs {
		span := spans.AppendEmpty()
		span.SetName("pipeline-check-span")
		span.SetStartTimestamp(pcommon.NewTimestampFromTime(time.Now()))
		span.SetEndTimestamp(pcommon.NewTimestampFromTime(time.Now()))
		span.SetSpanID(spanID)
		span.SetTraceID(traceID)
		attributes.CopyTo(span.Attributes())
	}

	return traces
}

// MakeTaggedTraces builds a small batch of spans carrying a unique check ID
// so downstream side effects (Splunk events, stats) can be attributed to
// this run.
func MakeTaggedTraces(checkID string, spanCount int) ptrace.Traces {
	traceID := NewTraceID()

	var spanIDs []pcommon.SpanID
	for range spanCount {
		spanIDs = append(spanIDs, NewSpanID())
	}

	attrs := pcommon.NewMap()
	attrs.PutStr("check.id", checkID)
	attrs.PutStr("check.source", "pipeline-e2e")

	return MakeTraces(traceID, spanIDs, attrs)
}
