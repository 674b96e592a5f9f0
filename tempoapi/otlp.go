package tempoapi

import (
	"strconv"

	"github.com/go-faster/jx"
)

// Int64 is an int64 that tolerates both JSON numbers and proto3 JSON
// string-encoded 64-bit integers.
type Int64 int64

// Nanos is a nanosecond count on the wire.
type Nanos = Int64

// MarshalJSON implements json.Marshaler.
func (n Int64) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(n), 10), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Int64) UnmarshalJSON(data []byte) error {
	i, err := decodeInt64(jx.DecodeBytes(data))
	if err != nil {
		return err
	}
	*n = Int64(i)
	return nil
}

// TraceByID is a raw trace as returned by the per-trace-ID endpoint,
// shaped as OTLP batches.
type TraceByID struct {
	Batches []Batch `json:"batches"`
}

// Batch is a single OTLP resource batch.
type Batch struct {
	Resource   *Resource    `json:"resource,omitempty"`
	ScopeSpans []ScopeSpans `json:"scopeSpans,omitempty"`
}

// Resource describes the entity that produced a batch of spans.
type Resource struct {
	Attributes []KeyValue `json:"attributes,omitempty"`
}

// ScopeSpans groups spans of one instrumentation scope.
type ScopeSpans struct {
	Scope *Scope     `json:"scope,omitempty"`
	Spans []OTLPSpan `json:"spans,omitempty"`
}

// Scope is an instrumentation scope.
type Scope struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// OTLPSpan is a raw span within a [TraceByID] response.
type OTLPSpan struct {
	TraceID           string     `json:"traceId,omitempty"`
	SpanID            string     `json:"spanId,omitempty"`
	ParentSpanID      string     `json:"parentSpanId,omitempty"`
	Name              string     `json:"name"`
	StartTimeUnixNano Nanos      `json:"startTimeUnixNano,omitempty"`
	EndTimeUnixNano   Nanos      `json:"endTimeUnixNano,omitempty"`
	Attributes        []KeyValue `json:"attributes,omitempty"`
}
