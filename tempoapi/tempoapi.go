// Package tempoapi provides a hand-written model and client for the
// Tempo-compatible trace query API.
package tempoapi

// SearchRequest is a body of the search endpoint.
//
// Start and End are UNIX epoch nanoseconds.
type SearchRequest struct {
	Query string `json:"query"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	Limit int    `json:"limit"`
}

// Traces is a search response.
type Traces struct {
	Traces  []TraceSearchMetadata `json:"traces"`
	Metrics SearchMetrics         `json:"metrics"`
}

// SearchMetrics reports how much data the backend inspected to answer a
// search.
type SearchMetrics struct {
	InspectedTraces Int64 `json:"inspectedTraces"`
	InspectedSpans  Int64 `json:"inspectedSpans"`
	InspectedBytes  Int64 `json:"inspectedBytes"`
}

// TraceSearchMetadata is a single trace in a search response.
type TraceSearchMetadata struct {
	TraceID           string `json:"traceID"`
	RootServiceName   string `json:"rootServiceName,omitempty"`
	RootTraceName     string `json:"rootTraceName,omitempty"`
	StartTimeUnixNano Nanos  `json:"startTimeUnixNano,omitempty"`
	DurationMs        int64  `json:"durationMs,omitempty"`
	// SpanSet is set for non-structural queries.
	SpanSet *SpanSet `json:"spanSet,omitempty"`
	// SpanSets is set for structural queries.
	SpanSets []SpanSet `json:"spanSets,omitempty"`
}

// FirstSpanSet returns the first span-set of the trace, or nil if the trace
// carries none.
func (m *TraceSearchMetadata) FirstSpanSet() *SpanSet {
	if m.SpanSet != nil {
		return m.SpanSet
	}
	if len(m.SpanSets) > 0 {
		return &m.SpanSets[0]
	}
	return nil
}

// SpanSet is a set of spans of one trace matched by a search filter.
type SpanSet struct {
	Spans   []Span `json:"spans"`
	Matched int    `json:"matched"`
}

// Span is a single span in a search response.
type Span struct {
	SpanID            string     `json:"spanID"`
	Name              string     `json:"name,omitempty"`
	StartTimeUnixNano Nanos      `json:"startTimeUnixNano,omitempty"`
	DurationNanos     Nanos      `json:"durationNanos,omitempty"`
	Attributes        []KeyValue `json:"attributes,omitempty"`
}

// TagNames is a tag discovery response.
type TagNames struct {
	TagNames []string `json:"tagNames"`
}

// TagValues is a tag value discovery response.
type TagValues struct {
	TagValues []string `json:"tagValues"`
}
