package spangeo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/go-faster/tempoquery/tempoapi"
)

func geoSpan(name, lat, lon string) string {
	return `{
		"name": "` + name + `",
		"attributes": [
			{"key": "geo.latitude", "value": {"stringValue": "` + lat + `"}},
			{"key": "geo.longitude", "value": {"stringValue": "` + lon + `"}},
			{"key": "geo.country", "value": {"stringValue": "Turkey"}},
			{"key": "geo.city", "value": {"stringValue": "Antalya"}}
		]
	}`
}

// secondaryServer serves raw traces whose geoip data lives on a child span.
func secondaryServer(t *testing.T, requests *atomic.Int64, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Inc()
		if body == "" {
			http.Error(w, "trace not found", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestReader(t *testing.T, srv *httptest.Server, opts Options) *Reader {
	t.Helper()

	api, err := tempoapi.NewClient(srv.URL, tempoapi.ClientOptions{Client: srv.Client()})
	require.NoError(t, err)
	opts.Client = api

	r, err := NewReader(opts)
	require.NoError(t, err)
	return r
}

func primaryTrace(id string, attrs ...tempoapi.KeyValue) tempoapi.TraceSearchMetadata {
	return tempoapi.TraceSearchMetadata{
		TraceID: id,
		SpanSet: &tempoapi.SpanSet{
			Spans:   []tempoapi.Span{{SpanID: "s1", Attributes: attrs}},
			Matched: 1,
		},
	}
}

func geoAttrs(lat, lon float64) []tempoapi.KeyValue {
	return []tempoapi.KeyValue{
		{Key: AttrLatitude, Value: tempoapi.NewDoubleValue(lat)},
		{Key: AttrLongitude, Value: tempoapi.NewDoubleValue(lon)},
	}
}

func TestReadGeoPrimary(t *testing.T) {
	var requests atomic.Int64
	srv := secondaryServer(t, &requests, "")
	r := newTestReader(t, srv, Options{})

	trace := primaryTrace("t1", append(geoAttrs(36.9, 30.7),
		tempoapi.KeyValue{Key: AttrCountry, Value: tempoapi.NewStringValue("Turkey")},
		tempoapi.KeyValue{Key: AttrCity, Value: tempoapi.NewStringValue("Antalya")},
	)...)

	loc := r.ReadGeo(context.Background(), trace)
	require.NotNil(t, loc)
	require.Equal(t, SourcePrimarySpan, loc.Source)
	require.Equal(t, "Turkey", loc.Country)
	require.Equal(t, "Antalya", loc.City)
	require.Equal(t, 36.9, loc.Latitude)
	require.Equal(t, 30.7, loc.Longitude)
	require.Zero(t, requests.Load(), "primary extraction must not hit the backend")
}

func TestReadGeoPrimaryDefaults(t *testing.T) {
	var requests atomic.Int64
	srv := secondaryServer(t, &requests, "")
	r := newTestReader(t, srv, Options{})

	loc := r.ReadGeo(context.Background(), primaryTrace("t1", geoAttrs(1, 2)...))
	require.NotNil(t, loc)
	require.Equal(t, "Unknown", loc.Country)
	require.Empty(t, loc.City)
}

func TestReadGeoSecondary(t *testing.T) {
	var requests atomic.Int64
	srv := secondaryServer(t, &requests, `{
		"batches": [
			{"scopeSpans": [{"spans": [{"name": "GET /"}]}]},
			{"scopeSpans": [
				{"spans": [`+geoSpan("fingerprint.geoip_lookup", "36.8969", "30.7133")+`]}
			]}
		]
	}`)
	r := newTestReader(t, srv, Options{})

	// First span lacks geo attributes, so the reader falls back to the
	// raw trace.
	trace := primaryTrace("t2")
	loc := r.ReadGeo(context.Background(), trace)
	require.NotNil(t, loc)
	require.Equal(t, SourceSecondarySpan, loc.Source)
	require.Equal(t, 36.8969, loc.Latitude)
	require.Equal(t, 30.7133, loc.Longitude)
	require.Equal(t, "Turkey", loc.Country)
	require.Equal(t, int64(1), requests.Load())
}

func TestReadGeoSecondaryIgnoresOtherSpans(t *testing.T) {
	var requests atomic.Int64
	srv := secondaryServer(t, &requests, `{
		"batches": [{"scopeSpans": [{"spans": [
			`+geoSpan("not.a.geoip.span", "1", "2")+`,
			`+geoSpan("fingerprint.geoip_lookup", "91", "0")+`,
			`+geoSpan("fingerprint.geoip_lookup", "36.9", "30.7")+`
		]}]}]
	}`)
	r := newTestReader(t, srv, Options{})

	// The first matching span has out-of-range coordinates and is
	// rejected, not clamped; the scan continues in document order.
	loc := r.ReadGeo(context.Background(), primaryTrace("t3"))
	require.NotNil(t, loc)
	require.Equal(t, 36.9, loc.Latitude)
}

func TestReadGeoNone(t *testing.T) {
	var requests atomic.Int64
	srv := secondaryServer(t, &requests, "")
	r := newTestReader(t, srv, Options{})

	loc := r.ReadGeo(context.Background(), primaryTrace("t4"))
	require.Nil(t, loc)
	require.Equal(t, int64(1), requests.Load())

	// A nil result is cached too: the second lookup answers from cache
	// without paying for the fetch again.
	loc = r.ReadGeo(context.Background(), primaryTrace("t4"))
	require.Nil(t, loc)
	require.Equal(t, int64(1), requests.Load())

	stats := r.CacheStats()
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Misses)
	require.Equal(t, 1, stats.Size)
}

func TestReadGeoCacheTTL(t *testing.T) {
	var requests atomic.Int64
	srv := secondaryServer(t, &requests, "")
	r := newTestReader(t, srv, Options{CacheTTL: time.Minute})

	now := time.Now()
	r.now = func() time.Time { return now }

	r.ReadGeo(context.Background(), primaryTrace("t5"))
	require.Equal(t, int64(1), requests.Load())

	// Within TTL: served from cache.
	now = now.Add(30 * time.Second)
	r.ReadGeo(context.Background(), primaryTrace("t5"))
	require.Equal(t, int64(1), requests.Load())

	// Expired: the stale entry is evicted on read and refetched.
	now = now.Add(2 * time.Minute)
	r.ReadGeo(context.Background(), primaryTrace("t5"))
	require.Equal(t, int64(2), requests.Load())

	stats := r.CacheStats()
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(2), stats.Misses)
}

func TestReadGeoCacheDisabled(t *testing.T) {
	var requests atomic.Int64
	srv := secondaryServer(t, &requests, "")

	enabled := false
	r := newTestReader(t, srv, Options{CacheEnabled: &enabled})

	r.ReadGeo(context.Background(), primaryTrace("t6"))
	r.ReadGeo(context.Background(), primaryTrace("t6"))
	require.Equal(t, int64(2), requests.Load())
	require.Zero(t, r.CacheStats().Size)
}

func TestClearCache(t *testing.T) {
	var requests atomic.Int64
	srv := secondaryServer(t, &requests, "")
	r := newTestReader(t, srv, Options{})

	r.ReadGeo(context.Background(), primaryTrace("t7", geoAttrs(1, 2)...))
	require.Equal(t, 1, r.CacheStats().Size)

	r.ClearCache()
	stats := r.CacheStats()
	require.Zero(t, stats.Size)
	require.Equal(t, int64(1), stats.Misses, "clearing keeps counters")
}

func TestNeedsChildSpan(t *testing.T) {
	var requests atomic.Int64
	srv := secondaryServer(t, &requests, "")
	r := newTestReader(t, srv, Options{})

	tests := []struct {
		name  string
		trace tempoapi.TraceSearchMetadata
		want  bool
	}{
		{"NoSpans", tempoapi.TraceSearchMetadata{TraceID: "t"}, true},
		{"EmptySpanSet", tempoapi.TraceSearchMetadata{TraceID: "t", SpanSet: &tempoapi.SpanSet{}}, true},
		{"NoGeoAttrs", primaryTrace("t"), true},
		{"OutOfRange", primaryTrace("t", geoAttrs(91, 0)...), true},
		{"ValidGeo", primaryTrace("t", geoAttrs(36.9, 30.7)...), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, r.NeedsChildSpan(tt.trace))
		})
	}
	require.Zero(t, requests.Load(), "the predicate must not hit the backend")
}

func TestReadGeoBulk(t *testing.T) {
	var requests atomic.Int64
	srv := secondaryServer(t, &requests, "")
	r := newTestReader(t, srv, Options{MaxConcurrency: 2})

	traces := []tempoapi.TraceSearchMetadata{
		primaryTrace("b1", geoAttrs(10, 20)...),
		primaryTrace("b2"),
		primaryTrace("b3", geoAttrs(30, 40)...),
		primaryTrace("b4"),
		primaryTrace("b5"),
	}

	out := r.ReadGeoBulk(context.Background(), traces)
	require.Len(t, out, len(traces))
	for _, trace := range traces {
		require.Contains(t, out, trace.TraceID)
	}
	require.NotNil(t, out["b1"])
	require.Equal(t, 10.0, out["b1"].Latitude)
	require.Nil(t, out["b2"])
	require.NotNil(t, out["b3"])
	require.Nil(t, out["b4"])
	require.Nil(t, out["b5"])
}
