// Package spangeo resolves the geographic origin of traces during the geo
// attribute schema migration.
//
// Historically geo attributes lived on a dedicated geoip lookup child
// span; newer ingestion writes them onto the root span. The reader checks
// the fast primary location first and falls back to fetching the raw
// trace, with per-reader caching and bounded concurrency for bulk
// lookups. Geolocation is best-effort enrichment: the fallback path never
// propagates errors, it yields no location instead.
package spangeo

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-faster/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-faster/tempoquery/internal/envcfg"
	"github.com/go-faster/tempoquery/tempoapi"
)

// Defaults applied by [Options.setDefaults].
const (
	DefaultCacheTTL       = 5 * time.Minute
	DefaultMaxConcurrency = 10
	DefaultBaseURL        = "http://localhost:3200"
)

// secondarySpanName is the child span that carried geo attributes before
// the migration.
const secondarySpanName = "fingerprint.geoip_lookup"

const (
	fetchTimeout = 15 * time.Second
	fetchRetries = 2
)

// Options is a Reader creation options. All fields are optional.
type Options struct {
	// CacheEnabled toggles the per-reader cache. Defaults to true.
	CacheEnabled *bool
	// CacheTTL is the entry time-to-live. Defaults to [DefaultCacheTTL].
	CacheTTL time.Duration
	// MaxConcurrency caps concurrent lookups per bulk chunk. Defaults to
	// [DefaultMaxConcurrency].
	MaxConcurrency int
	// BaseURL of the tracing backend. Defaults to TEMPO_BASE_URL /
	// TEMPO_URL, then [DefaultBaseURL]. Ignored when Client is set.
	BaseURL string
	// Client overrides the backend client.
	Client *tempoapi.Client
	// Logger for diagnostics. Defaults to zap.NewNop.
	Logger *zap.Logger
}

func (opts *Options) setDefaults() {
	if opts.CacheEnabled == nil {
		enabled := true
		opts.CacheEnabled = &enabled
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	if opts.BaseURL == "" {
		opts.BaseURL = envcfg.BaseURL(DefaultBaseURL)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
}

// Reader resolves geographic locations for traces.
//
// The cache is owned exclusively by one Reader; sharing a Reader across
// goroutines is safe, sharing cached values is not implied beyond that.
type Reader struct {
	api            *tempoapi.Client
	lg             *zap.Logger
	cacheEnabled   bool
	ttl            time.Duration
	maxConcurrency int

	mu    sync.Mutex
	cache map[string]cacheEntry

	hits   atomic.Int64
	misses atomic.Int64

	now func() time.Time
}

// NewReader creates a Reader.
func NewReader(opts Options) (*Reader, error) {
	opts.setDefaults()

	api := opts.Client
	if api == nil {
		var err error
		api, err = tempoapi.NewClient(opts.BaseURL, tempoapi.ClientOptions{})
		if err != nil {
			return nil, errors.Wrap(err, "create client")
		}
	}

	return &Reader{
		api:            api,
		lg:             opts.Logger,
		cacheEnabled:   *opts.CacheEnabled,
		ttl:            opts.CacheTTL,
		maxConcurrency: opts.MaxConcurrency,
		cache:          map[string]cacheEntry{},
		now:            time.Now,
	}, nil
}

// ReadGeo resolves the geographic origin of a trace.
//
// It checks the cache, then the first span of the trace's first span-set,
// then falls back to scanning the raw trace for the geoip lookup child
// span. A nil result means the trace carries no geo data; it is cached
// like any other result so repeated lookups stay cheap. ReadGeo never
// returns an error: the fallback path converts failures to nil.
func (r *Reader) ReadGeo(ctx context.Context, trace tempoapi.TraceSearchMetadata) *Location {
	if r.cacheEnabled {
		if loc, ok := r.cached(trace.TraceID); ok {
			return loc
		}
	}

	loc := r.primaryLocation(trace)
	if loc == nil {
		loc = r.secondaryLocation(ctx, trace.TraceID)
	}

	if r.cacheEnabled {
		r.store(trace.TraceID, loc)
	}
	return loc
}

// ReadGeoBulk resolves locations for all traces.
//
// The input is processed in chunks of MaxConcurrency: chunks run
// sequentially, lookups within a chunk run concurrently, bounding peak
// concurrent backend fetches. Every input trace ID appears as a key, with
// a nil value when no geo data was found.
func (r *Reader) ReadGeoBulk(ctx context.Context, traces []tempoapi.TraceSearchMetadata) map[string]*Location {
	var (
		out = make(map[string]*Location, len(traces))
		mu  sync.Mutex
	)
	for start := 0; start < len(traces); start += r.maxConcurrency {
		chunk := traces[start:min(start+r.maxConcurrency, len(traces))]

		var g errgroup.Group
		for _, trace := range chunk {
			g.Go(func() error {
				loc := r.ReadGeo(ctx, trace)
				mu.Lock()
				out[trace.TraceID] = loc
				mu.Unlock()
				return nil
			})
		}
		// Lookups never return errors.
		_ = g.Wait()
	}
	return out
}

// NeedsChildSpan reports whether resolving this trace requires the
// secondary lookup, i.e. primary extraction alone yields nothing. It
// consults neither the cache nor the backend.
func (r *Reader) NeedsChildSpan(trace tempoapi.TraceSearchMetadata) bool {
	return r.primaryLocation(trace) == nil
}

// primaryLocation extracts a location from the first span of the trace's
// first span-set.
func (r *Reader) primaryLocation(trace tempoapi.TraceSearchMetadata) *Location {
	ss := trace.FirstSpanSet()
	if ss == nil || len(ss.Spans) == 0 {
		return nil
	}
	return r.locationFrom(FlattenAttributes(ss.Spans[0].Attributes), SourcePrimarySpan)
}

// secondaryLocation fetches the raw trace and scans every span of every
// scope of every batch, in document order, for the first geoip lookup
// span with valid coordinates.
func (r *Reader) secondaryLocation(ctx context.Context, traceID string) *Location {
	raw, err := r.fetchTrace(ctx, traceID)
	if err != nil {
		r.lg.Debug("No geo data: raw trace unavailable",
			zap.String("trace_id", traceID),
			zap.Error(err),
		)
		return nil
	}

	for _, batch := range raw.Batches {
		for _, ss := range batch.ScopeSpans {
			for _, span := range ss.Spans {
				if span.Name != secondarySpanName {
					continue
				}
				if loc := r.locationFrom(FlattenAttributes(span.Attributes), SourceSecondarySpan); loc != nil {
					return loc
				}
			}
		}
	}
	return nil
}

func (r *Reader) fetchTrace(ctx context.Context, traceID string) (*tempoapi.TraceByID, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond

	return backoff.RetryWithData(func() (*tempoapi.TraceByID, error) {
		fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()

		raw, err := r.api.TraceByID(fctx, traceID)
		if err != nil {
			var status *tempoapi.ErrorStatusCode
			if errors.As(err, &status) && status.StatusCode < 500 {
				// Missing traces do not become retryable by waiting.
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return raw, nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, fetchRetries), ctx))
}

// locationFrom builds a location from flattened attributes. Out-of-range
// coordinates are rejected, not clamped.
func (r *Reader) locationFrom(attrs map[string]string, source Source) *Location {
	lat, lon, ok := ParseCoordinates(attrs)
	if !ok {
		return nil
	}
	if !ValidCoordinates(lat, lon) {
		r.lg.Warn("Rejecting out-of-range coordinates",
			zap.Float64("latitude", lat),
			zap.Float64("longitude", lon),
			zap.String("source", string(source)),
		)
		return nil
	}

	loc := &Location{
		Country:     "Unknown",
		CountryCode: attrs[AttrCountryCode],
		City:        attrs[AttrCity],
		Latitude:    lat,
		Longitude:   lon,
		Timezone:    attrs[AttrTimezone],
		Source:      source,
	}
	if country := attrs[AttrCountry]; country != "" {
		loc.Country = country
	}
	return loc
}
