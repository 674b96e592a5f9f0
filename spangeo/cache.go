package spangeo

import "time"

type cacheEntry struct {
	loc       *Location
	fetchedAt time.Time
}

// Stats is a point-in-time view of the reader cache.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// cached returns the cached location for a trace ID. Expired entries are
// evicted lazily on access; there is no background sweep. A cached nil is
// a meaningful hit: the trace is known to carry no geo data.
func (r *Reader) cached(traceID string) (*Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.cache[traceID]
	if !ok {
		r.misses.Inc()
		return nil, false
	}
	if r.now().Sub(e.fetchedAt) > r.ttl {
		delete(r.cache, traceID)
		r.misses.Inc()
		return nil, false
	}
	r.hits.Inc()
	return e.loc, true
}

func (r *Reader) store(traceID string, loc *Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[traceID] = cacheEntry{loc: loc, fetchedAt: r.now()}
}

// ClearCache drops all cached entries. Hit and miss counters are kept.
func (r *Reader) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = map[string]cacheEntry{}
}

// CacheStats returns current cache counters and size.
func (r *Reader) CacheStats() Stats {
	r.mu.Lock()
	size := len(r.cache)
	r.mu.Unlock()
	return Stats{
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
		Size:   size,
	}
}
