package tempoquery

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/zeebo/xxh3"
)

// QueryStats is a single query execution outcome.
type QueryStats struct {
	// Hash is an opaque query identifier, see [HashQuery].
	Hash string
	// Query is the raw TraceQL text.
	Query string
	// Duration is the execution wall-clock time.
	Duration time.Duration
	// ResultCount is the number of returned traces. Zero on failure.
	ResultCount int
	// Start and End bound the queried time range.
	Start time.Time
	End   time.Time
	// Success reports whether the query succeeded.
	Success bool
	// Error holds the failure message when Success is false.
	Error string
}

// QueryTracker records query execution outcomes. Implementations must be
// safe for concurrent use. Recording is best-effort; the executor never
// fails because of a tracker.
type QueryTracker interface {
	// HashQuery maps a query string to an opaque identifier.
	HashQuery(query string) string
	// Record stores one execution outcome.
	Record(ctx context.Context, stats QueryStats)
}

// HashQuery computes the default opaque query identifier.
func HashQuery(query string) string {
	h := xxh3.New()
	_, _ = h.WriteString(query)
	b := h.Sum128().Bytes()
	return hex.EncodeToString(b[:])
}
