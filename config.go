// Package tempoquery is a client-side helper library for querying a
// Tempo-compatible tracing backend via TraceQL.
//
// It provides a single-query executor with a hard timeout and a typed error
// taxonomy, a batch executor with partial-failure semantics, convenience
// TraceQL builders, and a process-wide configuration registry. The
// [github.com/go-faster/tempoquery/spangeo] package adds a span geolocation
// reader used during a schema migration.
package tempoquery

import (
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/go-faster/tempoquery/internal/envcfg"
)

// DefaultBaseURL is used when no base URL is configured anywhere.
const DefaultBaseURL = "http://localhost:3200"

// Config is a set of library-wide settings. All fields are optional.
type Config struct {
	// Logger for structured diagnostics. Defaults to zap.NewNop.
	Logger *zap.Logger
	// BaseURL of the tracing backend.
	BaseURL string
	// APIKey sent as a bearer token with every request.
	APIKey string
	// Tracker records query execution outcomes.
	Tracker QueryTracker
	// HTTPClient overrides the transport.
	HTTPClient *http.Client
}

var registry = struct {
	mu  sync.Mutex
	cfg Config
}{}

// Configure merges set fields of cfg into the process-wide registry.
// Later calls win on overlapping fields, unset fields are preserved.
//
// Intended for startup and test boundaries only; accessors read the
// registry fresh on every call, so reconfiguration takes effect
// immediately.
func Configure(cfg Config) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if cfg.Logger != nil {
		registry.cfg.Logger = cfg.Logger
	}
	if cfg.BaseURL != "" {
		registry.cfg.BaseURL = cfg.BaseURL
	}
	if cfg.APIKey != "" {
		registry.cfg.APIKey = cfg.APIKey
	}
	if cfg.Tracker != nil {
		registry.cfg.Tracker = cfg.Tracker
	}
	if cfg.HTTPClient != nil {
		registry.cfg.HTTPClient = cfg.HTTPClient
	}
}

// Reset clears the process-wide registry.
func Reset() {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.cfg = Config{}
}

func snapshot() Config {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return registry.cfg
}

// Logger returns the configured logger, or a no-op logger.
func Logger() *zap.Logger {
	if lg := snapshot().Logger; lg != nil {
		return lg
	}
	return zap.NewNop()
}

// BaseURL returns the configured backend base URL.
//
// Resolution order: configured value, then TEMPO_BASE_URL / TEMPO_URL
// environment variables, then [DefaultBaseURL].
func BaseURL() string {
	if u := snapshot().BaseURL; u != "" {
		return u
	}
	return envcfg.BaseURL(DefaultBaseURL)
}

// APIKey returns the configured API key, if any.
func APIKey() string { return snapshot().APIKey }

// Tracker returns the configured query tracker. May be nil; all call
// sites tolerate a nil tracker.
func Tracker() QueryTracker { return snapshot().Tracker }
