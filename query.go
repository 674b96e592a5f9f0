package tempoquery

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/go-faster/tempoquery/tempoapi"
)

// queryTimeout is the hard per-query execution timeout.
const queryTimeout = 30 * time.Second

// Client executes TraceQL queries against a Tempo-compatible backend.
//
// A zero-value Client reads every setting from the process-wide registry
// on each call. A Client created with [NewClient] prefers its own
// configuration and falls back to the registry field by field.
type Client struct {
	cfg *Config
}

// NewClient creates a Client with explicit configuration. Set fields of
// cfg override the process-wide registry; unset fields fall through to it.
func NewClient(cfg Config) *Client {
	return &Client{cfg: &cfg}
}

// Default is the process-lifetime client backed entirely by the registry.
var Default = &Client{}

func (c *Client) logger(ctx context.Context) *zap.Logger {
	if c.cfg != nil && c.cfg.Logger != nil {
		return c.cfg.Logger
	}
	if lg := snapshot().Logger; lg != nil {
		return lg
	}
	return zctx.From(ctx)
}

func (c *Client) baseURL() string {
	if c.cfg != nil && c.cfg.BaseURL != "" {
		return c.cfg.BaseURL
	}
	return BaseURL()
}

func (c *Client) apiKey() string {
	if c.cfg != nil && c.cfg.APIKey != "" {
		return c.cfg.APIKey
	}
	return APIKey()
}

func (c *Client) tracker() QueryTracker {
	if c.cfg != nil && c.cfg.Tracker != nil {
		return c.cfg.Tracker
	}
	return Tracker()
}

func (c *Client) httpClient() *http.Client {
	if c.cfg != nil && c.cfg.HTTPClient != nil {
		return c.cfg.HTTPClient
	}
	return snapshot().HTTPClient
}

func (c *Client) api() (*tempoapi.Client, error) {
	return tempoapi.NewClient(c.baseURL(), tempoapi.ClientOptions{
		Client: c.httpClient(),
		APIKey: c.apiKey(),
	})
}

// ExecuteQuery executes a single TraceQL query over [start, end].
//
// The limit must lie in [MinLimit, MaxLimit]; violations fail before any
// network activity. The call is bounded by a hard 30-second timeout.
// Failures are returned as [*InvalidLimitError], [*TimeoutError],
// [*FetchError], [*QueryError] or a wrapped unexpected error.
func (c *Client) ExecuteQuery(ctx context.Context, query string, start, end time.Time, limit int) (*tempoapi.Traces, error) {
	if limit < MinLimit || limit > MaxLimit {
		return nil, &InvalidLimitError{Limit: limit}
	}

	var (
		lg      = c.logger(ctx)
		tracker = c.tracker()
	)
	api, err := c.api()
	if err != nil {
		err = errors.Wrap(err, "create client")
		c.record(ctx, tracker, query, 0, 0, start, end, err)
		return nil, err
	}

	req := tempoapi.SearchRequest{
		Query: query,
		Start: toNanos(start),
		End:   toNanos(end),
		Limit: limit,
	}
	lg.Debug("Executing query",
		zap.String("query", query),
		zap.Int("limit", limit),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	began := time.Now()
	result, err := api.Search(qctx, req)
	elapsed := time.Since(began)
	if err != nil {
		err = classifyQueryError(err)
		c.record(ctx, tracker, query, elapsed, 0, start, end, err)
		lg.Error("Query failed",
			zap.String("query", query),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	lg.Debug("Query succeeded",
		zap.Int("traces", len(result.Traces)),
		zap.Duration("elapsed", elapsed),
	)
	c.record(ctx, tracker, query, elapsed, len(result.Traces), start, end, nil)
	return result, nil
}

// ExecuteQuery executes a query using [Default].
func ExecuteQuery(ctx context.Context, query string, start, end time.Time, limit int) (*tempoapi.Traces, error) {
	return Default.ExecuteQuery(ctx, query, start, end, limit)
}

func (c *Client) record(ctx context.Context, tracker QueryTracker, query string, elapsed time.Duration, count int, start, end time.Time, qerr error) {
	if tracker == nil {
		return
	}
	stats := QueryStats{
		Hash:        tracker.HashQuery(query),
		Query:       query,
		Duration:    elapsed,
		ResultCount: count,
		Start:       start,
		End:         end,
		Success:     qerr == nil,
	}
	if qerr != nil {
		stats.Error = qerr.Error()
	}
	tracker.Record(ctx, stats)
}

// toNanos converts a wall-clock instant to epoch nanoseconds at millisecond
// precision, matching the wire contract.
func toNanos(t time.Time) int64 {
	return t.UnixMilli() * 1_000_000
}

// classifyQueryError maps a raw search failure to the public taxonomy.
func classifyQueryError(err error) error {
	var status *tempoapi.ErrorStatusCode
	switch {
	case errors.As(err, &status):
		return &QueryError{StatusCode: status.StatusCode, Message: status.Message}
	case errors.Is(err, context.DeadlineExceeded):
		return &TimeoutError{Timeout: queryTimeout}
	case isTransportError(err):
		return &FetchError{Err: err}
	default:
		return errors.Wrap(err, "unexpected error")
	}
}

func isTransportError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
