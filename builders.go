package tempoquery

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/tempoquery/tempoapi"
)

// BuildFingerprintQuery returns a TraceQL query matching spans with the
// given error fingerprint.
func BuildFingerprintQuery(fingerprint string) string {
	return fmt.Sprintf(`{span.fingerprint = %q}`, fingerprint)
}

// BuildSessionQuery returns a TraceQL query matching spans of one session.
func BuildSessionQuery(sessionID string) string {
	return fmt.Sprintf(`{span.session.id = %q}`, sessionID)
}

// BuildStatusCodeQuery returns a TraceQL query matching spans by HTTP
// status code. A positive maxCode selects the range [minCode, maxCode];
// otherwise the query matches minCode exactly.
func BuildStatusCodeQuery(minCode, maxCode int) string {
	if maxCode > 0 {
		return fmt.Sprintf("{span.http.status_code >= %d && span.http.status_code <= %d}", minCode, maxCode)
	}
	return fmt.Sprintf("{span.http.status_code = %d}", minCode)
}

// ExecuteFingerprintQuery searches traces by error fingerprint.
func (c *Client) ExecuteFingerprintQuery(ctx context.Context, fingerprint string, start, end time.Time) (*tempoapi.Traces, error) {
	return c.ExecuteQuery(ctx, BuildFingerprintQuery(fingerprint), start, end, DefaultLimit)
}

// ExecuteSessionQuery searches traces by session identifier.
func (c *Client) ExecuteSessionQuery(ctx context.Context, sessionID string, start, end time.Time) (*tempoapi.Traces, error) {
	return c.ExecuteQuery(ctx, BuildSessionQuery(sessionID), start, end, DefaultLimit)
}

// ExecuteStatusCodeQuery searches traces by HTTP status code or status
// code range.
func (c *Client) ExecuteStatusCodeQuery(ctx context.Context, minCode, maxCode int, start, end time.Time) (*tempoapi.Traces, error) {
	return c.ExecuteQuery(ctx, BuildStatusCodeQuery(minCode, maxCode), start, end, DefaultLimit)
}
