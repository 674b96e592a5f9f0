package tempoquery

import (
	"fmt"
	"time"
)

// Limit bounds accepted by [Client.ExecuteQuery].
const (
	MinLimit = 1
	MaxLimit = 1000
	// DefaultLimit is applied by convenience wrappers and batch items
	// that leave the limit unset.
	DefaultLimit = 20
)

// InvalidLimitError reports a limit outside [MinLimit, MaxLimit]. It is
// returned before any network activity.
type InvalidLimitError struct {
	Limit int
}

// Error implements error.
func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("limit must be between %d and %d, got %d", MinLimit, MaxLimit, e.Limit)
}

// TimeoutError reports that a query exceeded the execution timeout.
type TimeoutError struct {
	Timeout time.Duration
}

// Error implements error.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("query timed out after %s", e.Timeout)
}

// FetchError reports a transport-level failure, e.g. a refused connection.
type FetchError struct {
	Err error
}

// Error implements error.
func (e *FetchError) Error() string {
	return fmt.Sprintf("query fetch failed: %s", e.Err)
}

// Unwrap returns the underlying transport error.
func (e *FetchError) Unwrap() error { return e.Err }

// QueryError reports a non-success status returned by the backend.
type QueryError struct {
	StatusCode int
	Message    string
}

// Error implements error.
func (e *QueryError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("query failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("query failed with status %d: %s", e.StatusCode, e.Message)
}
