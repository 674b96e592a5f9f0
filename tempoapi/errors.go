package tempoapi

import "fmt"

// ErrorStatusCode is an error response from the backend.
type ErrorStatusCode struct {
	StatusCode int
	Message    string
}

// Error implements error.
func (e *ErrorStatusCode) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}
