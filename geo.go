package tempoquery

import "github.com/go-faster/tempoquery/spangeo"

// GeoLocation is kept for callers of the pre-migration API. New code
// should use [spangeo.Location] directly.
type GeoLocation = spangeo.Location

// NewGeoReader creates a [spangeo.Reader], filling the backend URL and
// logger from the process-wide registry when not overridden.
func NewGeoReader(opts spangeo.Options) (*spangeo.Reader, error) {
	if opts.BaseURL == "" && opts.Client == nil {
		opts.BaseURL = BaseURL()
	}
	if opts.Logger == nil {
		opts.Logger = Logger()
	}
	return spangeo.NewReader(opts)
}
