package spangeo

import (
	"strconv"

	"github.com/go-faster/tempoquery/tempoapi"
)

// Geolocation attribute keys.
const (
	AttrLatitude    = "geo.latitude"
	AttrLongitude   = "geo.longitude"
	AttrCountry     = "geo.country"
	AttrCountryCode = "geo.country_code"
	AttrCity        = "geo.city"
	AttrTimezone    = "geo.timezone"
)

// Source tells which storage location a [Location] was extracted from.
type Source string

// Possible location sources.
const (
	// SourcePrimarySpan means the first span of the trace's span-set.
	SourcePrimarySpan Source = "primary-span"
	// SourceSecondarySpan means a nested geoip lookup child span.
	SourceSecondarySpan Source = "secondary-span"
)

// Location is a geographic origin of a trace. Values are immutable after
// creation; every lookup produces a fresh one.
type Location struct {
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode,omitempty"`
	City        string  `json:"city,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone,omitempty"`
	Source      Source  `json:"source"`
}

// FlattenAttributes flattens an attribute list into a key to string map.
// Every populated variant is stringified uniformly; attributes with no
// populated variant are skipped.
func FlattenAttributes(attrs []tempoapi.KeyValue) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		if kv.Value.IsZero() {
			continue
		}
		m[kv.Key] = kv.Value.AsString()
	}
	return m
}

// ParseCoordinates parses geo.latitude and geo.longitude from flattened
// attributes. Reports ok as false when either is absent, empty or
// non-numeric. Range is not checked here, see [ValidCoordinates].
func ParseCoordinates(attrs map[string]string) (lat, lon float64, ok bool) {
	rawLat, rawLon := attrs[AttrLatitude], attrs[AttrLongitude]
	if rawLat == "" || rawLon == "" {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// ValidCoordinates reports whether lat lies in [-90, 90] and lon in
// [-180, 180], boundaries inclusive.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
