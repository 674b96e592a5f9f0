package spangeo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-faster/tempoquery/tempoapi"
)

func TestFlattenAttributes(t *testing.T) {
	attrs := []tempoapi.KeyValue{
		{Key: "geo.city", Value: tempoapi.NewStringValue("Antalya")},
		{Key: "geo.latitude", Value: tempoapi.NewDoubleValue(36.8969)},
		{Key: "http.status_code", Value: tempoapi.NewIntValue(200)},
		{Key: "cache.hit", Value: tempoapi.NewBoolValue(true)},
		{Key: "empty", Value: tempoapi.AnyValue{}},
	}

	require.Equal(t, map[string]string{
		"geo.city":         "Antalya",
		"geo.latitude":     "36.8969",
		"http.status_code": "200",
		"cache.hit":        "true",
	}, FlattenAttributes(attrs))
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		attrs    map[string]string
		lat, lon float64
		ok       bool
	}{
		{map[string]string{AttrLatitude: "36.9", AttrLongitude: "30.7"}, 36.9, 30.7, true},
		{map[string]string{AttrLatitude: "-90", AttrLongitude: "-180"}, -90, -180, true},
		{map[string]string{AttrLatitude: "36.9"}, 0, 0, false},
		{map[string]string{AttrLongitude: "30.7"}, 0, 0, false},
		{map[string]string{AttrLatitude: "", AttrLongitude: "30.7"}, 0, 0, false},
		{map[string]string{AttrLatitude: "north", AttrLongitude: "30.7"}, 0, 0, false},
		{map[string]string{AttrLatitude: "36.9", AttrLongitude: "east"}, 0, 0, false},
		{map[string]string{}, 0, 0, false},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("Test%d", i+1), func(t *testing.T) {
			lat, lon, ok := ParseCoordinates(tt.attrs)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.lat, lat)
			require.Equal(t, tt.lon, lon)
		})
	}
}

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{0, 0, true},
		{-90, -180, true},
		{90, 180, true},
		{91, 0, false},
		{-91, 0, false},
		{0, 181, false},
		{0, -181, false},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("Test%d", i+1), func(t *testing.T) {
			require.Equal(t, tt.want, ValidCoordinates(tt.lat, tt.lon))
		})
	}
}
