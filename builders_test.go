package tempoquery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildFingerprintQuery(t *testing.T) {
	require.Equal(t, `{span.fingerprint = "abc123"}`, BuildFingerprintQuery("abc123"))
}

func TestBuildSessionQuery(t *testing.T) {
	require.Equal(t, `{span.session.id = "sess-1"}`, BuildSessionQuery("sess-1"))
}

func TestBuildStatusCodeQuery(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		want     string
	}{
		{"Range", 500, 599, "{span.http.status_code >= 500 && span.http.status_code <= 599}"},
		{"Exact", 404, 0, "{span.http.status_code = 404}"},
		{"SingleCodeRange", 500, 500, "{span.http.status_code >= 500 && span.http.status_code <= 500}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BuildStatusCodeQuery(tt.min, tt.max))
		})
	}
}

func TestHashQuery(t *testing.T) {
	a := HashQuery(`{span.fingerprint = "abc"}`)
	b := HashQuery(`{span.fingerprint = "abc"}`)
	c := HashQuery(`{span.fingerprint = "def"}`)

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, 32)
}
