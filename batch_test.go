package tempoquery

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-faster/tempoquery/tempoapi"
)

// batchHandler delays and fails per-query, keyed by marker attributes in
// the query text.
func batchHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tempoapi.SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch req.Query {
		case "{slow}":
			time.Sleep(150 * time.Millisecond)
			_, _ = w.Write([]byte(`{"traces": [{"traceID": "slow"}]}`))
		case "{fail}":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "broken shard"}`))
		default:
			_, _ = w.Write([]byte(`{"traces": [{"traceID": "fast"}]}`))
		}
	}
}

func TestExecuteBatchOrder(t *testing.T) {
	_, client, _ := testServer(t, batchHandler(t))

	var (
		end   = time.Now()
		start = end.Add(-time.Hour)
	)
	queries := []BatchQuery{
		{Query: "{slow}", Start: start, End: end},
		{Query: "{fast}", Start: start, End: end},
		{Query: "{fail}", Start: start, End: end},
		{Query: "{fast}", Start: start, End: end, Limit: 5},
	}

	result := client.ExecuteBatch(context.Background(), queries)
	require.Len(t, result.Items, len(queries))

	// Result order mirrors input order even though the slow query
	// finishes last.
	for i, item := range result.Items {
		require.Equal(t, queries[i].Query, item.Query)
	}
	require.True(t, result.Items[0].Success)
	require.Equal(t, "slow", result.Items[0].Data.Traces[0].TraceID)
	require.True(t, result.Items[1].Success)

	// One failure neither blocks nor alters sibling results.
	require.False(t, result.Items[2].Success)
	require.Nil(t, result.Items[2].Data)
	require.Contains(t, result.Items[2].Error, "broken shard")
	require.True(t, result.Items[3].Success)

	require.Equal(t, 3, result.Succeeded)
	require.Equal(t, 1, result.Failed)

	// Batch time covers the slowest member; items time their own dispatch.
	require.GreaterOrEqual(t, result.Duration, result.Items[0].Duration)
	require.Less(t, result.Items[1].Duration, result.Items[0].Duration)
}

func TestExecuteBatchEmpty(t *testing.T) {
	_, client, _ := testServer(t, batchHandler(t))

	result := client.ExecuteBatch(context.Background(), nil)
	require.Empty(t, result.Items)
	require.Zero(t, result.Succeeded)
	require.Zero(t, result.Failed)
}

func TestExecuteBatchDefaultLimit(t *testing.T) {
	_, client, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req tempoapi.SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, DefaultLimit, req.Limit)
		_, _ = w.Write([]byte(`{"traces": []}`))
	})

	end := time.Now()
	result := client.ExecuteBatch(context.Background(), []BatchQuery{
		{Query: "{}", Start: end.Add(-time.Hour), End: end},
	})
	require.Equal(t, 1, result.Succeeded)
}
