// Package promtracker records query execution outcomes as Prometheus
// metrics.
package promtracker

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/go-faster/tempoquery"
)

var _ tempoquery.QueryTracker = (*Tracker)(nil)

// Tracker is a [tempoquery.QueryTracker] backed by Prometheus metrics.
type Tracker struct {
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	traces   prometheus.Counter
}

// New creates a Tracker registering its metrics with reg.
func New(reg prometheus.Registerer) *Tracker {
	factory := promauto.With(reg)
	return &Tracker{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tempoquery_queries_total",
			Help: "Executed trace queries by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tempoquery_query_duration_seconds",
			Help:    "Trace query execution time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		traces: factory.NewCounter(prometheus.CounterOpts{
			Name: "tempoquery_result_traces_total",
			Help: "Traces returned by successful queries.",
		}),
	}
}

// HashQuery implements [tempoquery.QueryTracker].
func (t *Tracker) HashQuery(query string) string {
	return tempoquery.HashQuery(query)
}

// Record implements [tempoquery.QueryTracker].
func (t *Tracker) Record(_ context.Context, stats tempoquery.QueryStats) {
	outcome := "success"
	if !stats.Success {
		outcome = "failure"
	}
	t.queries.WithLabelValues(outcome).Inc()
	t.duration.WithLabelValues(outcome).Observe(stats.Duration.Seconds())
	if stats.Success {
		t.traces.Add(float64(stats.ResultCount))
	}
}
