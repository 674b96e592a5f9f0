package tempoquery

import (
	"context"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-faster/tempoquery/tempoapi"
)

// BatchQuery is a single query of a batch. A zero Limit means
// [DefaultLimit].
type BatchQuery struct {
	Query string
	Start time.Time
	End   time.Time
	Limit int
}

// BatchItem is a per-query outcome. Exactly one of Data and Error is
// meaningful, selected by Success.
type BatchItem struct {
	Query    string
	Success  bool
	Data     *tempoapi.Traces
	Error    string
	Duration time.Duration
}

// BatchResult collects the outcomes of one batch. Items mirror the input
// order regardless of completion order.
type BatchResult struct {
	Items     []BatchItem
	Succeeded int
	Failed    int
	// Duration is measured from batch dispatch to completion of the
	// slowest member.
	Duration time.Duration
}

// ExecuteBatch fans out all queries concurrently and waits for every one
// to settle. A failing query never cancels or affects its siblings;
// failures surface as items with Success set to false. The returned items
// are ordered exactly as the input.
func (c *Client) ExecuteBatch(ctx context.Context, queries []BatchQuery) *BatchResult {
	var (
		lg      = c.logger(ctx)
		batchID = uuid.New().String()
		items   = make([]BatchItem, len(queries))
	)

	began := time.Now()
	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			limit := q.Limit
			if limit == 0 {
				limit = DefaultLimit
			}
			qctx := zctx.With(ctx,
				zap.String("batch_id", batchID),
				zap.Int("batch_index", i),
			)

			started := time.Now()
			data, err := c.ExecuteQuery(qctx, q.Query, q.Start, q.End, limit)
			item := BatchItem{
				Query:    q.Query,
				Duration: time.Since(started),
			}
			if err != nil {
				item.Error = err.Error()
			} else {
				item.Success = true
				item.Data = data
			}
			items[i] = item
			return nil
		})
	}
	// Goroutines never return errors; failures are captured per item.
	_ = g.Wait()

	result := &BatchResult{
		Items:    items,
		Duration: time.Since(began),
	}
	for _, item := range items {
		if item.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	lg.Info("Batch finished",
		zap.String("batch_id", batchID),
		zap.Int("queries", len(queries)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", result.Duration),
	)
	return result
}

// ExecuteBatch executes a batch using [Default].
func ExecuteBatch(ctx context.Context, queries []BatchQuery) *BatchResult {
	return Default.ExecuteBatch(ctx, queries)
}
