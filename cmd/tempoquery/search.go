package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/go-faster/tempoquery"
	"github.com/go-faster/tempoquery/tempoapi"
)

type searchFlags struct {
	Queries []string
	Since   time.Duration
	Limit   int
}

func newSearchCommand() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Execute one or more TraceQL queries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(f.Queries) == 0 {
				return errors.New("at least one query is required")
			}
			var (
				ctx   = cmd.Context()
				end   = time.Now()
				start = end.Add(-f.Since)
			)

			if len(f.Queries) == 1 {
				result, err := tempoquery.ExecuteQuery(ctx, f.Queries[0], start, end, f.Limit)
				if err != nil {
					return errors.Wrap(err, "execute query")
				}
				printTraces(result)
				return nil
			}

			queries := make([]tempoquery.BatchQuery, len(f.Queries))
			for i, q := range f.Queries {
				queries[i] = tempoquery.BatchQuery{
					Query: q,
					Start: start,
					End:   end,
					Limit: f.Limit,
				}
			}
			batch := tempoquery.ExecuteBatch(ctx, queries)
			for _, item := range batch.Items {
				if !item.Success {
					color.Red("FAIL %s: %s", item.Query, item.Error)
					continue
				}
				color.Green("OK   %s (%d traces, %s)", item.Query, len(item.Data.Traces), item.Duration.Round(time.Millisecond))
			}
			fmt.Printf("%d succeeded, %d failed in %s\n",
				batch.Succeeded, batch.Failed, batch.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&f.Queries, "query", "q", nil, "TraceQL query, repeatable")
	cmd.Flags().DurationVar(&f.Since, "since", time.Hour, "look-back window")
	cmd.Flags().IntVar(&f.Limit, "limit", tempoquery.DefaultLimit, "maximum traces per query")
	return cmd
}

func printTraces(result *tempoapi.Traces) {
	for _, trace := range result.Traces {
		fmt.Printf("%s  %s/%s  %dms\n",
			trace.TraceID, trace.RootServiceName, trace.RootTraceName, trace.DurationMs)
	}
	m := result.Metrics
	fmt.Printf("%d traces, inspected %d traces / %d spans / %s\n",
		len(result.Traces), m.InspectedTraces, m.InspectedSpans, humanize.Bytes(uint64(m.InspectedBytes)))
}
