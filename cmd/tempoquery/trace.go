package main

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/go-faster/tempoquery"
	"github.com/go-faster/tempoquery/tempoapi"
)

func newTraceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trace <trace-id>",
		Short: "Fetch a raw trace by identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := tempoapi.NewClient(tempoquery.BaseURL(), tempoapi.ClientOptions{
				APIKey: tempoquery.APIKey(),
			})
			if err != nil {
				return errors.Wrap(err, "create client")
			}

			raw, err := api.TraceByID(cmd.Context(), args[0])
			if err != nil {
				return errors.Wrap(err, "fetch trace")
			}

			var spans int
			for _, batch := range raw.Batches {
				for _, ss := range batch.ScopeSpans {
					spans += len(ss.Spans)
					for _, span := range ss.Spans {
						fmt.Printf("%s  %s\n", span.SpanID, span.Name)
					}
				}
			}
			fmt.Printf("%d batches, %d spans\n", len(raw.Batches), spans)
			return nil
		},
	}
}
