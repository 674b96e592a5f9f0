package main

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/go-faster/tempoquery"
	"github.com/go-faster/tempoquery/spangeo"
	"github.com/go-faster/tempoquery/tempoapi"
)

func newGeoCommand() *cobra.Command {
	var maxConcurrency int
	cmd := &cobra.Command{
		Use:   "geo <trace-id>...",
		Short: "Resolve geographic origins of traces",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := tempoquery.NewGeoReader(spangeo.Options{
				MaxConcurrency: maxConcurrency,
			})
			if err != nil {
				return errors.Wrap(err, "create reader")
			}

			// Bare IDs carry no span-set, so every lookup takes the
			// secondary path.
			traces := make([]tempoapi.TraceSearchMetadata, len(args))
			for i, id := range args {
				traces[i] = tempoapi.TraceSearchMetadata{TraceID: id}
			}

			for id, loc := range reader.ReadGeoBulk(cmd.Context(), traces) {
				if loc == nil {
					fmt.Printf("%s  no geo data\n", id)
					continue
				}
				fmt.Printf("%s  %s, %s (%f, %f) via %s\n",
					id, loc.City, loc.Country, loc.Latitude, loc.Longitude, loc.Source)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxConcurrency, "max-concurrency", spangeo.DefaultMaxConcurrency, "concurrent trace fetches")
	return cmd
}
