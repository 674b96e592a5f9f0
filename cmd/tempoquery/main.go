// Binary tempoquery is a command-line client for a Tempo-compatible
// tracing backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-faster/tempoquery"
)

func main() {
	var (
		addr  string
		key   string
		debug bool
	)
	rootCmd := &cobra.Command{
		Use:   "tempoquery",
		Short: "tempoquery queries a Tempo-compatible tracing backend",

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(*cobra.Command, []string) error {
			lg := zap.NewNop()
			if debug {
				var err error
				lg, err = zap.NewDevelopment()
				if err != nil {
					return errors.Wrap(err, "create logger")
				}
			}
			tempoquery.Configure(tempoquery.Config{
				Logger:  lg,
				BaseURL: addr,
				APIKey:  key,
			})
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "", "backend base URL (defaults to $TEMPO_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&key, "api-key", "", "bearer token")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	rootCmd.AddCommand(
		newSearchCommand(),
		newTraceCommand(),
		newGeoCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, ctx.Err()) {
			fmt.Fprintln(os.Stderr, "interrupted")
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
