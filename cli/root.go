package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

type RootOptions struct {
	Verbose bool
	Workers int
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rangejoin",
		Short: "Join tables on probe values falling within lookup intervals",

		// main reports the returned error once
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.Verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			} else {
				slog.SetLogLoggerLevel(slog.LevelWarn)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().IntVar(&opts.Workers, "workers", 0, "probe workers, defaults to the number of cpus")

	cmd.AddCommand(NewJoinCommand(opts))
	cmd.AddCommand(NewIndexCommand(opts))
	cmd.AddCommand(NewGenerateCommand())

	return cmd
}
