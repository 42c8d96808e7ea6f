package cli

import (
	"fmt"

	"github.com/dot5enko/simple-range-join/io"
	"github.com/dot5enko/simple-range-join/manager"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewIndexCommand builds the index of a lookup file and prints its stats
func NewIndexCommand(rootOpts *RootOptions) *cobra.Command {

	var lookupPath, lower, upper string

	cmd := &cobra.Command{
		Use:          "index",
		Short:        "Validate a lookup csv and describe its interval index",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {

			lookup, err := io.LoadTable(lookupPath)
			if err != nil {
				return err
			}

			idx, err := manager.New(manager.Config{Workers: rootOpts.Workers}).BuildIndex(lookup, lower, upper)
			if err != nil {
				return reportSchemaError(cmd, err)
			}

			meta := idx.Meta()
			out := cmd.OutOrStdout()

			color.New(color.FgCyan).Fprintf(out, "index %s\n", meta.ID.String())
			fmt.Fprintf(out, "bounds    %s <= v <= %s (%s)\n", meta.LowerColumn, meta.UpperColumn, meta.Class.String())
			fmt.Fprintf(out, "rows      %d\n", meta.LookupRows)
			fmt.Fprintf(out, "intervals %d\n", meta.Records)
			fmt.Fprintf(out, "null      %d\n", meta.SkippedNull)
			fmt.Fprintf(out, "malformed %d\n", meta.Malformed)
			fmt.Fprintf(out, "disjoint  %t\n", meta.Disjoint)
			if !meta.Envelope.Empty() {
				fmt.Fprintf(out, "envelope  [%s, %s]\n", meta.Envelope.Min.String(), meta.Envelope.Max.String())
			}
			fmt.Fprintf(out, "took      %s\n", meta.BuildTook)

			return nil
		},
	}

	cmd.Flags().StringVar(&lookupPath, "lookup", "", "lookup table csv")
	cmd.Flags().StringVar(&lower, "lower", "", "lower bound column")
	cmd.Flags().StringVar(&upper, "upper", "", "upper bound column")

	cmd.MarkFlagRequired("lookup")
	cmd.MarkFlagRequired("lower")
	cmd.MarkFlagRequired("upper")

	return cmd
}
