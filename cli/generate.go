package cli

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/dot5enko/simple-range-join/io"
	"github.com/dot5enko/simple-range-join/schema"
	"github.com/spf13/cobra"
)

// GenerateIntervals returns n intervals on [0, space) with widths below maxWidth
func GenerateIntervals(rnd *rand.Rand, n int, space int64, maxWidth int64) *schema.Table {

	rows := make([]schema.Row, n)
	for i := range rows {
		low := rnd.Int63n(space)
		rows[i] = schema.Row{
			"Low":             low,
			"High":            low + rnd.Int63n(maxWidth),
			"ValueOfInterest": fmt.Sprintf("v%d", i),
		}
	}

	return schema.MustTable("lookup", []string{"Low", "High", "ValueOfInterest"}, rows)
}

func GenerateValues(rnd *rand.Rand, n int, space int64) *schema.Table {

	rows := make([]schema.Row, n)
	for i := range rows {
		rows[i] = schema.Row{"Id": int64(i), "SomeValue": rnd.Int63n(space)}
	}

	return schema.MustTable("primary", []string{"Id", "SomeValue"}, rows)
}

func NewGenerateCommand() *cobra.Command {

	var (
		primaryPath, lookupPath string
		primaryRows, lookupRows int
		space, maxWidth         int64
		seed                    int64
	)

	cmd := &cobra.Command{
		Use:          "generate",
		Short:        "Write random primary and lookup csv files",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {

			if space <= 0 || maxWidth <= 0 {
				return fmt.Errorf("space and width must be positive")
			}

			rnd := rand.New(rand.NewSource(seed))

			if err := io.SaveTable(lookupPath, GenerateIntervals(rnd, lookupRows, space, maxWidth)); err != nil {
				return err
			}
			if err := io.SaveTable(primaryPath, GenerateValues(rnd, primaryRows, space)); err != nil {
				return err
			}

			slog.Info("generated", "primary", primaryPath, "primary_rows", primaryRows, "lookup", lookupPath, "lookup_rows", lookupRows)
			return nil
		},
	}

	cmd.Flags().StringVar(&primaryPath, "primary", "primary.csv", "primary table csv")
	cmd.Flags().StringVar(&lookupPath, "lookup", "lookup.csv", "lookup table csv")
	cmd.Flags().IntVar(&primaryRows, "primary-rows", 100000, "rows in the primary table")
	cmd.Flags().IntVar(&lookupRows, "lookup-rows", 10000, "intervals in the lookup table")
	cmd.Flags().Int64Var(&space, "space", 50000, "values are drawn from [0, space)")
	cmd.Flags().Int64Var(&maxWidth, "width", 100, "max interval width")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")

	return cmd
}
