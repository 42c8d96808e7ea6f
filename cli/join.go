package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dot5enko/simple-range-join/index"
	"github.com/dot5enko/simple-range-join/io"
	"github.com/dot5enko/simple-range-join/manager"
	"github.com/dot5enko/simple-range-join/manager/query"
	"github.com/dot5enko/simple-range-join/ops"
	"github.com/dot5enko/simple-range-join/schema"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type JoinOptions struct {
	Primary string
	Lookup  string

	Probe string
	Lower string
	Upper string

	LowerOp string
	UpperOp string
	Where   []string

	How              string
	Out              string
	ChunkRows        int
	Suffix           string
	SkipIncomparable bool
	Linear           bool
}

func NewJoinCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JoinOptions{}

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a primary csv against an interval lookup csv",
		Long: `Every primary row is matched against the lookup rows whose
[lower, upper] interval contains the probe value. Files ending with .lz4
are read and written lz4 compressed.

Cells are read as null when empty, then as integer or float when written in
plain decimal notation, then as RFC 3339 time, otherwise as string. NaN, Inf,
hex notation and numbers with leading zeros such as 01234 stay strings.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoin(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Primary, "primary", "", "primary table csv")
	cmd.Flags().StringVar(&opts.Lookup, "lookup", "", "lookup table csv")
	cmd.Flags().StringVar(&opts.Probe, "probe", "", "primary column probed against the intervals")
	cmd.Flags().StringVar(&opts.Lower, "lower", "", "lookup lower bound column")
	cmd.Flags().StringVar(&opts.Upper, "upper", "", "lookup upper bound column")
	cmd.Flags().StringVar(&opts.LowerOp, "lower-op", "<=", "lower bound operator, < or <=")
	cmd.Flags().StringVar(&opts.UpperOp, "upper-op", "<=", "upper bound operator, < or <=")
	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, "condition term like `SomeValue >= Low`, replaces the probe and bound flags")
	cmd.Flags().StringVar(&opts.How, "how", "left", "join type, inner or left")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "result csv, stdout when empty")
	cmd.Flags().IntVar(&opts.ChunkRows, "chunk-rows", query.DefaultChunkRows, "primary rows per worker task")
	cmd.Flags().StringVar(&opts.Suffix, "suffix", query.DefaultSuffix, "suffix for lookup columns clashing with primary ones")
	cmd.Flags().BoolVar(&opts.SkipIncomparable, "skip-incomparable", false, "treat probe values of another type as unmatched")
	cmd.Flags().BoolVar(&opts.Linear, "linear", false, "scan every interval per probe instead of using the tree")

	cmd.MarkFlagRequired("primary")
	cmd.MarkFlagRequired("lookup")

	return cmd
}

func joinCondition(opts *JoinOptions) (query.JoinCondition, error) {

	if len(opts.Where) > 0 {
		terms := make([]query.BoundCondition, 0, len(opts.Where))
		for _, text := range opts.Where {
			term, err := query.ParseBoundCondition(text)
			if err != nil {
				return query.JoinCondition{}, err
			}
			terms = append(terms, term)
		}
		return query.ConditionFromTerms(terms...)
	}

	if opts.Probe == "" || opts.Lower == "" || opts.Upper == "" {
		return query.JoinCondition{}, fmt.Errorf("--probe, --lower and --upper are required without --where")
	}

	lowerOp, err := ops.ParseCompareOp(opts.LowerOp)
	if err != nil {
		return query.JoinCondition{}, err
	}
	upperOp, err := ops.ParseCompareOp(opts.UpperOp)
	if err != nil {
		return query.JoinCondition{}, err
	}

	return query.NewJoinCondition(opts.Probe, opts.Lower, opts.Upper, lowerOp, upperOp)
}

func runJoin(cmd *cobra.Command, rootOpts *RootOptions, opts *JoinOptions) error {

	how, err := query.ParseJoinType(opts.How)
	if err != nil {
		return err
	}

	cond, err := joinCondition(opts)
	if err != nil {
		return err
	}

	strategy := index.TreeStrategy
	if opts.Linear {
		strategy = index.LinearStrategy
	}

	m := manager.New(manager.Config{
		Workers:          rootOpts.Workers,
		ChunkRows:        opts.ChunkRows,
		SkipIncomparable: opts.SkipIncomparable,
		Suffix:           opts.Suffix,
		Strategy:         strategy,
	})

	lookup, err := io.LoadTable(opts.Lookup)
	if err != nil {
		return err
	}

	idx, err := m.BuildIndex(lookup, cond.Lower, cond.Upper)
	if err != nil {
		return reportSchemaError(cmd, err)
	}

	primary, err := io.LoadTable(opts.Primary)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := m.Join(ctx, primary, idx, cond, query.JoinOptions{
		How:              how,
		SkipIncomparable: opts.SkipIncomparable,
		Suffix:           opts.Suffix,
		ChunkRows:        opts.ChunkRows,
	})
	if err != nil {
		return reportSchemaError(cmd, err)
	}

	if opts.Out == "" {
		if err := io.WriteTable(cmd.OutOrStdout(), res.Table); err != nil {
			return err
		}
	} else if err := io.SaveTable(opts.Out, res.Table); err != nil {
		return err
	}

	if rootOpts.Verbose || opts.Out != "" {
		color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(),
			"%d primary rows -> %d result rows (%d matched, %d unmatched, %d skipped) in %s\n",
			res.Stats.PrimaryRows, res.Stats.ResultRows, res.Stats.MatchedRows, res.Stats.UnmatchedRows,
			res.Stats.SkippedIncomparable, res.Stats.Took,
		)
	}

	return nil
}

// reportSchemaError tells the user which input file needs fixing
func reportSchemaError(cmd *cobra.Command, err error) error {
	se, ok := schema.AsSchemaError(err)
	if !ok {
		return err
	}

	side := "primary"
	if se.Stage == schema.IndexStage {
		side = "lookup"
	}

	color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "bad %s input\n", side)
	return err
}
