package manager

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/dot5enko/simple-range-join/bits"
	"github.com/dot5enko/simple-range-join/index"
	"github.com/dot5enko/simple-range-join/manager/executor"
	"github.com/dot5enko/simple-range-join/manager/query"
	"github.com/dot5enko/simple-range-join/ops"
	"github.com/dot5enko/simple-range-join/schema"
)

type JoinStats struct {
	executor.ProbeStats

	// lookup rows that matched at least one primary row
	LookupMatched int

	Chunks  int
	Workers int
	Took    time.Duration
}

type JoinResult struct {
	Table *schema.Table
	Stats JoinStats
}

// ConditionalJoin joins every primary row to the index intervals accepted by
// `lower <lowerOp> probe <upperOp> upper`
func (sm *Manager) ConditionalJoin(
	ctx context.Context,
	primary *schema.Table,
	idx *index.IntervalIndex,
	probeColumn string,
	lowerOp, upperOp ops.CompareOp,
	how query.JoinType,
) (*JoinResult, error) {

	cond, condErr := query.NewJoinCondition(probeColumn, "", "", lowerOp, upperOp)
	if condErr != nil {
		return nil, schema.NewSchemaError(schema.JoinStage, probeColumn, -1, condErr, "")
	}

	return sm.Join(ctx, primary, idx, cond, sm.options(how))
}

// JoinWhere is ConditionalJoin with the condition given as text terms
// like `SomeValue >= Low` and `SomeValue < High`
func (sm *Manager) JoinWhere(ctx context.Context, primary *schema.Table, idx *index.IntervalIndex, how query.JoinType, conditions ...string) (*JoinResult, error) {

	terms := make([]query.BoundCondition, 0, len(conditions))

	for _, text := range conditions {
		term, err := query.ParseBoundCondition(text)
		if err != nil {
			return nil, schema.NewSchemaError(schema.JoinStage, "", -1, err, "")
		}
		terms = append(terms, term)
	}

	cond, err := query.ConditionFromTerms(terms...)
	if err != nil {
		return nil, schema.NewSchemaError(schema.JoinStage, "", -1, err, "")
	}

	return sm.Join(ctx, primary, idx, cond, sm.options(how))
}

func (sm *Manager) Join(
	ctx context.Context,
	primary *schema.Table,
	idx *index.IntervalIndex,
	cond query.JoinCondition,
	options query.JoinOptions,
) (*JoinResult, error) {

	plan, planErr := sm.Planner.Plan(primary, idx, cond, options)
	if planErr != nil {
		return nil, planErr
	}

	rows, stats, execErr := sm.executePlan(ctx, &plan)
	if execErr != nil {
		return nil, execErr
	}

	slog.Info("join info",
		"index", idx.ID().String(),
		"how", options.How.String(),
		"condition", plan.Condition.String(),
		"primary_rows", stats.PrimaryRows,
		"result_rows", stats.ResultRows,
		"candidates", stats.Candidates,
		"rejected", stats.Rejected,
		"took", stats.Took,
	)

	return &JoinResult{
		Table: &schema.Table{
			Name:    primary.Name,
			Columns: plan.OutputColumns(),
			Rows:    rows,
		},
		Stats: stats,
	}, nil
}

// JoinRows probes a stream of primary rows on the calling goroutine and
// hands every result row to sink in input order. columns lists the columns
// every streamed row carries.
func (sm *Manager) JoinRows(
	ctx context.Context,
	rows iter.Seq[schema.Row],
	columns []string,
	idx *index.IntervalIndex,
	cond query.JoinCondition,
	options query.JoinOptions,
	sink func(schema.Row) error,
) (JoinStats, error) {

	start := time.Now()

	header := &schema.Table{Name: "stream", Columns: columns}

	plan, planErr := sm.Planner.Plan(header, idx, cond, options)
	if planErr != nil {
		return JoinStats{}, planErr
	}

	prober := executor.NewRowProber(&plan)

	var (
		stats   executor.ProbeStats
		matched bits.Bitfield
	)

	rowIdx := 0
	for row := range rows {

		if rowIdx%plan.Options.ChunkRows == 0 {
			if err := ctx.Err(); err != nil {
				return JoinStats{}, fmt.Errorf("join cancelled at row %d: %w", rowIdx, err)
			}
		}

		if err := prober.Probe(row, rowIdx, &matched, &stats, sink); err != nil {
			return JoinStats{}, err
		}

		rowIdx++
	}

	return JoinStats{
		ProbeStats:    stats,
		LookupMatched: matched.Count(),
		Chunks:        (rowIdx + plan.Options.ChunkRows - 1) / plan.Options.ChunkRows,
		Workers:       1,
		Took:          time.Since(start),
	}, nil
}
