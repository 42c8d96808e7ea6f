package query

import (
	"fmt"

	"github.com/dot5enko/simple-range-join/index"
	"github.com/dot5enko/simple-range-join/schema"
)

type JoinPlanner struct {
}

func NewJoinPlanner() *JoinPlanner {
	return &JoinPlanner{}
}

// Plan validates the join inputs and splits primary rows into chunks.
// Nothing is probed here.
func (jp *JoinPlanner) Plan(
	primary *schema.Table,
	idx *index.IntervalIndex,
	condition JoinCondition,
	options JoinOptions,
) (JoinPlan, error) {

	if idx == nil {
		return JoinPlan{}, schema.NewSchemaError(schema.JoinStage, "", -1, schema.ErrNilIndex, "build the index before joining")
	}

	if primary == nil {
		return JoinPlan{}, schema.NewSchemaError(schema.JoinStage, condition.Probe, -1, schema.ErrColumnNotFound, "primary table is nil")
	}

	if !primary.HasColumn(condition.Probe) {
		return JoinPlan{}, schema.NewSchemaError(schema.JoinStage, condition.Probe, -1, schema.ErrColumnNotFound, "probe column not found on table `%s`", primary.Name)
	}

	// the index decides which lookup columns are bounds, a condition naming
	// other columns was written against another index
	meta := idx.Meta()
	if condition.Lower != "" && condition.Lower != meta.LowerColumn {
		return JoinPlan{}, schema.NewSchemaError(schema.JoinStage, condition.Lower, -1, schema.ErrColumnNotFound, "index %s is built on lower column `%s`", meta.ID.String(), meta.LowerColumn)
	}
	if condition.Upper != "" && condition.Upper != meta.UpperColumn {
		return JoinPlan{}, schema.NewSchemaError(schema.JoinStage, condition.Upper, -1, schema.ErrColumnNotFound, "index %s is built on upper column `%s`", meta.ID.String(), meta.UpperColumn)
	}

	if !condition.Evaluator.LowerOp.Valid() || !condition.Evaluator.UpperOp.Valid() {
		return JoinPlan{}, schema.NewSchemaError(schema.JoinStage, condition.Probe, -1, schema.ErrUnknownOperator, "%s", condition.Evaluator.String())
	}

	switch options.How {
	case InnerJoin, LeftJoin:
	default:
		return JoinPlan{}, schema.NewSchemaError(schema.JoinStage, "", -1, schema.ErrUnknownJoinType, "%s", options.How.String())
	}

	if options.ChunkRows <= 0 {
		options.ChunkRows = DefaultChunkRows
	}
	if options.Suffix == "" {
		options.Suffix = DefaultSuffix
	}

	condition.Lower = meta.LowerColumn
	condition.Upper = meta.UpperColumn

	plan := JoinPlan{
		Primary:     primary,
		Index:       idx,
		Condition:   condition,
		Options:     options,
		ProbeColumn: condition.Probe,
		Output:      resolveSelectors(primary.Columns, idx.PayloadColumns(), options.Suffix),
		Chunks:      SplitIntoChunks(primary.Len(), options.ChunkRows),
	}

	return plan, nil
}

func SplitIntoChunks(rows int, chunkRows int) []ProbeChunk {

	if chunkRows <= 0 {
		panic(fmt.Sprintf("this should not happen. never. chunk size %d", chunkRows))
	}

	chunks := make([]ProbeChunk, 0, (rows+chunkRows-1)/chunkRows)

	for start := 0; start < rows; start += chunkRows {
		chunks = append(chunks, ProbeChunk{
			ChunkIdx: len(chunks),
			Start:    start,
			End:      min(start+chunkRows, rows),
		})
	}

	return chunks
}
