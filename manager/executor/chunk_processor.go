package executor

import (
	"github.com/dot5enko/simple-range-join/bits"
	"github.com/dot5enko/simple-range-join/index"
	"github.com/dot5enko/simple-range-join/manager/query"
	"github.com/dot5enko/simple-range-join/ops"
	"github.com/dot5enko/simple-range-join/schema"
)

type ProbeStats struct {
	PrimaryRows int
	ResultRows  int

	MatchedRows   int
	UnmatchedRows int

	// inclusive candidates visited and the ones the evaluator dropped
	Candidates int
	Rejected   int

	SkippedIncomparable int
}

func (s *ProbeStats) Add(other ProbeStats) {
	s.PrimaryRows += other.PrimaryRows
	s.ResultRows += other.ResultRows
	s.MatchedRows += other.MatchedRows
	s.UnmatchedRows += other.UnmatchedRows
	s.Candidates += other.Candidates
	s.Rejected += other.Rejected
	s.SkippedIncomparable += other.SkippedIncomparable
}

type ChunkResult struct {
	ChunkIdx int

	Rows  []schema.Row
	Stats ProbeStats
}

// RowProber joins single primary rows against the plan index.
// It holds no mutable state and is shared by all workers.
type RowProber struct {
	idx    *index.IntervalIndex
	ev     ops.Evaluator
	probe  string
	output []query.Selector

	how              query.JoinType
	skipIncomparable bool
}

func NewRowProber(plan *query.JoinPlan) *RowProber {
	return &RowProber{
		idx:              plan.Index,
		ev:               plan.Condition.Evaluator,
		probe:            plan.ProbeColumn,
		output:           plan.Output,
		how:              plan.Options.How,
		skipIncomparable: plan.Options.SkipIncomparable,
	}
}

// Probe emits the result rows of one primary row. rowIdx is the position of
// the row in the primary input and is reported on schema errors.
func (p *RowProber) Probe(row schema.Row, rowIdx int, matched *bits.Bitfield, stats *ProbeStats, emit func(schema.Row) error) error {

	value, present := row[p.probe]
	if !present {
		return schema.NewSchemaError(schema.JoinStage, p.probe, rowIdx, schema.ErrColumnNotFound, "primary row has no probe column")
	}

	key := schema.KeyOf(value)
	stats.PrimaryRows++

	matches := 0

	switch {
	case key.IsNull():
		// never matches

	case !key.Class.Orderable() || (p.idx.Class().Orderable() && key.Class != p.idx.Class()):
		if !p.skipIncomparable {
			return schema.NewSchemaError(
				schema.JoinStage, p.probe, rowIdx, schema.ErrIncomparable,
				"probe value `%v` is %s, index bounds are %s", value, key.Class.String(), p.idx.Class().String(),
			)
		}
		stats.SkippedIncomparable++

	default:
		for rec := range p.idx.Candidates(key) {
			stats.Candidates++

			if !p.ev.Matches(key, rec.Lower, rec.Upper) {
				stats.Rejected++
				continue
			}

			matches++
			matched.Set(rec.Position)

			if err := emit(p.combine(row, rec.Payload)); err != nil {
				return err
			}
		}
	}

	stats.ResultRows += matches

	if matches > 0 {
		stats.MatchedRows++
		return nil
	}

	stats.UnmatchedRows++

	if p.how == query.LeftJoin {
		stats.ResultRows++
		return emit(p.combine(row, nil))
	}

	return nil
}

// combine builds an output row, lookup columns are null when payload is nil
func (p *RowProber) combine(primary, payload schema.Row) schema.Row {

	out := make(schema.Row, len(p.output))

	for _, sel := range p.output {
		switch sel.Source {
		case query.SelectPrimary:
			out[sel.Alias] = primary[sel.Column]
		case query.SelectLookup:
			if payload == nil {
				out[sel.Alias] = nil
			} else {
				out[sel.Alias] = payload[sel.Column]
			}
		}
	}

	return out
}

func ExecutePlanForChunk(cache *ProbeThreadCache, prober *RowProber, plan *query.JoinPlan, chunk *query.ProbeChunk) (ChunkResult, error) {

	result := ChunkResult{ChunkIdx: chunk.ChunkIdx}

	cache.rows = cache.rows[:0]
	emit := func(row schema.Row) error {
		cache.rows = append(cache.rows, row)
		return nil
	}

	rows := plan.Primary.Rows

	for rowIdx := chunk.Start; rowIdx < chunk.End; rowIdx++ {
		if err := prober.Probe(rows[rowIdx], rowIdx, &cache.matched, &result.Stats, emit); err != nil {
			return ChunkResult{}, err
		}
	}

	// scratch is reused by the next chunk, the result keeps its own copy
	result.Rows = make([]schema.Row, len(cache.rows))
	copy(result.Rows, cache.rows)

	return result, nil
}
