package index

import (
	"log/slog"
	"slices"
	"time"

	"github.com/dot5enko/simple-range-join/schema"
	"github.com/google/uuid"
)

type buildOptions struct {
	strategy Strategy
}

type Option func(*buildOptions)

func WithStrategy(s Strategy) Option {
	return func(o *buildOptions) {
		o.strategy = s
	}
}

// Build indexes every row of lookup as the interval [lowerColumn, upperColumn].
// Rows with a null bound or with lower > upper are left out of the index and
// counted in Meta. Any SchemaError aborts the build.
func Build(lookup *schema.Table, lowerColumn, upperColumn string, opts ...Option) (*IntervalIndex, error) {

	options := buildOptions{strategy: TreeStrategy}
	for _, opt := range opts {
		opt(&options)
	}

	if lookup == nil {
		return nil, schema.NewSchemaError(schema.IndexStage, lowerColumn, -1, schema.ErrColumnNotFound, "lookup table is nil")
	}

	start := time.Now()

	class, err := boundsClass(lookup, lowerColumn, upperColumn)
	if err != nil {
		return nil, err
	}

	idx := &IntervalIndex{
		records: make([]Record, 0, len(lookup.Rows)),
	}

	meta := &idx.meta
	meta.ID = newIndexId()
	meta.Table = lookup.Name
	meta.LowerColumn = lowerColumn
	meta.UpperColumn = upperColumn
	meta.Class = class
	meta.Strategy = options.strategy
	meta.LookupRows = len(lookup.Rows)

	for rowIdx, row := range lookup.Rows {

		lower := schema.KeyOf(row[lowerColumn])
		upper := schema.KeyOf(row[upperColumn])

		if lower.IsNull() || upper.IsNull() {
			meta.SkippedNull++
			slog.Debug("interval with null bound skipped", "table", lookup.Name, "row", rowIdx)
			continue
		}

		if upper.Less(lower) {
			meta.Malformed++
			slog.Debug("malformed interval skipped", "table", lookup.Name, "row", rowIdx, "lower", lower.String(), "upper", upper.String())
			continue
		}

		idx.records = append(idx.records, Record{
			Lower:    lower,
			Upper:    upper,
			Payload:  row,
			Position: rowIdx,
		})
	}

	slices.SortFunc(idx.records, compareRecords)

	meta.Records = len(idx.records)

	if len(idx.records) > 0 {
		idx.maxUpper = make([]schema.Key, len(idx.records))
		rootMax, _ := idx.buildMaxUpper(0, len(idx.records))

		meta.Envelope = schema.NewBoundsFromValues(idx.records[0].Lower, rootMax)
		meta.Disjoint = idx.detectDisjoint()
	}

	if class == schema.NumericClass && options.strategy == LinearStrategy {
		idx.buildFlatBounds()
	}

	idx.payloadColumns = make([]string, 0, len(lookup.Columns))
	for _, column := range lookup.Columns {
		if column != lowerColumn && column != upperColumn {
			idx.payloadColumns = append(idx.payloadColumns, column)
		}
	}

	meta.BuildTook = time.Since(start)

	slog.Info("interval index built",
		"index_id", meta.ID.String(),
		"table", meta.Table,
		"records", meta.Records,
		"skipped_null", meta.SkippedNull,
		"malformed", meta.Malformed,
		"disjoint", meta.Disjoint,
		"strategy", meta.Strategy.String(),
		"took", meta.BuildTook,
	)

	return idx, nil
}

// boundsClass validates both bound columns and returns the class they share
func boundsClass(lookup *schema.Table, lowerColumn, upperColumn string) (schema.ValueClass, error) {

	lowerInfo, err := lookup.Describe(schema.IndexStage, lowerColumn)
	if err != nil {
		return schema.NullClass, err
	}

	upperInfo, err := lookup.Describe(schema.IndexStage, upperColumn)
	if err != nil {
		return schema.NullClass, err
	}

	switch {
	case lowerInfo.Class == schema.NullClass:
		return upperInfo.Class, nil
	case upperInfo.Class == schema.NullClass:
		return lowerInfo.Class, nil
	case lowerInfo.Class != upperInfo.Class:
		return schema.NullClass, schema.NewSchemaError(schema.IndexStage, upperColumn, -1, schema.ErrMixedTypes,
			"lower column `%s` is %s, upper column `%s` is %s", lowerColumn, lowerInfo.Class.String(), upperColumn, upperInfo.Class.String())
	default:
		return lowerInfo.Class, nil
	}
}

func compareRecords(a, b Record) int {
	if c := a.Lower.Compare(b.Lower); c != 0 {
		return c
	}
	if c := a.Upper.Compare(b.Upper); c != 0 {
		return c
	}
	return a.Position - b.Position
}

// buildMaxUpper fills maxUpper for the implicit tree over records[lo:hi]
// rooted at the middle position
func (idx *IntervalIndex) buildMaxUpper(lo, hi int) (schema.Key, bool) {
	if lo >= hi {
		return schema.NullKey, false
	}

	mid := int(uint(lo+hi) >> 1)
	result := idx.records[mid].Upper

	if left, ok := idx.buildMaxUpper(lo, mid); ok && result.Less(left) {
		result = left
	}
	if right, ok := idx.buildMaxUpper(mid+1, hi); ok && result.Less(right) {
		result = right
	}

	idx.maxUpper[mid] = result

	return result, true
}

// buildFlatBounds copies bounds into plain arrays for the linear kernels.
// int64 arrays need every bound to be an integer, float64 arrays need every
// bound to be exact as float64.
func (idx *IntervalIndex) buildFlatBounds() {

	allInt, allFloatExact := true, true
	for i := range idx.records {
		rec := &idx.records[i]
		allInt = allInt && rec.Lower.Integer && rec.Upper.Integer
		allFloatExact = allFloatExact && rec.Lower.FloatExact() && rec.Upper.FloatExact()
	}

	if allInt {
		idx.intLowers = make([]int64, len(idx.records))
		idx.intUppers = make([]int64, len(idx.records))
		for i := range idx.records {
			idx.intLowers[i] = idx.records[i].Lower.Int
			idx.intUppers[i] = idx.records[i].Upper.Int
		}
	}

	if allFloatExact {
		idx.lowers = make([]float64, len(idx.records))
		idx.uppers = make([]float64, len(idx.records))
		for i := range idx.records {
			idx.lowers[i] = idx.records[i].Lower.Num
			idx.uppers[i] = idx.records[i].Upper.Num
		}
	}
}

func (idx *IntervalIndex) detectDisjoint() bool {
	for i := 1; i < len(idx.records); i++ {
		if idx.records[i].Lower.Compare(idx.records[i-1].Upper) <= 0 {
			return false
		}
	}
	return true
}

func newIndexId() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
