package index

import (
	"iter"
	"sort"

	"github.com/dot5enko/simple-range-join/ops"
	"github.com/dot5enko/simple-range-join/schema"
)

// Candidates yields every interval with lower <= v <= upper, in index order.
// The sequence is lazy and can be ranged over any number of times.
func (idx *IntervalIndex) Candidates(v schema.Key) iter.Seq[*Record] {
	return func(yield func(*Record) bool) {

		if !idx.Accepts(v.Class) || !idx.meta.Envelope.Contains(v) {
			return
		}

		switch {
		case idx.meta.Strategy == LinearStrategy:
			idx.scanLinear(v, yield)
		case idx.meta.Disjoint:
			idx.searchDisjoint(v, yield)
		default:
			idx.walk(0, len(idx.records), v, yield)
		}
	}
}

// Query yields the intervals ev accepts for v. The inclusive candidate set
// is always a superset of what any `<`/`<=` combination accepts.
func (idx *IntervalIndex) Query(v schema.Key, ev ops.Evaluator) iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for rec := range idx.Candidates(v) {
			if !ev.Matches(v, rec.Lower, rec.Upper) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Value is Query for a raw scalar
func (idx *IntervalIndex) Value(v any, ev ops.Evaluator) iter.Seq[*Record] {
	return idx.Query(schema.KeyOf(v), ev)
}

func (idx *IntervalIndex) walk(lo, hi int, v schema.Key, yield func(*Record) bool) bool {
	if lo >= hi {
		return true
	}

	mid := int(uint(lo+hi) >> 1)

	// nothing below this node reaches v
	if idx.maxUpper[mid].Less(v) {
		return true
	}

	if !idx.walk(lo, mid, v, yield) {
		return false
	}

	rec := &idx.records[mid]

	// this node and its right side start after v
	if v.Less(rec.Lower) {
		return true
	}

	if v.Compare(rec.Upper) <= 0 {
		if !yield(rec) {
			return false
		}
	}

	return idx.walk(mid+1, hi, v, yield)
}

func (idx *IntervalIndex) searchDisjoint(v schema.Key, yield func(*Record) bool) {

	// first interval starting after v, the candidate is right before it
	pos := sort.Search(len(idx.records), func(i int) bool {
		return v.Less(idx.records[i].Lower)
	}) - 1

	if pos < 0 {
		return
	}

	rec := &idx.records[pos]
	if v.Compare(rec.Upper) <= 0 {
		yield(rec)
	}
}

func (idx *IntervalIndex) scanLinear(v schema.Key, yield func(*Record) bool) {

	var (
		out    []int32
		filled int
	)

	switch {
	case v.Integer && idx.intLowers != nil:
		out = make([]int32, len(idx.intLowers))
		filled = ops.CompareValuesContain(idx.intLowers, idx.intUppers, v.Int, out)
	case v.FloatExact() && idx.lowers != nil:
		out = make([]int32, len(idx.lowers))
		filled = ops.CompareValuesContain(idx.lowers, idx.uppers, v.Num, out)
	default:
		idx.scanRecords(v, yield)
		return
	}

	for _, pos := range out[:filled] {
		if !yield(&idx.records[pos]) {
			return
		}
	}
}

func (idx *IntervalIndex) scanRecords(v schema.Key, yield func(*Record) bool) {
	for i := range idx.records {
		rec := &idx.records[i]
		if rec.Lower.Compare(v) <= 0 && v.Compare(rec.Upper) <= 0 {
			if !yield(rec) {
				return
			}
		}
	}
}
