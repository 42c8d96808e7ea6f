package index

import (
	"time"

	"github.com/dot5enko/simple-range-join/schema"
	"github.com/google/uuid"
)

type Strategy uint8

const (
	// augmented sorted array, O(log M + k) per probe
	TreeStrategy Strategy = iota

	// degraded mode, every probe scans all M intervals
	LinearStrategy
)

func (s Strategy) String() string {
	switch s {
	case TreeStrategy:
		return "tree"
	case LinearStrategy:
		return "linear"
	default:
		return ""
	}
}

// Record is one well formed lookup interval
type Record struct {
	Lower schema.Key
	Upper schema.Key

	Payload schema.Row

	// row position in the lookup table
	Position int
}

type Meta struct {
	ID uuid.UUID

	Table       string
	LowerColumn string
	UpperColumn string

	Class    schema.ValueClass
	Strategy Strategy

	LookupRows  int
	Records     int
	SkippedNull int
	Malformed   int

	// no two intervals share a point, probes use plain binary search
	Disjoint bool

	Envelope  schema.Bounds
	BuildTook time.Duration
}

// IntervalIndex is read only once built and safe for concurrent probes
type IntervalIndex struct {
	meta Meta

	// sorted by lower, upper, position
	records []Record

	// max upper bound of the implicit subtree rooted at each position
	maxUpper []schema.Key

	// flat copies for the numeric linear kernels, nil when not exact
	lowers    []float64
	uppers    []float64
	intLowers []int64
	intUppers []int64

	payloadColumns []string
}

func (idx *IntervalIndex) Meta() Meta {
	return idx.meta
}

func (idx *IntervalIndex) ID() uuid.UUID {
	return idx.meta.ID
}

func (idx *IntervalIndex) Class() schema.ValueClass {
	return idx.meta.Class
}

func (idx *IntervalIndex) Len() int {
	return len(idx.records)
}

func (idx *IntervalIndex) LookupRows() int {
	return idx.meta.LookupRows
}

// PayloadColumns are the lookup columns merged into join results,
// bound columns excluded
func (idx *IntervalIndex) PayloadColumns() []string {
	return idx.payloadColumns
}

// Accepts reports whether probe values of class c can be checked against
// this index. An index without intervals has no class and accepts nothing.
func (idx *IntervalIndex) Accepts(c schema.ValueClass) bool {
	return idx.meta.Class.Orderable() && idx.meta.Class == c
}
