package query

import (
	"fmt"
	"strings"

	"github.com/dot5enko/simple-range-join/index"
	"github.com/dot5enko/simple-range-join/schema"
)

type JoinType byte

const (
	InnerJoin JoinType = iota
	LeftJoin
)

func (j JoinType) String() string {
	switch j {
	case InnerJoin:
		return "inner"
	case LeftJoin:
		return "left"
	default:
		return fmt.Sprintf("JoinType(%d)", byte(j))
	}
}

func ParseJoinType(text string) (JoinType, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "inner":
		return InnerJoin, nil
	case "left":
		return LeftJoin, nil
	default:
		return InnerJoin, fmt.Errorf("%w: `%s`, expected `inner` or `left`", schema.ErrUnknownJoinType, text)
	}
}

const (
	DefaultChunkRows = 4096
	DefaultSuffix    = "_right"
)

type (
	JoinOptions struct {
		How JoinType

		// probe values of another class than the index count as zero
		// matches instead of failing the join
		SkipIncomparable bool

		// appended to lookup column names clashing with primary ones
		Suffix string

		ChunkRows int
	}

	// ProbeChunk is a contiguous range [Start, End) of primary rows
	ProbeChunk struct {
		ChunkIdx int

		Start int
		End   int
	}

	JoinPlan struct {
		Primary   *schema.Table
		Index     *index.IntervalIndex
		Condition JoinCondition
		Options   JoinOptions

		ProbeColumn string
		Output      []Selector
		Chunks      []ProbeChunk
	}
)

func (p *JoinPlan) OutputColumns() []string {
	out := make([]string, len(p.Output))
	for idx, sel := range p.Output {
		out[idx] = sel.Alias
	}
	return out
}
