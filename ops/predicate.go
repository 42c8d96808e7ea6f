package ops

import (
	"fmt"

	"github.com/dot5enko/simple-range-join/schema"
)

type CompareOp byte

const (
	LessOrEqual CompareOp = iota
	Less
)

func (op CompareOp) String() string {
	switch op {
	case LessOrEqual:
		return "<="
	case Less:
		return "<"
	default:
		return fmt.Sprintf("CompareOp(%d)", byte(op))
	}
}

func (op CompareOp) Valid() bool {
	return op == LessOrEqual || op == Less
}

func ParseCompareOp(text string) (CompareOp, error) {
	switch text {
	case "<=":
		return LessOrEqual, nil
	case "<":
		return Less, nil
	default:
		return LessOrEqual, fmt.Errorf("%w: `%s`, expected `<` or `<=`", schema.ErrUnknownOperator, text)
	}
}

// holds reports whether a <op> b. Keys must be comparable
func (op CompareOp) holds(a, b schema.Key) bool {
	c := a.Compare(b)
	if op == Less {
		return c < 0
	}
	return c <= 0
}

// Evaluator checks `lower <LowerOp> value && value <UpperOp> upper`
type Evaluator struct {
	LowerOp CompareOp
	UpperOp CompareOp
}

// Inclusive is BETWEEN semantics, closed on both ends
func Inclusive() Evaluator {
	return Evaluator{LowerOp: LessOrEqual, UpperOp: LessOrEqual}
}

func NewEvaluator(lowerOp, upperOp CompareOp) (Evaluator, error) {
	if !lowerOp.Valid() {
		return Evaluator{}, fmt.Errorf("%w: lower comparison %s", schema.ErrUnknownOperator, lowerOp.String())
	}
	if !upperOp.Valid() {
		return Evaluator{}, fmt.Errorf("%w: upper comparison %s", schema.ErrUnknownOperator, upperOp.String())
	}

	return Evaluator{LowerOp: lowerOp, UpperOp: upperOp}, nil
}

func EvaluatorFromString(lowerOp, upperOp string) (Evaluator, error) {
	lo, err := ParseCompareOp(lowerOp)
	if err != nil {
		return Evaluator{}, err
	}
	up, err := ParseCompareOp(upperOp)
	if err != nil {
		return Evaluator{}, err
	}

	return NewEvaluator(lo, up)
}

// Matches never panics: nulls, class mismatches and lower > upper simply
// don't match.
func (e Evaluator) Matches(value, lower, upper schema.Key) bool {

	if !value.Comparable(lower) || !value.Comparable(upper) {
		return false
	}

	if upper.Less(lower) {
		return false
	}

	return e.LowerOp.holds(lower, value) && e.UpperOp.holds(value, upper)
}

func (e Evaluator) String() string {
	return fmt.Sprintf("lower %s value %s upper", e.LowerOp.String(), e.UpperOp.String())
}
