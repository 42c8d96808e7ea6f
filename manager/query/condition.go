package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dot5enko/simple-range-join/ops"
)

var (
	ErrIncompleteCondition = errors.New("join condition needs one lower and one upper bound")
	ErrConditionSyntax     = errors.New("unable to parse join condition")
)

// BoundCondition is a single `probe <operand> bound` term.
// BETWEEN takes the lower and upper bound columns as two arguments.
type BoundCondition struct {
	Probe     string
	Operand   CondOperand
	Arguments []string
}

// JoinCondition is the conjunction the index and evaluator can answer:
// `Lower <LowerOp> Probe AND Probe <UpperOp> Upper`
type JoinCondition struct {
	Probe string
	Lower string
	Upper string

	Evaluator ops.Evaluator
}

func NewJoinCondition(probe, lower, upper string, lowerOp, upperOp ops.CompareOp) (JoinCondition, error) {
	ev, err := ops.NewEvaluator(lowerOp, upperOp)
	if err != nil {
		return JoinCondition{}, err
	}

	return JoinCondition{
		Probe:     probe,
		Lower:     lower,
		Upper:     upper,
		Evaluator: ev,
	}, nil
}

type boundSide struct {
	column string
	op     ops.CompareOp
	set    bool
}

// with narrows the side, repeated terms on the same column keep the strictest
func (s *boundSide) with(column string, op ops.CompareOp) error {
	if !s.set {
		*s = boundSide{column: column, op: op, set: true}
		return nil
	}

	if s.column != column {
		return fmt.Errorf("bounds on two different columns `%s` and `%s` are not supported", s.column, column)
	}

	if op == ops.Less {
		s.op = ops.Less
	}

	return nil
}

// ConditionFromTerms folds a conjunction of terms over one probe column
// into a JoinCondition
func ConditionFromTerms(terms ...BoundCondition) (JoinCondition, error) {

	var lower, upper boundSide
	probe := ""

	for _, term := range terms {

		if probe == "" {
			probe = term.Probe
		} else if probe != term.Probe {
			return JoinCondition{}, fmt.Errorf("all terms must use one probe column, got `%s` and `%s`", probe, term.Probe)
		}

		expectedArgs := 1
		if term.Operand == BETWEEN {
			expectedArgs = 2
		}
		if len(term.Arguments) != expectedArgs {
			return JoinCondition{}, fmt.Errorf("%s expects %d bound columns, got %d", term.Operand.String(), expectedArgs, len(term.Arguments))
		}

		var sideErr error

		switch term.Operand {
		case GT:
			sideErr = lower.with(term.Arguments[0], ops.Less)
		case GE:
			sideErr = lower.with(term.Arguments[0], ops.LessOrEqual)
		case LT:
			sideErr = upper.with(term.Arguments[0], ops.Less)
		case LE:
			sideErr = upper.with(term.Arguments[0], ops.LessOrEqual)
		case BETWEEN:
			sideErr = lower.with(term.Arguments[0], ops.LessOrEqual)
			if sideErr == nil {
				sideErr = upper.with(term.Arguments[1], ops.LessOrEqual)
			}
		default:
			sideErr = fmt.Errorf("unsupported operand %d", byte(term.Operand))
		}

		if sideErr != nil {
			return JoinCondition{}, sideErr
		}
	}

	if !lower.set || !upper.set {
		return JoinCondition{}, ErrIncompleteCondition
	}

	return NewJoinCondition(probe, lower.column, upper.column, lower.op, upper.op)
}

// ParseBoundCondition reads `probe >= Low` or `probe BETWEEN Low AND High`
func ParseBoundCondition(text string) (BoundCondition, error) {

	tokens := strings.Fields(text)

	switch len(tokens) {
	case 3:
		operand, err := ParseCondOperand(tokens[1])
		if err != nil {
			return BoundCondition{}, err
		}
		if operand == BETWEEN {
			return BoundCondition{}, fmt.Errorf("%w: `%s`, BETWEEN needs `AND`", ErrConditionSyntax, text)
		}
		return BoundCondition{Probe: tokens[0], Operand: operand, Arguments: []string{tokens[2]}}, nil

	case 5:
		if !strings.EqualFold(tokens[1], "BETWEEN") || !strings.EqualFold(tokens[3], "AND") {
			return BoundCondition{}, fmt.Errorf("%w: `%s`", ErrConditionSyntax, text)
		}
		return BoundCondition{Probe: tokens[0], Operand: BETWEEN, Arguments: []string{tokens[2], tokens[4]}}, nil

	default:
		return BoundCondition{}, fmt.Errorf("%w: `%s`", ErrConditionSyntax, text)
	}
}

func (c JoinCondition) String() string {
	return fmt.Sprintf("%s %s %s %s %s", c.Lower, c.Evaluator.LowerOp.String(), c.Probe, c.Evaluator.UpperOp.String(), c.Upper)
}
