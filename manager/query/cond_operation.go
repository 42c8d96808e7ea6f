package query

import (
	"fmt"
	"strings"

	"github.com/dot5enko/simple-range-join/schema"
)

// CondOperand relates the probe column (left side) to a lookup bound column
type CondOperand byte

const (
	GT CondOperand = iota
	GE
	LT
	LE
	BETWEEN
)

func (c CondOperand) String() string {
	switch c {
	case GT:
		return ">"
	case GE:
		return ">="
	case LT:
		return "<"
	case LE:
		return "<="
	case BETWEEN:
		return "BETWEEN"
	default:
		panic(fmt.Sprintf("unknown operand %d", byte(c)))
	}
}

func ParseCondOperand(text string) (CondOperand, error) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case ">":
		return GT, nil
	case ">=":
		return GE, nil
	case "<":
		return LT, nil
	case "<=":
		return LE, nil
	case "BETWEEN":
		return BETWEEN, nil
	default:
		return GT, fmt.Errorf("%w: `%s`", schema.ErrUnknownOperator, text)
	}
}
