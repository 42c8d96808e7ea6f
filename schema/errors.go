package schema

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorStage uint8

const (
	IndexStage ErrorStage = iota
	JoinStage
	TableStage
)

func (s ErrorStage) String() string {
	switch s {
	case IndexStage:
		return "index"
	case JoinStage:
		return "join"
	case TableStage:
		return "table"
	default:
		return "unknown"
	}
}

var (
	ErrColumnNotFound   = errors.New("column not found")
	ErrMixedTypes       = errors.New("mixed value types")
	ErrIncomparable     = errors.New("values are not comparable")
	ErrRaggedRow        = errors.New("row does not match table columns")
	ErrNilIndex         = errors.New("index is nil")
	ErrUnknownOperator  = errors.New("unknown comparison operator")
	ErrUnknownJoinType  = errors.New("unknown join type")
	ErrDuplicatedColumn = errors.New("duplicated column")
)

// SchemaError reports bad input. Stage tells whether the lookup side
// (index construction) or the primary side (join) needs fixing.
type SchemaError struct {
	Stage  ErrorStage
	Column string

	// -1 when the error is not bound to a row
	Row int

	Reason string
	Err    error
}

func NewSchemaError(stage ErrorStage, column string, row int, err error, reasonFormat string, args ...any) *SchemaError {
	return &SchemaError{
		Stage:  stage,
		Column: column,
		Row:    row,
		Reason: fmt.Sprintf(reasonFormat, args...),
		Err:    err,
	}
}

func (e *SchemaError) Error() string {
	sb := strings.Builder{}

	sb.WriteString(e.Stage.String())
	sb.WriteString(" schema error")

	if e.Column != "" {
		fmt.Fprintf(&sb, " on column `%s`", e.Column)
	}
	if e.Row >= 0 {
		fmt.Fprintf(&sb, " at row %d", e.Row)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}

	return sb.String()
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// AsSchemaError unwraps err down to a *SchemaError if there is one
func AsSchemaError(err error) (*SchemaError, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
