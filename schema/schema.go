package schema

import (
	"fmt"
	"slices"
)

type Row map[string]any

// Table is an ordered, read only sequence of rows sharing one column set
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

func NewTable(name string, columns []string, rows []Row) (*Table, error) {

	seen := make(map[string]struct{}, len(columns))
	for _, column := range columns {
		if _, dup := seen[column]; dup {
			return nil, NewSchemaError(TableStage, column, -1, ErrDuplicatedColumn, "table `%s`", name)
		}
		seen[column] = struct{}{}
	}

	for rowIdx, row := range rows {
		if len(row) != len(columns) {
			return nil, NewSchemaError(TableStage, "", rowIdx, ErrRaggedRow, "table `%s` expects %d columns, row has %d", name, len(columns), len(row))
		}
		for _, column := range columns {
			if _, ok := row[column]; !ok {
				return nil, NewSchemaError(TableStage, column, rowIdx, ErrRaggedRow, "table `%s`", name)
			}
		}
	}

	return &Table{
		Name:    name,
		Columns: slices.Clone(columns),
		Rows:    rows,
	}, nil
}

// MustTable is NewTable for fixtures and literals
func MustTable(name string, columns []string, rows []Row) *Table {
	t, err := NewTable(name, columns, rows)
	if err != nil {
		panic(fmt.Sprintf("invalid table literal: %s", err.Error()))
	}
	return t
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	return slices.Index(t.Columns, name)
}

// Values returns the values of a column in row order
func (t *Table) Values(column string) []any {
	out := make([]any, len(t.Rows))
	for idx, row := range t.Rows {
		out[idx] = row[column]
	}
	return out
}
