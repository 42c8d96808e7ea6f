package schema

// SchemaColumn is the detected shape of a table column
type SchemaColumn struct {
	Name  string
	Class ValueClass

	Nulls int
}

// Describe scans a column and detects the class shared by its non null
// values. A column with only nulls keeps NullClass.
func (t *Table) Describe(stage ErrorStage, column string) (SchemaColumn, error) {

	result := SchemaColumn{Name: column, Class: NullClass}

	if !t.HasColumn(column) {
		return result, NewSchemaError(stage, column, -1, ErrColumnNotFound, "table `%s`", t.Name)
	}

	for rowIdx, row := range t.Rows {

		class := ClassOf(row[column])

		switch {
		case class == NullClass:
			result.Nulls++
			continue
		case !class.Orderable():
			return result, NewSchemaError(stage, column, rowIdx, ErrIncomparable, "value of type %T has no order", row[column])
		case result.Class == NullClass:
			result.Class = class
		case result.Class != class:
			return result, NewSchemaError(stage, column, rowIdx, ErrMixedTypes, "expected %s, got %s", result.Class.String(), class.String())
		}
	}

	return result, nil
}
