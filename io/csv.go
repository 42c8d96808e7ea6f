package io

import (
	"encoding/csv"
	"fmt"
	stdio "io"
	"math"
	"strconv"
	"time"

	"github.com/dot5enko/simple-range-join/schema"
)

// ParseValue turns a csv cell into a scalar: empty is null, then integer,
// float and RFC 3339 time are tried before falling back to string.
// Only plain decimal notation is numeric, so `NaN`, `Inf`, hex floats and
// cells with leading zeros like `01234` stay strings.
func ParseValue(cell string) any {

	if cell == "" {
		return nil
	}

	if decimalNumber(cell) {
		if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return v
		}

		if v, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsInf(v, 0) {
			return v
		}
	}

	if v, err := time.Parse(time.RFC3339Nano, cell); err == nil {
		return v
	}

	return cell
}

// decimalNumber accepts [+-]digits[.digits][e[+-]digits] without
// leading zeros in the integer part
func decimalNumber(cell string) bool {

	pos := 0
	if cell[pos] == '+' || cell[pos] == '-' {
		pos++
	}

	digits := func() int {
		start := pos
		for pos < len(cell) && cell[pos] >= '0' && cell[pos] <= '9' {
			pos++
		}
		return pos - start
	}

	intStart := pos
	intDigits := digits()
	if intDigits > 1 && cell[intStart] == '0' {
		return false
	}

	fracDigits := 0
	if pos < len(cell) && cell[pos] == '.' {
		pos++
		fracDigits = digits()
	}

	if intDigits == 0 && fracDigits == 0 {
		return false
	}

	if pos < len(cell) && (cell[pos] == 'e' || cell[pos] == 'E') {
		pos++
		if pos < len(cell) && (cell[pos] == '+' || cell[pos] == '-') {
			pos++
		}
		if digits() == 0 {
			return false
		}
	}

	return pos == len(cell)
}

func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}

// ReadTable reads a csv stream whose first record is the header
func ReadTable(name string, r stdio.Reader) (*schema.Table, error) {

	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, headerErr := reader.Read()
	if headerErr != nil {
		return nil, fmt.Errorf("unable to read csv header of `%s` : %s", name, headerErr.Error())
	}

	columns := make([]string, len(header))
	copy(columns, header)

	rows := []schema.Row{}

	for {
		record, readErr := reader.Read()
		if readErr == stdio.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("unable to read csv row %d of `%s` : %s", len(rows), name, readErr.Error())
		}

		row := make(schema.Row, len(columns))
		for idx, column := range columns {
			row[column] = ParseValue(record[idx])
		}
		rows = append(rows, row)
	}

	return schema.NewTable(name, columns, rows)
}

func WriteTable(w stdio.Writer, table *schema.Table) error {

	writer := csv.NewWriter(w)

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("unable to write csv header : %s", err.Error())
	}

	record := make([]string, len(table.Columns))

	for rowIdx, row := range table.Rows {
		for idx, column := range table.Columns {
			record[idx] = FormatValue(row[column])
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("unable to write csv row %d : %s", rowIdx, err.Error())
		}
	}

	writer.Flush()
	return writer.Error()
}

func LoadTable(path string) (*schema.Table, error) {

	file := NewTableFile(path)
	if !file.Exists() {
		return nil, fmt.Errorf("no such file `%s`", path)
	}

	if err := file.Open(true); err != nil {
		return nil, fmt.Errorf("unable to open `%s` : %s", path, err.Error())
	}
	defer file.Close()

	r, err := file.Reader()
	if err != nil {
		return nil, err
	}

	return ReadTable(path, r)
}

func SaveTable(path string, table *schema.Table) error {

	file := NewTableFile(path)

	if err := file.Open(false); err != nil {
		return fmt.Errorf("unable to create `%s` : %s", path, err.Error())
	}

	w, err := file.Writer()
	if err != nil {
		file.Close()
		return err
	}

	if err := WriteTable(w, table); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
