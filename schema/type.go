package schema

import (
	"math"
	"time"
)

type ValueClass uint8

const (
	NullClass ValueClass = iota
	NumericClass
	StringClass
	TimeClass

	// values of any other go type end up here and never compare
	InvalidClass
)

func (c ValueClass) String() string {
	switch c {
	case NullClass:
		return "Null"
	case NumericClass:
		return "Numeric"
	case StringClass:
		return "String"
	case TimeClass:
		return "Time"
	case InvalidClass:
		return "Invalid"
	default:
		return ""
	}
}

// Orderable reports whether two keys of this class can be compared
func (c ValueClass) Orderable() bool {
	switch c {
	case NumericClass, StringClass, TimeClass:
		return true
	default:
		return false
	}
}

func ClassOf(v any) ValueClass {
	switch v.(type) {
	case nil:
		return NullClass
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return NumericClass
	case string:
		return StringClass
	case time.Time:
		return TimeClass
	default:
		return InvalidClass
	}
}

// numericIntValue returns integers that fit int64, false for floats and
// uint64 values above math.MaxInt64
func numericIntValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint64:
		return int64(n), n <= math.MaxInt64
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	default:
		return 0, false
	}
}

func numericFloatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int16:
		return float64(n)
	case int8:
		return float64(n)
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	case uint32:
		return float64(n)
	case uint16:
		return float64(n)
	case uint8:
		return float64(n)
	default:
		return 0
	}
}
