package schema

import (
	"cmp"
	"fmt"
	"math"
	"strings"
	"time"
)

// Key is a scalar lifted into a comparable form.
// Integers keep their exact value, floats and integers compare exactly
// against each other. Times are ordered by instant, location ignored.
type Key struct {
	Class ValueClass

	Num     float64
	Int     int64
	Integer bool

	Str string

	Sec  int64
	Nsec int32
}

var NullKey = Key{Class: NullClass}

// 2^53, integers beyond it are not exact as float64
const maxExactFloatInt = 1 << 53

func KeyOf(v any) Key {
	class := ClassOf(v)

	switch class {
	case NumericClass:
		if i, ok := numericIntValue(v); ok {
			return Key{Class: NumericClass, Num: float64(i), Int: i, Integer: true}
		}

		num := numericFloatValue(v)
		if math.IsNaN(num) {
			// NaN has no order, treat it like a missing value
			return NullKey
		}
		return Key{Class: NumericClass, Num: num}
	case StringClass:
		return Key{Class: StringClass, Str: v.(string)}
	case TimeClass:
		t := v.(time.Time)
		return Key{Class: TimeClass, Sec: t.Unix(), Nsec: int32(t.Nanosecond())}
	default:
		return Key{Class: class}
	}
}

func NumericKey(v float64) Key {
	return KeyOf(v)
}

func IntKey(v int64) Key {
	return KeyOf(v)
}

func (k Key) IsNull() bool {
	return k.Class == NullClass
}

// FloatExact reports whether Num holds the numeric value without rounding
func (k Key) FloatExact() bool {
	return k.Class == NumericClass && (!k.Integer || (k.Int <= maxExactFloatInt && k.Int >= -maxExactFloatInt))
}

// Comparable reports whether k and other have the same orderable class
func (k Key) Comparable(other Key) bool {
	return k.Class == other.Class && k.Class.Orderable()
}

// Compare returns -1, 0 or 1. Keys of different classes are ordered by class
// so sorting stays total, callers check Comparable first.
func (k Key) Compare(other Key) int {
	if k.Class != other.Class {
		return cmp.Compare(k.Class, other.Class)
	}

	switch k.Class {
	case NumericClass:
		switch {
		case k.Integer && other.Integer:
			return cmp.Compare(k.Int, other.Int)
		case k.Integer:
			return -compareFloatInt(other.Num, k.Int)
		case other.Integer:
			return compareFloatInt(k.Num, other.Int)
		default:
			return cmp.Compare(k.Num, other.Num)
		}
	case StringClass:
		return strings.Compare(k.Str, other.Str)
	case TimeClass:
		if c := cmp.Compare(k.Sec, other.Sec); c != 0 {
			return c
		}
		return cmp.Compare(k.Nsec, other.Nsec)
	default:
		return 0
	}
}

// compareFloatInt compares f and i without rounding i to float64
func compareFloatInt(f float64, i int64) int {
	switch {
	case f < -(1 << 63):
		return -1
	case f >= 1<<63:
		return 1
	}

	whole := math.Trunc(f)
	if c := cmp.Compare(int64(whole), i); c != 0 {
		return c
	}

	return cmp.Compare(f, whole)
}

func (k Key) Less(other Key) bool {
	return k.Compare(other) < 0
}

func (k Key) String() string {
	switch k.Class {
	case NumericClass:
		if k.Integer {
			return fmt.Sprintf("%d", k.Int)
		}
		return fmt.Sprintf("%v", k.Num)
	case StringClass:
		return fmt.Sprintf("%q", k.Str)
	case TimeClass:
		return time.Unix(k.Sec, int64(k.Nsec)).UTC().Format(time.RFC3339Nano)
	default:
		return k.Class.String()
	}
}
