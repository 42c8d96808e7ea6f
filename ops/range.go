package ops

import "golang.org/x/exp/constraints"

type NumericTypes interface {
	constraints.Integer | constraints.Float
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CompareValuesContain writes into out the positions i for which
// lowers[i] <= v <= uppers[i]. out must be at least len(lowers) long.
// lowers and uppers must have the same length.
func CompareValuesContain[T NumericTypes](lowers, uppers []T, v T, out []int32) int {
	n := len(lowers)
	uppers = uppers[:n]
	out = out[:n]

	filled := 0
	i := 0

	for ; i+7 < n; i += 8 {

		m0 := b2i(lowers[i+0] <= v && v <= uppers[i+0])
		m1 := b2i(lowers[i+1] <= v && v <= uppers[i+1])
		m2 := b2i(lowers[i+2] <= v && v <= uppers[i+2])
		m3 := b2i(lowers[i+3] <= v && v <= uppers[i+3])
		m4 := b2i(lowers[i+4] <= v && v <= uppers[i+4])
		m5 := b2i(lowers[i+5] <= v && v <= uppers[i+5])
		m6 := b2i(lowers[i+6] <= v && v <= uppers[i+6])
		m7 := b2i(lowers[i+7] <= v && v <= uppers[i+7])

		// branchless fill, a slot is only kept when its mask is set
		out[filled] = int32(i + 0)
		filled += m0
		out[filled] = int32(i + 1)
		filled += m1
		out[filled] = int32(i + 2)
		filled += m2
		out[filled] = int32(i + 3)
		filled += m3
		out[filled] = int32(i + 4)
		filled += m4
		out[filled] = int32(i + 5)
		filled += m5
		out[filled] = int32(i + 6)
		filled += m6
		out[filled] = int32(i + 7)
		filled += m7
	}

	// Tail element
	for ; i < n; i++ {
		if lowers[i] <= v && v <= uppers[i] {
			out[filled] = int32(i)
			filled++
		}
	}

	return filled
}
