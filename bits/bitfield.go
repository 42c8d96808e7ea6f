package bits

import "math/bits"

// Bitfield is a growable set of non negative positions
type Bitfield []uint64

func NewBitfield(size int) Bitfield {
	return make(Bitfield, (size+63)>>6)
}

func (b *Bitfield) grow(word int) {
	if word < len(*b) {
		return
	}
	grown := make(Bitfield, word+1)
	copy(grown, *b)
	*b = grown
}

func (b *Bitfield) Set(bit int) {
	word := bit >> 6 // bit / 64
	b.grow(word)
	mask := uint64(1) << (bit & 63)
	(*b)[word] |= mask
}

func (b Bitfield) Clear(bit int) {
	word := bit >> 6
	if word >= len(b) {
		return
	}
	mask := uint64(1) << (bit & 63)
	b[word] &^= mask
}

func (b Bitfield) Get(bit int) uint64 {
	word := bit >> 6
	if word >= len(b) {
		return 0
	}
	return (b[word] >> (bit & 63)) & 1
}

// ToIndices appends set positions to out in ascending order
func (b Bitfield) ToIndices(out []int) []int {
	for wi, w := range b {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			out = append(out, wi*64+tz)
			w &= w - 1 // clear lowest set bit
		}
	}
	return out
}

func (b Bitfield) Any() bool {
	for _, w := range b {
		if w != 0 {
			return true
		}
	}
	return false
}

func (b Bitfield) Count() int {
	c := 0
	for _, w := range b {
		c += bits.OnesCount64(w)
	}
	return c
}

func MergeOR(a, b Bitfield) (out Bitfield) {
	if len(a) < len(b) {
		a, b = b, a
	}
	out = make(Bitfield, len(a))
	copy(out, a)
	for i := range b {
		out[i] |= b[i]
	}
	return
}
