package schema

type BoundsFilterMatchResult uint8

const (
	UnknownIntersection BoundsFilterMatchResult = iota
	NoIntersection
	PartialIntersection
	FullIntersection
)

func (r BoundsFilterMatchResult) String() string {
	switch r {
	case NoIntersection:
		return "NoIntersection"
	case PartialIntersection:
		return "PartialIntersection"
	case FullIntersection:
		return "FullIntersection"
	default:
		return "UnknownIntersection"
	}
}

// Bounds is a closed [Min, Max] envelope over keys of one class.
// The zero value is empty until the first Morph.
type Bounds struct {
	Min Key
	Max Key

	initialized bool
}

func NewBoundsFromValues(from, to Key) Bounds {
	if to.Less(from) {
		from, to = to, from
	}

	return Bounds{Min: from, Max: to, initialized: true}
}

func (b *Bounds) Empty() bool {
	return !b.initialized
}

// Morph widens b so it also covers other
func (b *Bounds) Morph(other Bounds) bool {

	if other.Empty() {
		return false
	}

	if b.Empty() {
		*b = other
		return true
	}

	changes := 0

	if other.Min.Less(b.Min) {
		b.Min = other.Min
		changes += 1
	}
	if b.Max.Less(other.Max) {
		b.Max = other.Max
		changes += 1
	}

	return changes != 0
}

func (b *Bounds) Contains(v Key) bool {
	if b.Empty() || !b.Min.Comparable(v) {
		return false
	}

	return b.Min.Compare(v) <= 0 && v.Compare(b.Max) <= 0
}

// Intersects tells whether other lies fully inside b, touches it or misses it
func (b *Bounds) Intersects(other Bounds) BoundsFilterMatchResult {

	if b.Empty() || other.Empty() || !b.Min.Comparable(other.Min) {
		return NoIntersection
	}

	if other.Max.Less(b.Min) || b.Max.Less(other.Min) {
		return NoIntersection
	}

	if b.Min.Compare(other.Min) <= 0 && other.Max.Compare(b.Max) <= 0 {
		return FullIntersection
	}

	return PartialIntersection
}
