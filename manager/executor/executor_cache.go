package executor

import (
	"github.com/dot5enko/simple-range-join/bits"
	"github.com/dot5enko/simple-range-join/schema"
)

// ProbeThreadCache is the per worker scratch, handed out by a ring buffer
// so consecutive joins reuse the allocations
type ProbeThreadCache struct {

	// lookup positions matched by the chunks this worker probed
	matched bits.Bitfield

	rows []schema.Row
}

func (c *ProbeThreadCache) Reset(lookupRows int) {

	words := (lookupRows + 63) / 64
	if cap(c.matched) < words {
		c.matched = bits.NewBitfield(lookupRows)
	} else {
		c.matched = c.matched[:words]
		clear(c.matched)
	}

	c.rows = c.rows[:0]
}

// Matched is only valid until the next Reset
func (c *ProbeThreadCache) Matched() bits.Bitfield {
	return c.matched
}
