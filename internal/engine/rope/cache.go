package rope

import "github.com/dshills/cellrope/internal/charreg"

// TextCache memoizes the most recent DeltaString by range and resolver.
type TextCache struct {
	valid    bool
	r        Range
	resolver charreg.Resolver
	value    *DeltaString

	hits   int
	misses int
}

// StringFor returns the cached string for (r, res), calling compute on a
// miss and remembering its result.
func (c *TextCache) StringFor(r Range, res charreg.Resolver, compute func() *DeltaString) *DeltaString {
	if c.valid && c.r == r && c.resolver == res {
		c.hits++
		return c.value
	}
	c.misses++
	ds := compute()
	c.valid = true
	c.r = r
	c.resolver = res
	c.value = ds
	return ds
}

// Invalidate drops the entry if mutated overlaps the cached range.
// An empty cached range is dropped by any mutation touching its start.
func (c *TextCache) Invalidate(mutated Range) {
	if !c.valid {
		return
	}
	if c.r.Overlaps(mutated) || (c.r.Empty() && mutated.Start <= c.r.Start && c.r.Start <= mutated.End) {
		c.Reset()
	}
}

// Reset unconditionally drops the entry.
func (c *TextCache) Reset() {
	c.valid = false
	c.r = Range{}
	c.resolver = nil
	c.value = nil
}

// Stats returns the hit and miss counts since creation.
func (c *TextCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// clone copies the entry; DeltaString values are immutable and shared.
func (c *TextCache) clone() TextCache {
	return TextCache{valid: c.valid, r: c.r, resolver: c.resolver, value: c.value}
}
