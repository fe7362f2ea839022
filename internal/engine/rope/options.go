package rope

import "github.com/dshills/cellrope/internal/charreg"

// Option configures a Rope.
type Option func(*Rope)

// WithResolver sets the registry Text uses for complex cells.
func WithResolver(res charreg.Resolver) Option {
	return func(r *Rope) {
		if res != nil {
			r.resolver = res
		}
	}
}

// WithExpansionFactor sets the UTF-16 units reserved per cell when text
// is materialized.
func WithExpansionFactor(n int) Option {
	return func(r *Rope) {
		if n > 0 {
			r.factor = n
		}
	}
}

// WithInvariantChecks makes every structural operation verify the
// segment list and panic on corruption.
func WithInvariantChecks(on bool) Option {
	return func(r *Rope) {
		r.check = on
	}
}

// WithPromoteHook registers fn to be called with the visible range of a
// segment each time an in-place write copies it into a new FlatLeaf.
func WithPromoteHook(fn func(Range)) Option {
	return func(r *Rope) {
		r.onPromote = fn
	}
}
