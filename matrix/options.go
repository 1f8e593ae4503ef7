package matrix

import "github.com/CK6170/densevec-go/logging"

// DefaultMaxDimension bounds vector dimension unless WithMaxDimension says
// otherwise. It keeps one block at 2 GiB of payload.
const DefaultMaxDimension = 1 << 28

type options struct {
	logger logging.Logger
	strict bool
	maxDim int
}

// Option configures a vector at construction. Clones and factory results
// inherit the options of the vector they are derived from.
type Option func(*options)

// WithLogger injects the logger every operation on the vector reports to.
// A nil logger disables logging.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithStrictChecks validates every resulting element of Scale and
// ApplyFunction before committing, instead of the default behavior (Scale
// checks only the largest-magnitude element, ApplyFunction checks nothing).
func WithStrictChecks() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithMaxDimension sets the largest dimension Create will allocate. Larger
// requests fail with ALLOCATION_ERROR. Values < 1 keep the default.
func WithMaxDimension(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.maxDim = n
		}
	}
}

// inherit copies a source vector's options into a derived vector.
func inherit(src options) Option {
	return func(o *options) {
		*o = src
	}
}

func newOptions(opts []Option) options {
	o := options{maxDim: DefaultMaxDimension}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
