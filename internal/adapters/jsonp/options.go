package jsonp

import (
	"time"

	"github.com/okian/tally/pkg/logger"
)

// Option applies a configuration option to the Bridge.
type Option func(*Bridge)

// WithDefaultTimeout sets the timeout used when Request gets a non-positive one.
func WithDefaultTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithLogger sets the bridge logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// WithIDGenerator replaces the callback identifier generator.
func WithIDGenerator(gen func() string) Option {
	return func(b *Bridge) {
		if gen != nil {
			b.newID = gen
		}
	}
}
