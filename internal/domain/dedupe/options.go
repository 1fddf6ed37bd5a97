package dedupe

import "time"

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of remembered keys; the oldest is evicted
// first. maxSize <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}

// WithWindow sets how long a key suppresses repeats. window <= 0 means forever.
func WithWindow(window time.Duration) Option {
	return func(d *inMemoryDeduper) {
		d.window = window
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *inMemoryDeduper) {
		if now != nil {
			d.now = now
		}
	}
}
