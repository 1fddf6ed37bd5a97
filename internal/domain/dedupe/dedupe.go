// Package dedupe suppresses repeated submissions of the same key.
package dedupe

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// Deduper records submission keys so a key is forwarded at most once per window.
type Deduper interface {
	// SeenAndRecord atomically checks if key was recorded inside the window
	// and records it if not. Returns true when the key is a repeat.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so it may be submitted again. Callers use it when
	// the submission that recorded the key failed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key builds the submission key for one person attending one event on one day.
func Key(name, event, date string) string {
	return strings.TrimSpace(name) + "\x00" + strings.TrimSpace(event) + "\x00" + strings.TrimSpace(date)
}

type entry struct {
	key string
	at  time.Time
}

// inMemoryDeduper keeps keys in insertion order; the oldest is evicted when full.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front = newest
	maxSize int        // <= 0 is unbounded
	window  time.Duration
	now     func() time.Time
}

// NewInMemoryDeduper creates an in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 10_000,
		window:  time.Minute,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.expire(now)

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.remove(d.order.Back())
	}
	d.seen[key] = d.order.PushFront(&entry{key: key, at: now})
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.seen[key]; ok {
		d.remove(el)
	}
}

// expire drops entries older than the window. Must be called with d.mu held.
func (d *inMemoryDeduper) expire(now time.Time) {
	if d.window <= 0 {
		return
	}
	for el := d.order.Back(); el != nil; el = d.order.Back() {
		if now.Sub(el.Value.(*entry).at) < d.window {
			return
		}
		d.remove(el)
	}
}

func (d *inMemoryDeduper) remove(el *list.Element) {
	if el == nil {
		return
	}
	delete(d.seen, el.Value.(*entry).key)
	d.order.Remove(el)
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
