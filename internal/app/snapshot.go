package service

import "github.com/okian/tally/pkg/metrics"

// snapshot is one collection plus where it came from. A cache copy never
// replaces a remote copy, and a remote copy never replaces a newer remote one.
type snapshot[T any] struct {
	items  []T
	source string
	seq    uint64
}

func (s *snapshot[T]) accept(items []T, source string, seq uint64) bool {
	if s.source == metrics.SourceRemote {
		if source == metrics.SourceCache {
			return false
		}
		if seq < s.seq {
			return false
		}
	}
	s.items = items
	s.source = source
	s.seq = seq
	return true
}

// view returns a copy that callers may reorder freely.
func (s *snapshot[T]) view() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}
