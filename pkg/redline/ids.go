package redline

import "sync/atomic"

// idAllocator hands out annotation ids (w:id) for comments and tracked
// changes. Both draw from one sequence seeded above every id already present
// in the package, so a new id never collides with an existing one.
type idAllocator struct {
	last atomic.Int64
}

func newIDAllocator(maxSeen int) *idAllocator {
	a := &idAllocator{}
	a.last.Store(int64(maxSeen))
	return a
}

// Next returns a fresh id.
func (a *idAllocator) Next() int {
	return int(a.last.Add(1))
}
