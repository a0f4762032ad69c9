package order

import "sync/atomic"

// Sequence hands out monotonic ids for one session. The zero value starts at 1.
type Sequence struct {
	last atomic.Int64
}

// NewSequence returns a sequence whose first id is start+1.
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.last.Store(start)
	return s
}

func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Last returns the most recently issued id, or the start value.
func (s *Sequence) Last() int64 {
	return s.last.Load()
}
