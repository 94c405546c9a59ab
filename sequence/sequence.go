// Package sequence provides the padded monotonic counter that is the sole
// synchronisation edge between producers and consumers in the ring
// coordination engine.
//
// A Sequence is deliberately over-padded on both sides so that it never
// shares a cache line with a neighbouring field — the same discipline the
// ring packages use to separate producer and consumer cursors (see
// ring/ring.go's head/tail layout).
package sequence

import "go.uber.org/atomic"

// InitialValue is the value a freshly constructed Sequence holds before
// anything has been claimed or published through it.
const InitialValue int64 = -1

// Sequence is a padded 64-bit monotonic counter. The zero value is not
// usable; construct one with New or NewWithValue.
type Sequence struct {
	_ [56]byte // isolate from whatever precedes this field in an enclosing struct
	v atomic.Int64
	_ [56]byte // isolate from whatever follows
}

// New returns a Sequence initialised to InitialValue.
func New() *Sequence {
	return NewWithValue(InitialValue)
}

// NewWithValue returns a Sequence initialised to v.
func NewWithValue(v int64) *Sequence {
	s := &Sequence{}
	s.v.Store(v)
	return s
}

// Get loads the current value with acquire semantics.
//
//go:nosplit
func (s *Sequence) Get() int64 {
	return s.v.Load()
}

// Set stores v with release semantics.
//
//go:nosplit
func (s *Sequence) Set(v int64) {
	s.v.Store(v)
}

// SetVolatile stores v with a full fence, for use when subsequent readers
// must observe the new value without any prior synchronisation of their
// own (e.g. publishing the very first sequence of a newly wired consumer).
//
//go:nosplit
func (s *Sequence) SetVolatile(v int64) {
	s.v.Store(v)
}

// CompareAndSet atomically sets the value to v if the current value equals
// expected, returning whether the swap took place.
//
//go:nosplit
func (s *Sequence) CompareAndSet(expected, v int64) bool {
	return s.v.CompareAndSwap(expected, v)
}

// IncrementAndGet atomically adds one and returns the new value.
//
//go:nosplit
func (s *Sequence) IncrementAndGet() int64 {
	return s.v.Add(1)
}

// AddAndGet atomically adds n and returns the new value.
//
//go:nosplit
func (s *Sequence) AddAndGet(n int64) int64 {
	return s.v.Add(n)
}

// MinOf returns the smallest value among fallback and every Get() in seqs.
// Callers pass the producer's own cursor as fallback so an empty gating set
// still yields a sane minimum.
func MinOf(seqs []*Sequence, fallback int64) int64 {
	min := fallback
	for _, s := range seqs {
		if v := s.Get(); v < min {
			min = v
		}
	}
	return min
}

// Getter is the read side of a Sequence: anything a waiter can poll for
// "how far has this advanced". *Sequence satisfies it directly; Group
// satisfies it by recomputing a minimum on every call.
type Getter interface {
	Get() int64
}

// Group is a read-only view over two or more Sequences that reports their
// current minimum, recomputed on every Get() rather than snapshotted once.
// Grounded on the original Disruptor's FixedSequenceGroup: a barrier gated
// on several independently-advancing upstream consumers must never hand a
// wait strategy a single picked Sequence, or a spin loop polling only that
// one object can return early while a sibling upstream still lags behind.
type Group struct {
	seqs []*Sequence
}

// NewGroup constructs a Group over seqs. Callers should prefer a bare
// *Sequence when there is only one, since Group always re-scans its whole
// set on every Get().
func NewGroup(seqs ...*Sequence) *Group {
	return &Group{seqs: seqs}
}

// Get returns the minimum of every Sequence in the group, read fresh on
// each call.
func (g *Group) Get() int64 {
	min := g.seqs[0].Get()
	for _, s := range g.seqs[1:] {
		if v := s.Get(); v < min {
			min = v
		}
	}
	return min
}
