// Package sequencer implements slot claiming and publication for the ring:
// the single-producer and multi-producer variants of the Sequencer, and the
// gating-sequence bookkeeping both share.
package sequencer

import (
	"sync/atomic"

	"ringline/barrier"
	"ringline/sequence"
	"ringline/waitstrategy"
)

// Sequencer reserves slot indices for producers, publishes them for
// consumers, and tracks the gating sequences producers must not overtake.
// SingleProducerSequencer and MultiProducerSequencer are the two
// implementations; callers pick one at construction time based on whether
// more than one goroutine will ever call Next/TryNext concurrently.
type Sequencer interface {
	// Next claims the next sequence, blocking (spin/yield/park) until
	// capacity is available.
	Next() (int64, error)
	// NextN claims the next n sequences as a contiguous block, returning
	// the highest claimed. Blocks until capacity is available.
	NextN(n int64) (int64, error)
	// TryNext claims the next sequence without blocking, failing fast
	// with rlerrors.ErrInsufficientCapacity if there is no room.
	TryNext() (int64, error)
	// TryNextN is the batch form of TryNext.
	TryNextN(n int64) (int64, error)
	// Publish makes seq visible to consumers.
	Publish(seq int64)
	// PublishRange makes every sequence in [lo, hi] visible to consumers
	// as a single operation.
	PublishRange(lo, hi int64)
	// IsAvailable reports whether seq has been published.
	IsAvailable(seq int64) bool
	// GetHighestPublishedSequence returns the highest contiguous sequence
	// published at or below availableSequence, scanning from lowerBound.
	GetHighestPublishedSequence(lowerBound, availableSequence int64) int64
	// AddGatingSequences registers additional sequences that claims must
	// not overtake by more than the ring's capacity.
	AddGatingSequences(seqs ...*sequence.Sequence)
	// RemoveGatingSequence unregisters a previously added gating
	// sequence, reporting whether it was present.
	RemoveGatingSequence(seq *sequence.Sequence) bool
	// GetCursor returns the Sequencer's own cursor.
	GetCursor() *sequence.Sequence
	// Capacity returns the fixed ring capacity this Sequencer claims
	// against.
	Capacity() int64
	// NewBarrier constructs a SequenceBarrier gated on this Sequencer and,
	// optionally, a set of upstream consumer sequences.
	NewBarrier(dependents ...*sequence.Sequence) *barrier.SequenceBarrier
}

// gatingSnapshot guards the producer-visible set of gating sequences with a
// single atomic pointer swap, per the immutable-on-read snapshot discipline
// used to break the cyclic reference between the Sequencer and the
// consumers that own those sequences.
type gatingSnapshot struct {
	seqs atomic.Pointer[[]*sequence.Sequence]
}

func newGatingSnapshot() *gatingSnapshot {
	g := &gatingSnapshot{}
	empty := []*sequence.Sequence{}
	g.seqs.Store(&empty)
	return g
}

func (g *gatingSnapshot) load() []*sequence.Sequence {
	return *g.seqs.Load()
}

func (g *gatingSnapshot) add(seqs ...*sequence.Sequence) {
	for {
		oldPtr := g.seqs.Load()
		old := *oldPtr
		next := make([]*sequence.Sequence, len(old)+len(seqs))
		copy(next, old)
		copy(next[len(old):], seqs)
		if g.seqs.CompareAndSwap(oldPtr, &next) {
			return
		}
	}
}

func (g *gatingSnapshot) remove(target *sequence.Sequence) bool {
	for {
		oldPtr := g.seqs.Load()
		old := *oldPtr
		idx := -1
		for i, s := range old {
			if s == target {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		next := make([]*sequence.Sequence, 0, len(old)-1)
		next = append(next, old[:idx]...)
		next = append(next, old[idx+1:]...)
		if g.seqs.CompareAndSwap(oldPtr, &next) {
			return true
		}
	}
}

// log2OfPowerOfTwo returns log2(n) for a positive power-of-two n.
func log2OfPowerOfTwo(n int64) int64 {
	var shift int64
	for v := n; v > 1; v >>= 1 {
		shift++
	}
	return shift
}

// checkCapacity panics if capacity is not a positive power of two, mirroring
// the ring slot array's own requirement that index masking stay valid.
func checkCapacity(capacity int64) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("sequencer: capacity must be a positive power of two")
	}
}

// newBarrier is the shared NewBarrier implementation for both Sequencer
// variants.
func newBarrier(cursor *sequence.Sequence, checker barrier.AvailabilityChecker, ws waitstrategy.WaitStrategy, dependents ...*sequence.Sequence) *barrier.SequenceBarrier {
	return barrier.New(cursor, checker, ws, dependents...)
}
