// Package ringbuffer provides the fixed-capacity slot array façade over a
// Sequencer: pre-allocated events, translator-based publication helpers,
// and gating/barrier wiring forwarded straight through to the underlying
// Sequencer.
package ringbuffer

import (
	"ringline/barrier"
	"ringline/sequence"
	"ringline/sequencer"
)

// EventFactory pre-allocates one event of type T per ring slot at
// construction time, so the steady-state publish path never allocates.
type EventFactory[T any] func() T

// EventTranslator populates a claimed slot in place, given the slot and the
// sequence it was claimed at.
type EventTranslator[T any] func(event *T, sequence int64)

// EventTranslatorOneArg populates a claimed slot using one caller-supplied
// argument, letting PublishEventOneArg avoid a closure allocation per call.
type EventTranslatorOneArg[T, A any] func(event *T, sequence int64, arg A)

// EventTranslatorTwoArg is the two-argument variant of EventTranslatorOneArg.
type EventTranslatorTwoArg[T, A, B any] func(event *T, sequence int64, arg0 A, arg1 B)

// EventTranslatorThreeArg is the three-argument variant of
// EventTranslatorOneArg.
type EventTranslatorThreeArg[T, A, B, C any] func(event *T, sequence int64, arg0 A, arg1 B, arg2 C)

// RingBuffer is a fixed-capacity array of pre-constructed events of type T,
// indexed by sequence modulo capacity, fronted by a Sequencer that decides
// who may claim and when a claim becomes visible.
type RingBuffer[T any] struct {
	seq      sequencer.Sequencer
	mask     int64
	capacity int64
	slots    []T
}

// New constructs a RingBuffer of the given capacity (must be a power of
// two), pre-populating every slot via factory and claiming/publishing
// through seq.
func New[T any](capacity int64, factory EventFactory[T], seq sequencer.Sequencer) *RingBuffer[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("ringbuffer: capacity must be a positive power of two")
	}
	slots := make([]T, capacity)
	for i := range slots {
		slots[i] = factory()
	}
	return &RingBuffer[T]{
		seq:      seq,
		mask:     capacity - 1,
		capacity: capacity,
		slots:    slots,
	}
}

// indexOf returns the slot index for sequence s.
func (r *RingBuffer[T]) indexOf(s int64) int64 {
	return s & r.mask
}

// Get returns a pointer to the pre-allocated slot at sequence s. The
// caller must only dereference it for sequences it has itself claimed (for
// writes) or that the barrier has reported available (for reads).
func (r *RingBuffer[T]) Get(s int64) *T {
	return &r.slots[r.indexOf(s)]
}

// Next claims the next slot, blocking until capacity is available.
func (r *RingBuffer[T]) Next() (int64, error) {
	return r.seq.Next()
}

// NextN claims the next n slots as a contiguous block.
func (r *RingBuffer[T]) NextN(n int64) (int64, error) {
	return r.seq.NextN(n)
}

// TryNext claims the next slot without blocking.
func (r *RingBuffer[T]) TryNext() (int64, error) {
	return r.seq.TryNext()
}

// TryNextN is the batch form of TryNext.
func (r *RingBuffer[T]) TryNextN(n int64) (int64, error) {
	return r.seq.TryNextN(n)
}

// Publish makes a single claimed sequence visible to consumers.
func (r *RingBuffer[T]) Publish(seq int64) {
	r.seq.Publish(seq)
}

// PublishRange makes a contiguous claimed block visible to consumers as one
// operation.
func (r *RingBuffer[T]) PublishRange(lo, hi int64) {
	r.seq.PublishRange(lo, hi)
}

// PublishEvent claims a slot, runs translator against it, and publishes —
// guaranteeing the publish happens even if translator panics.
func (r *RingBuffer[T]) PublishEvent(translator EventTranslator[T]) (int64, error) {
	seq, err := r.Next()
	if err != nil {
		return -1, err
	}
	defer r.Publish(seq)
	translator(r.Get(seq), seq)
	return seq, nil
}

// PublishEventOneArg is the one-argument form of PublishEvent.
func PublishEventOneArg[T, A any](r *RingBuffer[T], translator EventTranslatorOneArg[T, A], arg A) (int64, error) {
	seq, err := r.Next()
	if err != nil {
		return -1, err
	}
	defer r.Publish(seq)
	translator(r.Get(seq), seq, arg)
	return seq, nil
}

// PublishEventTwoArg is the two-argument form of PublishEvent.
func PublishEventTwoArg[T, A, B any](r *RingBuffer[T], translator EventTranslatorTwoArg[T, A, B], arg0 A, arg1 B) (int64, error) {
	seq, err := r.Next()
	if err != nil {
		return -1, err
	}
	defer r.Publish(seq)
	translator(r.Get(seq), seq, arg0, arg1)
	return seq, nil
}

// PublishEventThreeArg is the three-argument form of PublishEvent.
func PublishEventThreeArg[T, A, B, C any](r *RingBuffer[T], translator EventTranslatorThreeArg[T, A, B, C], arg0 A, arg1 B, arg2 C) (int64, error) {
	seq, err := r.Next()
	if err != nil {
		return -1, err
	}
	defer r.Publish(seq)
	translator(r.Get(seq), seq, arg0, arg1, arg2)
	return seq, nil
}

// TryPublishEvent is the non-blocking form of PublishEvent: it fails fast
// with rlerrors.ErrInsufficientCapacity instead of waiting for room.
func (r *RingBuffer[T]) TryPublishEvent(translator EventTranslator[T]) (int64, error) {
	seq, err := r.TryNext()
	if err != nil {
		return -1, err
	}
	defer r.Publish(seq)
	translator(r.Get(seq), seq)
	return seq, nil
}

// PublishEvents claims a contiguous batch of len(args) slots and runs
// translator once per slot, publishing the whole range atomically from the
// consumer's perspective.
func PublishEvents[T, A any](r *RingBuffer[T], translator EventTranslatorOneArg[T, A], args []A) (int64, error) {
	if len(args) == 0 {
		return -1, nil
	}
	hi, err := r.NextN(int64(len(args)))
	if err != nil {
		return -1, err
	}
	lo := hi - int64(len(args)) + 1
	defer r.PublishRange(lo, hi)
	for i, arg := range args {
		seq := lo + int64(i)
		translator(r.Get(seq), seq, arg)
	}
	return hi, nil
}

// AddGatingSequences registers consumer sequences the producer side must
// not overtake.
func (r *RingBuffer[T]) AddGatingSequences(seqs ...*sequence.Sequence) {
	r.seq.AddGatingSequences(seqs...)
}

// RemoveGatingSequence unregisters a previously added gating sequence.
func (r *RingBuffer[T]) RemoveGatingSequence(seq *sequence.Sequence) bool {
	return r.seq.RemoveGatingSequence(seq)
}

// NewBarrier constructs a SequenceBarrier over this ring's Sequencer,
// gated additionally on the given upstream consumer sequences.
func (r *RingBuffer[T]) NewBarrier(dependents ...*sequence.Sequence) *barrier.SequenceBarrier {
	return r.seq.NewBarrier(dependents...)
}

// GetCursor returns the Sequencer's cursor.
func (r *RingBuffer[T]) GetCursor() *sequence.Sequence {
	return r.seq.GetCursor()
}

// Capacity returns the fixed slot count.
func (r *RingBuffer[T]) Capacity() int64 {
	return r.capacity
}

// Sequencer exposes the underlying Sequencer for callers that need direct
// access to availability queries.
func (r *RingBuffer[T]) Sequencer() sequencer.Sequencer {
	return r.seq
}
