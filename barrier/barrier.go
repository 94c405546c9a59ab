// Package barrier provides SequenceBarrier, the object a consumer uses to
// learn how far it may safely read into a RingBuffer. A barrier composes
// the producer's cursor with zero or more upstream dependent Sequences and
// a shared WaitStrategy, and exposes a single WaitFor call that blocks,
// spins, or sleeps (per the strategy) until the requested position is
// available or the barrier is alerted.
package barrier

import (
	"go.uber.org/atomic"

	"ringline/rlerrors"
	"ringline/sequence"
	"ringline/waitstrategy"
)

// AvailabilityChecker is the minimal surface a SequenceBarrier needs from
// its Sequencer to tolerate multi-producer gaps: a sequence claimed by one
// producer goroutine may become visible out of order with respect to a
// sequence claimed by another, so the barrier must ask the sequencer
// whether a given slot has actually been published rather than trusting
// the raw cursor value alone.
type AvailabilityChecker interface {
	// IsAvailable reports whether seq has been published.
	IsAvailable(seq int64) bool

	// GetHighestPublishedSequence returns the highest contiguous sequence
	// published at or below availableSequence, starting the scan from
	// lowerBound.
	GetHighestPublishedSequence(lowerBound, availableSequence int64) int64
}

// SequenceBarrier tracks how far a consumer may read. When dependents is
// empty the barrier gates purely on the sequencer's cursor (the consumer
// sits directly downstream of the producers); otherwise it gates on the
// minimum of the dependent consumers' sequences, so a chained consumer
// never laps the ones it depends on.
type SequenceBarrier struct {
	cursor       *sequence.Sequence
	sequencer    AvailabilityChecker
	dependentSeq sequence.Getter
	waitStrategy waitstrategy.WaitStrategy
	alerted      atomic.Bool
}

// New constructs a SequenceBarrier over the given producer cursor and
// sequencer, gated additionally by dependents (may be empty). With two or
// more dependents, the barrier gates on a sequence.Group rather than any
// single one of them, so the effective minimum is recomputed on every poll
// instead of being picked once and potentially going stale while a
// sibling upstream consumer still lags.
func New(cursor *sequence.Sequence, sequencer AvailabilityChecker, waitStrategy waitstrategy.WaitStrategy, dependents ...*sequence.Sequence) *SequenceBarrier {
	b := &SequenceBarrier{
		cursor:       cursor,
		sequencer:    sequencer,
		waitStrategy: waitStrategy,
	}
	switch len(dependents) {
	case 0:
		b.dependentSeq = cursor
	case 1:
		b.dependentSeq = dependents[0]
	default:
		b.dependentSeq = sequence.NewGroup(dependents...)
	}
	return b
}

// WaitFor blocks until seq is available to read, the barrier is alerted
// (returning rlerrors.ErrAlerted), or the wait strategy's own timeout
// elapses (returning rlerrors.ErrTimeout). Whenever the wait reaches seq it
// also consults the sequencer's availability buffer so a multi-producer
// gap never allows a consumer to read a slot that has been claimed but not
// yet published.
func (b *SequenceBarrier) WaitFor(seq int64) (int64, error) {
	if err := b.CheckAlert(); err != nil {
		return -1, err
	}

	available, err := b.waitStrategy.WaitFor(seq, b.cursor, b.dependentSeq, b)
	if err != nil {
		return -1, err
	}
	if available < seq {
		return available, nil
	}

	// A multi-producer sequencer may have a slot claimed but not yet
	// published below the observed cursor value, so clamp to the highest
	// contiguous published sequence in [seq, available].
	return b.sequencer.GetHighestPublishedSequence(seq, available), nil
}

// GetCursor returns the producer cursor this barrier ultimately traces
// back to.
func (b *SequenceBarrier) GetCursor() *sequence.Sequence {
	return b.cursor
}

// Alert marks the barrier alerted. Every WaitFor call parked in this
// barrier's wait strategy wakes and returns rlerrors.ErrAlerted.
func (b *SequenceBarrier) Alert() {
	b.alerted.Store(true)
	b.waitStrategy.SignalAllWhenBlocking()
}

// ClearAlert resets the alerted flag so the barrier can be reused.
func (b *SequenceBarrier) ClearAlert() {
	b.alerted.Store(false)
}

// IsAlerted reports whether Alert has been called without a matching
// ClearAlert.
func (b *SequenceBarrier) IsAlerted() bool {
	return b.alerted.Load()
}

// CheckAlert implements waitstrategy.AlertChecker.
func (b *SequenceBarrier) CheckAlert() error {
	if b.alerted.Load() {
		return rlerrors.ErrAlerted
	}
	return nil
}
