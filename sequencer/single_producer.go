package sequencer

import (
	"runtime"

	"ringline/barrier"
	"ringline/rlerrors"
	"ringline/sequence"
	"ringline/waitstrategy"
)

// SingleProducerSequencer claims and publishes slots for exactly one
// producer goroutine. nextValue and cachedValue are plain fields, not
// atomics: the single-writer contract means only the owning goroutine ever
// mutates them, so there is nothing to race against on the claim side.
// Publication still goes through the cursor Sequence because consumers
// read it concurrently.
//
// Callers asking for more than one producer goroutine get undefined
// behaviour; this type does not and cannot detect the misuse on the fast
// path.
type SingleProducerSequencer struct {
	capacity    int64
	cursor      *sequence.Sequence
	gating      *gatingSnapshot
	waitStrat   waitstrategy.WaitStrategy
	nextValue   int64
	cachedValue int64
}

// NewSingleProducer constructs a SingleProducerSequencer over a ring of the
// given capacity (must be a power of two), using ws to park producers that
// outrun their gating consumers.
func NewSingleProducer(capacity int64, ws waitstrategy.WaitStrategy) *SingleProducerSequencer {
	checkCapacity(capacity)
	return &SingleProducerSequencer{
		capacity:    capacity,
		cursor:      sequence.New(),
		gating:      newGatingSnapshot(),
		waitStrat:   ws,
		nextValue:   sequence.InitialValue,
		cachedValue: sequence.InitialValue,
	}
}

func (s *SingleProducerSequencer) Next() (int64, error) {
	return s.NextN(1)
}

func (s *SingleProducerSequencer) NextN(n int64) (int64, error) {
	if n < 1 {
		panic("sequencer: n must be >= 1")
	}

	nextSeq := s.nextValue + n
	wrapPoint := nextSeq - s.capacity

	if wrapPoint > s.cachedValue || s.cachedValue > s.nextValue {
		for {
			minSeq := sequence.MinOf(s.gating.load(), s.cursor.Get())
			if wrapPoint <= minSeq {
				s.cachedValue = minSeq
				break
			}
			runtime.Gosched()
		}
	}

	s.nextValue = nextSeq
	return nextSeq, nil
}

func (s *SingleProducerSequencer) TryNext() (int64, error) {
	return s.TryNextN(1)
}

func (s *SingleProducerSequencer) TryNextN(n int64) (int64, error) {
	if n < 1 {
		panic("sequencer: n must be >= 1")
	}

	nextSeq := s.nextValue + n
	wrapPoint := nextSeq - s.capacity

	if wrapPoint > s.cachedValue || s.cachedValue > s.nextValue {
		minSeq := sequence.MinOf(s.gating.load(), s.cursor.Get())
		s.cachedValue = minSeq
		if wrapPoint > minSeq {
			return -1, rlerrors.ErrInsufficientCapacity
		}
	}

	s.nextValue = nextSeq
	return nextSeq, nil
}

func (s *SingleProducerSequencer) Publish(seq int64) {
	s.cursor.Set(seq)
	s.waitStrat.SignalAllWhenBlocking()
}

func (s *SingleProducerSequencer) PublishRange(lo, hi int64) {
	s.Publish(hi)
}

func (s *SingleProducerSequencer) IsAvailable(seq int64) bool {
	return seq <= s.cursor.Get()
}

func (s *SingleProducerSequencer) GetHighestPublishedSequence(lowerBound, availableSequence int64) int64 {
	return availableSequence
}

func (s *SingleProducerSequencer) AddGatingSequences(seqs ...*sequence.Sequence) {
	s.gating.add(seqs...)
}

func (s *SingleProducerSequencer) RemoveGatingSequence(seq *sequence.Sequence) bool {
	return s.gating.remove(seq)
}

func (s *SingleProducerSequencer) GetCursor() *sequence.Sequence {
	return s.cursor
}

func (s *SingleProducerSequencer) Capacity() int64 {
	return s.capacity
}

func (s *SingleProducerSequencer) NewBarrier(dependents ...*sequence.Sequence) *barrier.SequenceBarrier {
	return newBarrier(s.cursor, s, s.waitStrat, dependents...)
}
