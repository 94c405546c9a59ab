package sequencer

import (
	"runtime"

	"go.uber.org/atomic"

	"ringline/barrier"
	"ringline/rlerrors"
	"ringline/sequence"
	"ringline/waitstrategy"
)

// MultiProducerSequencer claims and publishes slots for any number of
// concurrent producer goroutines. Claiming is a CAS loop over the cursor;
// publication marks each claimed index available independently, since two
// producers can commit their slots in either order once they race past the
// claim step.
type MultiProducerSequencer struct {
	capacity        int64
	indexShift      int64
	cursor          *sequence.Sequence
	gating          *gatingSnapshot
	waitStrat       waitstrategy.WaitStrategy
	gatingCache     atomic.Int64 // last minSeq observed; staleness only costs an extra scan, never correctness
	availability    []atomic.Int32
	availabilityMsk int64
}

// NewMultiProducer constructs a MultiProducerSequencer over a ring of the
// given capacity (must be a power of two), using ws to park producers that
// outrun their gating consumers.
func NewMultiProducer(capacity int64, ws waitstrategy.WaitStrategy) *MultiProducerSequencer {
	checkCapacity(capacity)
	s := &MultiProducerSequencer{
		capacity:        capacity,
		indexShift:      log2OfPowerOfTwo(capacity),
		cursor:          sequence.New(),
		gating:          newGatingSnapshot(),
		waitStrat:       ws,
		availability:    make([]atomic.Int32, capacity),
		availabilityMsk: capacity - 1,
	}
	s.gatingCache.Store(sequence.InitialValue)
	for i := range s.availability {
		s.availability[i].Store(-1)
	}
	return s
}

func (s *MultiProducerSequencer) Next() (int64, error) {
	return s.NextN(1)
}

func (s *MultiProducerSequencer) NextN(n int64) (int64, error) {
	if n < 1 {
		panic("sequencer: n must be >= 1")
	}

	for {
		current := s.cursor.Get()
		nextSeq := current + n
		wrapPoint := nextSeq - s.capacity
		cachedGating := s.gatingCache.Load()

		if wrapPoint > cachedGating || cachedGating > current {
			minSeq := sequence.MinOf(s.gating.load(), current)
			if wrapPoint > minSeq {
				runtime.Gosched()
				continue
			}
			s.gatingCache.Store(minSeq)
		}

		if s.cursor.CompareAndSet(current, nextSeq) {
			return nextSeq, nil
		}
	}
}

func (s *MultiProducerSequencer) TryNext() (int64, error) {
	return s.TryNextN(1)
}

func (s *MultiProducerSequencer) TryNextN(n int64) (int64, error) {
	if n < 1 {
		panic("sequencer: n must be >= 1")
	}

	for {
		current := s.cursor.Get()
		nextSeq := current + n
		wrapPoint := nextSeq - s.capacity
		minSeq := sequence.MinOf(s.gating.load(), current)

		if wrapPoint > minSeq {
			return -1, rlerrors.ErrInsufficientCapacity
		}
		s.gatingCache.Store(minSeq)

		if s.cursor.CompareAndSet(current, nextSeq) {
			return nextSeq, nil
		}
	}
}

func (s *MultiProducerSequencer) Publish(seq int64) {
	s.setAvailable(seq)
	s.waitStrat.SignalAllWhenBlocking()
}

func (s *MultiProducerSequencer) PublishRange(lo, hi int64) {
	for seq := lo; seq <= hi; seq++ {
		s.setAvailable(seq)
	}
	s.waitStrat.SignalAllWhenBlocking()
}

func (s *MultiProducerSequencer) setAvailable(seq int64) {
	index := seq & s.availabilityMsk
	flag := seq >> s.indexShift
	s.availability[index].Store(int32(flag))
}

func (s *MultiProducerSequencer) IsAvailable(seq int64) bool {
	index := seq & s.availabilityMsk
	flag := seq >> s.indexShift
	return s.availability[index].Load() == int32(flag)
}

func (s *MultiProducerSequencer) GetHighestPublishedSequence(lowerBound, availableSequence int64) int64 {
	for seq := lowerBound; seq <= availableSequence; seq++ {
		if !s.IsAvailable(seq) {
			return seq - 1
		}
	}
	return availableSequence
}

func (s *MultiProducerSequencer) AddGatingSequences(seqs ...*sequence.Sequence) {
	s.gating.add(seqs...)
}

func (s *MultiProducerSequencer) RemoveGatingSequence(seq *sequence.Sequence) bool {
	return s.gating.remove(seq)
}

func (s *MultiProducerSequencer) GetCursor() *sequence.Sequence {
	return s.cursor
}

func (s *MultiProducerSequencer) Capacity() int64 {
	return s.capacity
}

func (s *MultiProducerSequencer) NewBarrier(dependents ...*sequence.Sequence) *barrier.SequenceBarrier {
	return newBarrier(s.cursor, s, s.waitStrat, dependents...)
}
