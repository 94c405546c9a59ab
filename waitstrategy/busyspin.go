package waitstrategy

import (
	"ringline/internal/cpu"
	"ringline/sequence"
)

// BusySpinWaitStrategy burns a core tightly re-reading the dependent
// Sequence. Lowest latency of any strategy, highest CPU cost. No sleeps,
// no signals — grounded on the PopWait hot loop in ring/ring.go, which
// spins on cpu.Relax() between polls rather than parking.
type BusySpinWaitStrategy struct{}

// NewBusySpin constructs a BusySpinWaitStrategy.
func NewBusySpin() *BusySpinWaitStrategy {
	return &BusySpinWaitStrategy{}
}

func (w *BusySpinWaitStrategy) WaitFor(seq int64, cursor *sequence.Sequence, dependent sequence.Getter, barrier AlertChecker) (int64, error) {
	var available int64
	for {
		if available = dependent.Get(); available >= seq {
			return available, nil
		}
		if err := barrier.CheckAlert(); err != nil {
			return -1, err
		}
		cpu.Relax()
	}
}

func (w *BusySpinWaitStrategy) SignalAllWhenBlocking() {}
