package waitstrategy

import (
	"runtime"

	"ringline/sequence"
)

// yieldSpinTries is the number of tight-loop iterations attempted before
// the strategy starts ceding the processor with runtime.Gosched.
const yieldSpinTries = 100

// YieldingWaitStrategy spins for a fixed number of iterations, then calls
// runtime.Gosched() (Go's analogue of Thread.yield()) on every subsequent
// iteration. Uses 100% CPU but gives other goroutines a chance to run more
// readily than BusySpin.
type YieldingWaitStrategy struct{}

// NewYielding constructs a YieldingWaitStrategy.
func NewYielding() *YieldingWaitStrategy {
	return &YieldingWaitStrategy{}
}

func (w *YieldingWaitStrategy) WaitFor(seq int64, cursor *sequence.Sequence, dependent sequence.Getter, barrier AlertChecker) (int64, error) {
	counter := yieldSpinTries
	var available int64

	for {
		if available = dependent.Get(); available >= seq {
			return available, nil
		}
		if err := barrier.CheckAlert(); err != nil {
			return -1, err
		}
		if counter == 0 {
			runtime.Gosched()
		} else {
			counter--
		}
	}
}

func (w *YieldingWaitStrategy) SignalAllWhenBlocking() {}
