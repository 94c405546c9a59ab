package waitstrategy

import (
	"runtime"
	"time"

	"ringline/internal/cpu"
	"ringline/sequence"
)

const (
	sleepingSpinTries    = 200
	sleepingYieldTries   = 100
	sleepingDefaultSleep = 1 * time.Microsecond
)

// SleepingWaitStrategy spins briefly, then yields, then sleeps for the same
// fixed interval on every further iteration; the sleep does not grow.
// Trades latency for much lower CPU usage than Yielding or BusySpin —
// the "cold-spin" half of the hot/cold split in ring/pinned_consumer.go,
// which backs off to cpu.Relax() once a consumer has gone quiet.
type SleepingWaitStrategy struct {
	sleepFor time.Duration
}

// NewSleeping constructs a SleepingWaitStrategy with the default 1us sleep.
func NewSleeping() *SleepingWaitStrategy {
	return &SleepingWaitStrategy{sleepFor: sleepingDefaultSleep}
}

// NewSleepingWithDuration constructs a SleepingWaitStrategy that sleeps for
// the given duration once its spin/yield budget is exhausted.
func NewSleepingWithDuration(d time.Duration) *SleepingWaitStrategy {
	return &SleepingWaitStrategy{sleepFor: d}
}

func (w *SleepingWaitStrategy) WaitFor(seq int64, cursor *sequence.Sequence, dependent sequence.Getter, barrier AlertChecker) (int64, error) {
	counter := sleepingSpinTries + sleepingYieldTries
	var available int64

	for {
		if available = dependent.Get(); available >= seq {
			return available, nil
		}
		if err := barrier.CheckAlert(); err != nil {
			return -1, err
		}

		switch {
		case counter > sleepingYieldTries:
			counter--
			cpu.Relax()
		case counter > 0:
			counter--
			runtime.Gosched()
		default:
			time.Sleep(w.sleepFor)
		}
	}
}

func (w *SleepingWaitStrategy) SignalAllWhenBlocking() {}
