package waitstrategy

import (
	"sync"

	"ringline/sequence"
)

// BlockingWaitStrategy parks the waiting goroutine on a condition variable
// until the producer's cursor reaches the requested sequence, then
// busy-reads the dependent sequence (which may lag the cursor when there
// are upstream consumers) the rest of the way. Lowest CPU usage of any
// strategy, highest latency: waking a parked goroutine costs a scheduler
// round-trip.
type BlockingWaitStrategy struct {
	mu   sync.Mutex
	cond *sync.Cond
}

// NewBlocking constructs a BlockingWaitStrategy.
func NewBlocking() *BlockingWaitStrategy {
	w := &BlockingWaitStrategy{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *BlockingWaitStrategy) WaitFor(seq int64, cursor *sequence.Sequence, dependent sequence.Getter, barrier AlertChecker) (int64, error) {
	if cursor.Get() < seq {
		w.mu.Lock()
		for cursor.Get() < seq {
			if err := barrier.CheckAlert(); err != nil {
				w.mu.Unlock()
				return -1, err
			}
			w.cond.Wait()
		}
		w.mu.Unlock()
	}

	var available int64
	for {
		if available = dependent.Get(); available >= seq {
			return available, nil
		}
		if err := barrier.CheckAlert(); err != nil {
			return -1, err
		}
	}
}

func (w *BlockingWaitStrategy) SignalAllWhenBlocking() {
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
}
