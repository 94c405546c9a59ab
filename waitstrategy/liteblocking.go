package waitstrategy

import (
	"sync"

	"go.uber.org/atomic"

	"ringline/sequence"
)

// LiteBlockingWaitStrategy behaves like BlockingWaitStrategy but tracks
// whether any goroutine is actually parked before SignalAllWhenBlocking
// bothers to acquire the lock and broadcast. On a lightly loaded ring this
// avoids the mutex round-trip on every single publish.
type LiteBlockingWaitStrategy struct {
	mu           sync.Mutex
	cond         *sync.Cond
	signalNeeded atomic.Bool
}

// NewLiteBlocking constructs a LiteBlockingWaitStrategy.
func NewLiteBlocking() *LiteBlockingWaitStrategy {
	w := &LiteBlockingWaitStrategy{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *LiteBlockingWaitStrategy) WaitFor(seq int64, cursor *sequence.Sequence, dependent sequence.Getter, barrier AlertChecker) (int64, error) {
	if cursor.Get() < seq {
		w.mu.Lock()
		for cursor.Get() < seq {
			w.signalNeeded.Store(true)
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

func (w *LiteBlockingWaitStrategy) SignalAllWhenBlocking() {
	if w.signalNeeded.CompareAndSwap(true, false) {
		w.mu.Lock()
		w.cond.Broadcast()
		w.mu.Unlock()
	}
}
