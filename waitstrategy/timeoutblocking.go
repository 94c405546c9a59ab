package waitstrategy

import (
	"sync"
	"time"

	"ringline/rlerrors"
	"ringline/sequence"
)

// TimeoutBlockingWaitStrategy behaves like BlockingWaitStrategy, except the
// parked wait is bounded: once the configured timeout elapses without the
// cursor (and then the dependent sequence) reaching the requested value,
// WaitFor returns rlerrors.ErrTimeout so the caller can drive a soft
// OnTimeout handler callback instead of blocking forever.
type TimeoutBlockingWaitStrategy struct {
	mu      sync.Mutex
	cond    *sync.Cond
	timeout time.Duration
}

// NewTimeoutBlocking constructs a TimeoutBlockingWaitStrategy with the
// given per-wait timeout.
func NewTimeoutBlocking(timeout time.Duration) *TimeoutBlockingWaitStrategy {
	w := &TimeoutBlockingWaitStrategy{timeout: timeout}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *TimeoutBlockingWaitStrategy) WaitFor(seq int64, cursor *sequence.Sequence, dependent sequence.Getter, barrier AlertChecker) (int64, error) {
	deadline := time.Now().Add(w.timeout)

	if cursor.Get() < seq {
		w.mu.Lock()
		for cursor.Get() < seq {
			if err := barrier.CheckAlert(); err != nil {
				w.mu.Unlock()
				return -1, err
			}
			if w.waitOnCondLocked(deadline) {
				w.mu.Unlock()
				return -1, rlerrors.ErrTimeout
			}
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
		if time.Now().After(deadline) {
			return -1, rlerrors.ErrTimeout
		}
	}
}

// waitOnCondLocked parks on w.cond until either woken or deadline elapses.
// Must be called with w.mu held; returns true if the deadline elapsed.
func (w *TimeoutBlockingWaitStrategy) waitOnCondLocked(deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return true
	}

	timer := time.AfterFunc(remaining, func() {
		w.mu.Lock()
		w.cond.Broadcast()
		w.mu.Unlock()
	})
	w.cond.Wait()
	timer.Stop()

	return time.Now().After(deadline)
}

func (w *TimeoutBlockingWaitStrategy) SignalAllWhenBlocking() {
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
}
