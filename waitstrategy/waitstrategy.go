// Package waitstrategy implements the policies by which a consumer blocks
// or spins until a dependent Sequence has advanced far enough to satisfy a
// requested sequence. Every strategy here is safe to share across many
// SequenceBarriers backed by the same RingBuffer.
package waitstrategy

import "ringline/sequence"

// AlertChecker is the minimal surface a SequenceBarrier exposes to a
// WaitStrategy. It is declared here, not in package barrier, so that
// waitstrategy and barrier can depend on each other's exported types
// without an import cycle: barrier.SequenceBarrier satisfies this
// interface structurally.
type AlertChecker interface {
	// CheckAlert returns rlerrors.ErrAlerted if the barrier has been
	// alerted, else nil.
	CheckAlert() error
}

// WaitStrategy is the policy by which a consumer waits for a dependent
// Sequence to reach a requested value. Implementations must check the
// barrier's alert flag on every iteration of their wait and return
// promptly once it is set.
type WaitStrategy interface {
	// WaitFor blocks, spins, or sleeps until dependent.Get() >= seq, the
	// barrier is alerted, or (for timeout strategies) a deadline elapses.
	// It returns the observed dependent value on success. dependent may be
	// a single Sequence or a sequence.Group recomputing a live minimum
	// across several upstream consumers; implementations must call
	// dependent.Get() fresh on every iteration rather than caching it, so
	// that a Group's minimum is never stale.
	WaitFor(seq int64, cursor *sequence.Sequence, dependent sequence.Getter, barrier AlertChecker) (int64, error)

	// SignalAllWhenBlocking wakes every waiter parked on this strategy's
	// condition variable. It is a no-op for strategies that never block.
	SignalAllWhenBlocking()
}
