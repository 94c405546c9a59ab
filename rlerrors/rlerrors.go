// Package rlerrors collects the sentinel errors raised by the ring
// coordination engine. All values are package-level vars so that no
// error is ever allocated on a hot path — callers compare with errors.Is.
package rlerrors

import "errors"

var (
	// ErrInsufficientCapacity is returned by TryNext when claiming would
	// overrun a gating sequence. It is never returned by the blocking Next.
	ErrInsufficientCapacity = errors.New("ringline: insufficient ring capacity")

	// ErrAlerted is returned by a wait strategy or barrier when the barrier
	// has been alerted. It is always a cooperative cancellation, never a
	// failure, and is never passed to an ExceptionHandler.
	ErrAlerted = errors.New("ringline: barrier alerted")

	// ErrTimeout is returned by the timeout-blocking wait strategy when its
	// deadline elapses before the dependent sequence advances.
	ErrTimeout = errors.New("ringline: wait timed out")

	// ErrRewind is raised by a RewindableEventHandler to request that the
	// current batch be restarted from its first sequence.
	ErrRewind = errors.New("ringline: rewind requested")

	// ErrTooManyRewinds is reported to the ExceptionHandler by a
	// BatchEventProcessor when its RewindStrategy declines a further rewind
	// of the current batch.
	ErrTooManyRewinds = errors.New("ringline: rewind attempt budget exhausted")

	// ErrAlreadyStarted is returned when a BatchEventProcessor's Run is
	// invoked while it is already RUNNING.
	ErrAlreadyStarted = errors.New("ringline: processor already running")

	// ErrHalted names the HALTED processor state. BatchEventProcessor.Run
	// does not return it: Run on a processor halted before it started
	// returns nil without running.
	ErrHalted = errors.New("ringline: processor halted")

	// ErrShutdownTimeout is returned by ConsumerRegistry.Shutdown when the
	// backlog does not drain before the supplied context is done.
	ErrShutdownTimeout = errors.New("ringline: shutdown timed out with backlog remaining")
)
