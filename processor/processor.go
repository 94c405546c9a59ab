// Package processor implements the consumer-side batch drain loop:
// BatchEventProcessor claims a contiguous batch of available sequences
// from a SequenceBarrier, hands each event to an EventHandler, advances its
// own checkpoint Sequence, and repeats until halted.
package processor

import (
	"errors"

	"go.uber.org/atomic"

	"ringline/barrier"
	"ringline/rlerrors"
	"ringline/ringbuffer"
	"ringline/sequence"
)

const (
	stateIdle int32 = iota
	stateRunning
	stateHalted
)

// BatchEventProcessor drains one RingBuffer through one EventHandler on the
// calling goroutine. Run blocks until Halt is called (or the handler
// requests nothing of the sort — there is no natural end of stream); start
// it on its own goroutine via a ThreadFactory.
type BatchEventProcessor[T any] struct {
	ring             *ringbuffer.RingBuffer[T]
	barrier          *barrier.SequenceBarrier
	handler          EventHandler[T]
	rewindable       RewindableEventHandler[T]
	exceptionHandler ExceptionHandler[T]
	rewindStrategy   RewindStrategy

	checkpoint    *sequence.Sequence
	state         atomic.Int32
	haltRequested atomic.Bool
}

// New constructs a BatchEventProcessor over ring, draining through b and
// dispatching to handler. If handler also implements
// RewindableEventHandler, rewind signals are consulted against
// rewindStrategy (which must be non-nil in that case).
func New[T any](ring *ringbuffer.RingBuffer[T], b *barrier.SequenceBarrier, handler EventHandler[T], exceptionHandler ExceptionHandler[T], rewindStrategy RewindStrategy) *BatchEventProcessor[T] {
	p := &BatchEventProcessor[T]{
		ring:             ring,
		barrier:          b,
		handler:          handler,
		exceptionHandler: exceptionHandler,
		rewindStrategy:   rewindStrategy,
		checkpoint:       sequence.New(),
	}
	if rewindable, ok := handler.(RewindableEventHandler[T]); ok {
		p.rewindable = rewindable
	}
	return p
}

// GetSequence returns the processor's checkpoint Sequence: the highest
// sequence this processor has fully handled. Register it as a gating
// sequence on the producer side before calling Run.
func (p *BatchEventProcessor[T]) GetSequence() *sequence.Sequence {
	return p.checkpoint
}

// SetExceptionHandler replaces the processor's ExceptionHandler. Intended
// for wiring-time overrides (e.g. registry.SetExceptionHandlerFor)
// before Run is called; swapping handlers on a running processor is not
// synchronised against an in-flight HandleEventException call.
func (p *BatchEventProcessor[T]) SetExceptionHandler(handler ExceptionHandler[T]) {
	p.exceptionHandler = handler
}

// Run executes the drain loop on the calling goroutine until Halt is
// called. It returns rlerrors.ErrAlreadyStarted if the processor is
// already running, or nil immediately if the processor was halted before
// ever starting.
func (p *BatchEventProcessor[T]) Run() error {
	if !p.state.CompareAndSwap(stateIdle, stateRunning) {
		if p.state.Load() == stateHalted {
			return nil
		}
		return rlerrors.ErrAlreadyStarted
	}
	defer p.state.Store(stateIdle)

	p.barrier.ClearAlert()
	p.haltRequested.Store(false)
	p.runOnStart()

	nextSequence := p.checkpoint.Get() + 1

	for {
		availableSequence, err := p.barrier.WaitFor(nextSequence)
		if err != nil {
			if errors.Is(err, rlerrors.ErrAlerted) {
				if p.haltRequested.Load() {
					break
				}
				continue
			}
			if errors.Is(err, rlerrors.ErrTimeout) {
				p.runOnTimeout(nextSequence)
				continue
			}
			// Unexpected wait-strategy error: report and keep going,
			// per the propagation policy that the sequence protocol
			// itself never corrupts processor state.
			p.exceptionHandler.HandleEventException(err, nextSequence, p.ring.Get(nextSequence))
			nextSequence++
			continue
		}

		if availableSequence >= nextSequence {
			nextSequence = p.processBatch(nextSequence, availableSequence)
		}
	}

	p.runOnShutdown()
	return nil
}

// processBatch drains [nextSequence, availableSequence], handling rewind
// signals and handler failures, and returns the sequence to resume from.
func (p *BatchEventProcessor[T]) processBatch(nextSequence, availableSequence int64) int64 {
	if starter, ok := p.handler.(BatchStartHandler); ok {
		starter.OnBatchStart(availableSequence - nextSequence + 1)
	}

	rewindAttempts := 0

	s := nextSequence
	for s <= availableSequence {
		event := p.ring.Get(s)
		endOfBatch := s == availableSequence

		err := p.handler.OnEvent(event, s, endOfBatch)
		if err != nil {
			if p.rewindable != nil && p.rewindable.RewindSignal(err) && p.rewindStrategy != nil {
				if p.rewindStrategy.ShouldRewind(rewindAttempts) {
					rewindAttempts++
					s = nextSequence
					continue
				}
				p.exceptionHandler.HandleEventException(rlerrors.ErrTooManyRewinds, s, event)
				s++
				continue
			}
			p.exceptionHandler.HandleEventException(err, s, event)
		}
		s++
	}

	p.checkpoint.Set(availableSequence)
	return availableSequence + 1
}

func (p *BatchEventProcessor[T]) runOnStart() {
	starter, ok := p.handler.(LifecycleHandler)
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.exceptionHandler.HandleOnStartException(toError(r))
		}
	}()
	starter.OnStart()
}

func (p *BatchEventProcessor[T]) runOnShutdown() {
	shutter, ok := p.handler.(LifecycleHandler)
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.exceptionHandler.HandleOnShutdownException(toError(r))
		}
	}()
	shutter.OnShutdown()
}

func (p *BatchEventProcessor[T]) runOnTimeout(sequence int64) {
	timeoutHandler, ok := p.handler.(TimeoutHandler)
	if !ok {
		return
	}
	timeoutHandler.OnTimeout(sequence)
}

// Halt requests the processor to stop. If it has not yet started, it is
// marked halted permanently; if it is running, its barrier is alerted and
// the drain loop exits at its next wait point, returning to the idle
// state.
func (p *BatchEventProcessor[T]) Halt() {
	if p.state.CompareAndSwap(stateIdle, stateHalted) {
		return
	}
	p.haltRequested.Store(true)
	p.barrier.Alert()
}

// IsRunning reports whether the drain loop is currently executing.
func (p *BatchEventProcessor[T]) IsRunning() bool {
	return p.state.Load() == stateRunning
}

func toError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errors.New("processor: recovered panic")
}
