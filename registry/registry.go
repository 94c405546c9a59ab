// Package registry tracks the consumers wired onto a ring: their
// checkpoint sequences, their barriers, whether anything downstream
// depends on them, and how to start and stop them as a group.
package registry

import (
	"context"
	"sync"
	"time"

	"ringline/barrier"
	"ringline/internal/xlog"
	"ringline/processor"
	"ringline/rlerrors"
	"ringline/sequence"
	"ringline/threadfactory"
)

// Identity is any comparable value used to look a consumer up again after
// registration — typically a pointer to the concrete handler that backs
// it.
type Identity any

// haltable is the subset of BatchEventProcessor[T] the registry needs
// without binding itself to a single event type.
type haltable interface {
	Run() error
	Halt()
	IsRunning() bool
}

type entry struct {
	identity     Identity
	proc         haltable
	sequence     *sequence.Sequence
	barrier      *barrier.SequenceBarrier
	isEndOfChain bool
}

// ConsumerRegistry is a map from handler identity to its
// (processor, sequence, barrier, isEndOfChain) tuple, plus the group
// operations a ConsumerRegistry needs to start, halt, and drain every
// consumer wired onto one ring.
type ConsumerRegistry struct {
	mu      sync.Mutex
	entries []*entry
	byID    map[Identity]*entry
	cursor  *sequence.Sequence
}

// New constructs an empty ConsumerRegistry gated against cursor (the
// producer side's cursor, used by HasBacklog).
func New(cursor *sequence.Sequence) *ConsumerRegistry {
	return &ConsumerRegistry{
		byID:   make(map[Identity]*entry),
		cursor: cursor,
	}
}

// AddConsumer registers proc under identity, defaulting isEndOfChain to
// true: a freshly added consumer has nothing downstream of it until
// MarkAsUsedInBarrier says otherwise.
func AddConsumer[T any](r *ConsumerRegistry, identity Identity, proc *processor.BatchEventProcessor[T], b *barrier.SequenceBarrier) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := &entry{
		identity:     identity,
		proc:         proc,
		sequence:     proc.GetSequence(),
		barrier:      b,
		isEndOfChain: true,
	}
	r.entries = append(r.entries, e)
	r.byID[identity] = e
}

// GetSequenceFor returns the checkpoint sequence registered under
// identity, or nil if no such consumer exists.
func (r *ConsumerRegistry) GetSequenceFor(identity Identity) *sequence.Sequence {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[identity]; ok {
		return e.sequence
	}
	return nil
}

// GetBarrierFor returns the SequenceBarrier registered under identity, or
// nil if no such consumer exists.
func (r *ConsumerRegistry) GetBarrierFor(identity Identity) *barrier.SequenceBarrier {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[identity]; ok {
		return e.barrier
	}
	return nil
}

// MarkAsUsedInBarrier flips isEndOfChain to false for identity, signalling
// that some other consumer now depends on it and it should be excluded
// from HasBacklog's end-of-chain scan.
func (r *ConsumerRegistry) MarkAsUsedInBarrier(identity Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[identity]; ok {
		e.isEndOfChain = false
	}
}

// HaltAll alerts every registered consumer's barrier, then calls Halt on
// every processor. Alerting first ensures a consumer parked in WaitFor on
// one barrier wakes before its own Halt call is even reached, minimising
// the window between "told to stop" and "actually stopped".
func (r *ConsumerRegistry) HaltAll() {
	r.mu.Lock()
	entries := append([]*entry(nil), r.entries...)
	r.mu.Unlock()

	for _, e := range entries {
		e.barrier.Alert()
	}
	for _, e := range entries {
		e.proc.Halt()
	}
}

// StartAll starts every registered consumer's Run loop via factory.
func (r *ConsumerRegistry) StartAll(factory threadfactory.ThreadFactory) {
	r.mu.Lock()
	entries := append([]*entry(nil), r.entries...)
	r.mu.Unlock()

	for _, e := range entries {
		e := e
		name := identityName(e.identity)
		factory(name, func() {
			if err := e.proc.Run(); err != nil {
				xlog.Errorf("consumer %q failed to start: %v", name, err)
			}
		})
	}
}

// HasBacklog reports whether any end-of-chain consumer's sequence still
// lags the producer cursor.
func (r *ConsumerRegistry) HasBacklog() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cursor := r.cursor.Get()
	for _, e := range r.entries {
		if e.isEndOfChain && e.sequence.Get() < cursor {
			return true
		}
	}
	return false
}

// SetExceptionHandlerFor overrides the ExceptionHandler for the consumer
// registered under identity, mirroring the original's per-handler
// exception overrides. proc must be the same processor passed to
// AddConsumer under this identity.
func SetExceptionHandlerFor[T any](r *ConsumerRegistry, identity Identity, proc *processor.BatchEventProcessor[T], handler processor.ExceptionHandler[T]) {
	proc.SetExceptionHandler(handler)
}

// Shutdown busy-polls HasBacklog until it clears or ctx is done, then
// calls HaltAll. It returns rlerrors.ErrShutdownTimeout if ctx expired
// with backlog still outstanding.
func (r *ConsumerRegistry) Shutdown(ctx context.Context) error {
	const pollInterval = 100 * time.Microsecond

	for r.HasBacklog() {
		select {
		case <-ctx.Done():
			r.HaltAll()
			return rlerrors.ErrShutdownTimeout
		case <-time.After(pollInterval):
		}
	}

	r.HaltAll()
	return nil
}

func identityName(identity Identity) string {
	type named interface{ String() string }
	if n, ok := identity.(named); ok {
		return n.String()
	}
	return "consumer"
}
