package processor

// EventHandler processes events drained from the ring in sequence order.
// OnEvent is the only required hook; the others are opportunities to react
// to batch and lifecycle boundaries and default to no-ops when a handler
// embeds nothing.
type EventHandler[T any] interface {
	// OnEvent is invoked once per event, in sequence order. endOfBatch is
	// true for the last event of the current drained batch, letting a
	// handler defer expensive flush work until the batch is exhausted.
	OnEvent(event *T, sequence int64, endOfBatch bool) error
}

// BatchStartHandler is an optional EventHandler extension: OnBatchStart
// runs once before the first OnEvent of a drained batch, given the batch's
// size.
type BatchStartHandler interface {
	OnBatchStart(batchSize int64)
}

// LifecycleHandler is an optional EventHandler extension for startup and
// shutdown notification.
type LifecycleHandler interface {
	OnStart()
	OnShutdown()
}

// TimeoutHandler is an optional EventHandler extension invoked when a
// TimeoutBlockingWaitStrategy's wait elapses with nothing new to consume.
type TimeoutHandler interface {
	OnTimeout(sequence int64)
}

// RewindableEventHandler is an EventHandler that may ask the processor to
// re-run the current batch from its first sequence instead of treating a
// failure as a normal handler exception. A handler signals this by
// returning from OnEvent an error for which its own RewindSignal reports
// true (conventionally rlerrors.ErrRewind).
type RewindableEventHandler[T any] interface {
	EventHandler[T]
	// RewindSignal reports whether err requests a batch rewind rather
	// than a normal handler-failure report.
	RewindSignal(err error) bool
}

// ExceptionHandler receives failures the processor itself does not resolve:
// per-event handler errors, OnStart failures, and OnShutdown failures.
type ExceptionHandler[T any] interface {
	HandleEventException(err error, sequence int64, event *T)
	HandleOnStartException(err error)
	HandleOnShutdownException(err error)
}
