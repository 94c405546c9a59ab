package registry

import (
	"context"
	"testing"
	"time"

	"ringline/processor"
	"ringline/ringbuffer"
	"ringline/sequencer"
	"ringline/threadfactory"
	"ringline/waitstrategy"
)

type event struct{ value int }

type noopHandler struct{}

func (noopHandler) OnEvent(e *event, seq int64, endOfBatch bool) error { return nil }

func newWiredConsumer(t *testing.T, ring *ringbuffer.RingBuffer[event]) (*processor.BatchEventProcessor[event], *noopHandler) {
	t.Helper()
	h := &noopHandler{}
	b := ring.NewBarrier()
	exh := processor.NewLoggingExceptionHandler[event]()
	p := processor.New[event](ring, b, h, exh, nil)
	return p, h
}

func TestAddConsumerAndLookup(t *testing.T) {
	seq := sequencer.NewSingleProducer(8, waitstrategy.NewBusySpin())
	ring := ringbuffer.New(8, func() event { return event{} }, seq)
	reg := New(ring.GetCursor())

	p, h := newWiredConsumer(t, ring)
	AddConsumer(reg, h, p, ring.NewBarrier())

	if reg.GetSequenceFor(h) != p.GetSequence() {
		t.Fatal("GetSequenceFor did not return the registered processor's sequence")
	}
	if reg.GetBarrierFor(h) == nil {
		t.Fatal("GetBarrierFor returned nil for a registered consumer")
	}
	if reg.GetSequenceFor("nonexistent") != nil {
		t.Fatal("GetSequenceFor returned non-nil for an unregistered identity")
	}
}

func TestHasBacklogReflectsEndOfChainLag(t *testing.T) {
	seq := sequencer.NewSingleProducer(8, waitstrategy.NewBusySpin())
	ring := ringbuffer.New(8, func() event { return event{} }, seq)
	reg := New(ring.GetCursor())

	p, h := newWiredConsumer(t, ring)
	AddConsumer(reg, h, p, ring.NewBarrier())

	if reg.HasBacklog() {
		t.Fatal("HasBacklog = true before any publish")
	}

	s, err := ring.Next()
	if err != nil {
		t.Fatalf("Next returned error %v", err)
	}
	ring.Publish(s)

	if !reg.HasBacklog() {
		t.Fatal("HasBacklog = false after a publish the consumer has not caught up to")
	}

	p.GetSequence().Set(s)
	if reg.HasBacklog() {
		t.Fatal("HasBacklog = true after the consumer caught up")
	}
}

func TestMarkAsUsedInBarrierExcludesFromBacklog(t *testing.T) {
	seq := sequencer.NewSingleProducer(8, waitstrategy.NewBusySpin())
	ring := ringbuffer.New(8, func() event { return event{} }, seq)
	reg := New(ring.GetCursor())

	p, h := newWiredConsumer(t, ring)
	AddConsumer(reg, h, p, ring.NewBarrier())
	reg.MarkAsUsedInBarrier(h)

	s, err := ring.Next()
	if err != nil {
		t.Fatalf("Next returned error %v", err)
	}
	ring.Publish(s)

	if reg.HasBacklog() {
		t.Fatal("HasBacklog = true for a consumer marked used-in-barrier (not end of chain)")
	}
}

func TestStartAllAndHaltAll(t *testing.T) {
	seq := sequencer.NewSingleProducer(8, waitstrategy.NewBusySpin())
	ring := ringbuffer.New(8, func() event { return event{} }, seq)
	reg := New(ring.GetCursor())

	p, h := newWiredConsumer(t, ring)
	AddConsumer(reg, h, p, ring.NewBarrier())

	reg.StartAll(threadfactory.Go)

	deadline := time.Now().Add(time.Second)
	for !p.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !p.IsRunning() {
		t.Fatal("processor never entered the running state after StartAll")
	}

	reg.HaltAll()

	deadline = time.Now().Add(time.Second)
	for p.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if p.IsRunning() {
		t.Fatal("processor still running after HaltAll")
	}
}

func TestShutdownTimesOutWithBacklog(t *testing.T) {
	seq := sequencer.NewSingleProducer(8, waitstrategy.NewBusySpin())
	ring := ringbuffer.New(8, func() event { return event{} }, seq)
	reg := New(ring.GetCursor())

	p, h := newWiredConsumer(t, ring)
	AddConsumer(reg, h, p, ring.NewBarrier())

	s, err := ring.Next()
	if err != nil {
		t.Fatalf("Next returned error %v", err)
	}
	ring.Publish(s)
	// Never advance p's sequence, so backlog never clears.

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = reg.Shutdown(ctx)
	if err == nil {
		t.Fatal("Shutdown returned nil, want a timeout error")
	}
}

func TestShutdownSucceedsWhenBacklogDrains(t *testing.T) {
	seq := sequencer.NewSingleProducer(8, waitstrategy.NewBusySpin())
	ring := ringbuffer.New(8, func() event { return event{} }, seq)
	reg := New(ring.GetCursor())

	p, h := newWiredConsumer(t, ring)
	AddConsumer(reg, h, p, ring.NewBarrier())

	s, err := ring.Next()
	if err != nil {
		t.Fatalf("Next returned error %v", err)
	}
	ring.Publish(s)
	p.GetSequence().Set(s)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := reg.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown returned error %v, want nil", err)
	}
}
