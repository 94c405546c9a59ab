package ringbuffer

import (
	"testing"

	"ringline/sequence"
	"ringline/sequencer"
	"ringline/waitstrategy"
)

type payload struct {
	value int
}

func newTestRing(capacity int64) *RingBuffer[payload] {
	seq := sequencer.NewSingleProducer(capacity, waitstrategy.NewBusySpin())
	return New(capacity, func() payload { return payload{} }, seq)
}

func TestPublishEventWritesAndPublishes(t *testing.T) {
	r := newTestRing(8)

	seq, err := r.PublishEvent(func(e *payload, s int64) {
		e.value = 42
	})
	if err != nil {
		t.Fatalf("PublishEvent returned error %v", err)
	}
	if seq != 0 {
		t.Fatalf("PublishEvent returned seq %d, want 0", seq)
	}
	if r.Get(0).value != 42 {
		t.Fatalf("slot 0 value = %d, want 42", r.Get(0).value)
	}
	if !r.Sequencer().IsAvailable(0) {
		t.Fatal("sequence 0 not marked available after PublishEvent")
	}
}

func TestPublishEventOneArg(t *testing.T) {
	r := newTestRing(8)

	seq, err := PublishEventOneArg(r, func(e *payload, s int64, arg int) {
		e.value = arg
	}, 7)
	if err != nil {
		t.Fatalf("PublishEventOneArg returned error %v", err)
	}
	if r.Get(seq).value != 7 {
		t.Fatalf("slot value = %d, want 7", r.Get(seq).value)
	}
}

func TestPublishEventsBatch(t *testing.T) {
	r := newTestRing(16)

	args := []int{1, 2, 3, 4, 5}
	hi, err := PublishEvents(r, func(e *payload, s int64, arg int) {
		e.value = arg
	}, args)
	if err != nil {
		t.Fatalf("PublishEvents returned error %v", err)
	}
	if hi != 4 {
		t.Fatalf("PublishEvents returned hi=%d, want 4", hi)
	}
	for i, want := range args {
		if got := r.Get(int64(i)).value; got != want {
			t.Errorf("slot %d = %d, want %d", i, got, want)
		}
	}
	for seq := int64(0); seq <= hi; seq++ {
		if !r.Sequencer().IsAvailable(seq) {
			t.Errorf("sequence %d not available after batch publish", seq)
		}
	}
}

func TestTryPublishEventFailsAtCapacity(t *testing.T) {
	r := newTestRing(1)
	consumer := sequence.New() // never advances, so capacity never frees
	r.AddGatingSequences(consumer)

	_, err := r.TryPublishEvent(func(e *payload, s int64) { e.value = 1 })
	if err != nil {
		t.Fatalf("first TryPublishEvent returned error %v", err)
	}

	_, err = r.TryPublishEvent(func(e *payload, s int64) { e.value = 2 })
	if err == nil {
		t.Fatal("second TryPublishEvent succeeded, want insufficient capacity")
	}
}
