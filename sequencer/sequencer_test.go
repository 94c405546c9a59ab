package sequencer

import (
	"errors"
	"sync"
	"testing"

	"ringline/rlerrors"
	"ringline/sequence"
	"ringline/waitstrategy"
)

func TestSingleProducerNextPublishIsAvailable(t *testing.T) {
	s := NewSingleProducer(8, waitstrategy.NewBusySpin())

	seq, err := s.Next()
	if err != nil {
		t.Fatalf("Next returned error %v", err)
	}
	if seq != 0 {
		t.Fatalf("Next returned %d, want 0", seq)
	}
	if s.IsAvailable(0) {
		t.Fatal("IsAvailable(0) = true before Publish")
	}
	s.Publish(seq)
	if !s.IsAvailable(0) {
		t.Fatal("IsAvailable(0) = false after Publish")
	}
}

func TestSingleProducerTryNextFailsAtCapacity(t *testing.T) {
	s := NewSingleProducer(2, waitstrategy.NewBusySpin())
	gate := sequence.New()
	s.AddGatingSequences(gate)

	seq, err := s.TryNextN(2)
	if err != nil {
		t.Fatalf("TryNextN(2) returned error %v", err)
	}
	s.PublishRange(0, seq)

	_, err = s.TryNext()
	if !errors.Is(err, rlerrors.ErrInsufficientCapacity) {
		t.Fatalf("TryNext error = %v, want ErrInsufficientCapacity", err)
	}

	gate.Set(0)
	got, err := s.TryNext()
	if err != nil {
		t.Fatalf("TryNext returned error %v after gating advanced: %v", got, err)
	}
}

func TestSingleProducerGetHighestPublishedSequenceIsIdentity(t *testing.T) {
	s := NewSingleProducer(8, waitstrategy.NewBusySpin())
	if got := s.GetHighestPublishedSequence(0, 5); got != 5 {
		t.Fatalf("GetHighestPublishedSequence = %d, want 5", got)
	}
}

func TestMultiProducerNextIsUniquePerGoroutine(t *testing.T) {
	const producers = 8
	const perProducer = 2000
	capacity := int64(1024)

	s := NewMultiProducer(capacity, waitstrategy.NewBusySpin())
	consumerSeq := sequence.New()
	s.AddGatingSequences(consumerSeq)

	// Keep the gating consumer advancing so producers never block.
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				consumerSeq.Set(s.GetCursor().Get())
			}
		}
	}()

	seen := make([]bool, producers*perProducer)
	var mu sync.Mutex

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				seq, err := s.Next()
				if err != nil {
					t.Errorf("Next returned error %v", err)
					return
				}
				mu.Lock()
				if seen[seq] {
					t.Errorf("sequence %d claimed twice", seq)
				}
				seen[seq] = true
				mu.Unlock()
				s.Publish(seq)
			}
		}()
	}
	wg.Wait()
	close(stop)

	for i, ok := range seen {
		if !ok {
			t.Fatalf("sequence %d was never claimed", i)
		}
	}
}

func TestMultiProducerGetHighestPublishedSequenceStopsAtGap(t *testing.T) {
	s := NewMultiProducer(8, waitstrategy.NewBusySpin())

	// Claim and publish 0, 2, 3 but leave 1 unpublished, simulating a
	// producer that has claimed but not yet committed its slot.
	s.setAvailable(0)
	s.setAvailable(2)
	s.setAvailable(3)

	got := s.GetHighestPublishedSequence(0, 3)
	if got != 0 {
		t.Fatalf("GetHighestPublishedSequence = %d, want 0 (gap at 1)", got)
	}
}

func TestMultiProducerGetHighestPublishedSequenceContiguous(t *testing.T) {
	s := NewMultiProducer(8, waitstrategy.NewBusySpin())
	s.PublishRange(0, 4)

	got := s.GetHighestPublishedSequence(0, 4)
	if got != 4 {
		t.Fatalf("GetHighestPublishedSequence = %d, want 4", got)
	}
}

func TestMultiProducerTryNextFailsAtCapacity(t *testing.T) {
	s := NewMultiProducer(2, waitstrategy.NewBusySpin())
	gate := sequence.New()
	s.AddGatingSequences(gate)

	seq, err := s.TryNextN(2)
	if err != nil {
		t.Fatalf("TryNextN(2) returned error %v", err)
	}
	s.PublishRange(0, seq)

	_, err = s.TryNext()
	if !errors.Is(err, rlerrors.ErrInsufficientCapacity) {
		t.Fatalf("TryNext error = %v, want ErrInsufficientCapacity", err)
	}
}

func TestGatingSnapshotAddAndRemove(t *testing.T) {
	g := newGatingSnapshot()
	a := sequence.NewWithValue(1)
	b := sequence.NewWithValue(2)

	g.add(a, b)
	if len(g.load()) != 2 {
		t.Fatalf("len(load()) = %d, want 2", len(g.load()))
	}

	if !g.remove(a) {
		t.Fatal("remove(a) = false, want true")
	}
	if len(g.load()) != 1 || g.load()[0] != b {
		t.Fatalf("load() after remove = %v, want [b]", g.load())
	}
	if g.remove(a) {
		t.Fatal("remove(a) = true on second call, want false")
	}
}

func TestLog2OfPowerOfTwo(t *testing.T) {
	cases := map[int64]int64{1: 0, 2: 1, 4: 2, 1024: 10}
	for n, want := range cases {
		if got := log2OfPowerOfTwo(n); got != want {
			t.Errorf("log2OfPowerOfTwo(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestCheckCapacityPanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("checkCapacity(3) did not panic")
		}
	}()
	checkCapacity(3)
}
