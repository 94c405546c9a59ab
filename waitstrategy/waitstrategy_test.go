package waitstrategy

import (
	"errors"
	"testing"
	"time"

	"ringline/rlerrors"
	"ringline/sequence"
)

// fakeBarrier is a minimal AlertChecker used to drive WaitFor in isolation
// from the real SequenceBarrier.
type fakeBarrier struct {
	alerted bool
}

func (b *fakeBarrier) CheckAlert() error {
	if b.alerted {
		return rlerrors.ErrAlerted
	}
	return nil
}

func testStrategyWakesOnProgress(t *testing.T, w WaitStrategy) {
	cursor := sequence.NewWithValue(-1)
	dependent := cursor
	barrier := &fakeBarrier{}

	done := make(chan struct{})
	go func() {
		time.Sleep(5 * time.Millisecond)
		cursor.Set(0)
		w.SignalAllWhenBlocking()
		close(done)
	}()

	got, err := w.WaitFor(0, cursor, dependent, barrier)
	if err != nil {
		t.Fatalf("WaitFor returned error %v", err)
	}
	if got != 0 {
		t.Fatalf("WaitFor returned %d, want 0", got)
	}
	<-done
}

func testStrategyReturnsAlert(t *testing.T, w WaitStrategy) {
	cursor := sequence.NewWithValue(-1)
	dependent := cursor
	barrier := &fakeBarrier{alerted: true}

	_, err := w.WaitFor(0, cursor, dependent, barrier)
	if !errors.Is(err, rlerrors.ErrAlerted) {
		t.Fatalf("WaitFor error = %v, want ErrAlerted", err)
	}
}

func TestBusySpinWaitStrategy(t *testing.T) {
	testStrategyWakesOnProgress(t, NewBusySpin())
	testStrategyReturnsAlert(t, NewBusySpin())
}

func TestYieldingWaitStrategy(t *testing.T) {
	testStrategyWakesOnProgress(t, NewYielding())
	testStrategyReturnsAlert(t, NewYielding())
}

func TestSleepingWaitStrategy(t *testing.T) {
	testStrategyWakesOnProgress(t, NewSleepingWithDuration(time.Millisecond))
	testStrategyReturnsAlert(t, NewSleepingWithDuration(time.Millisecond))
}

func TestBlockingWaitStrategy(t *testing.T) {
	testStrategyWakesOnProgress(t, NewBlocking())
	testStrategyReturnsAlert(t, NewBlocking())
}

func TestLiteBlockingWaitStrategy(t *testing.T) {
	testStrategyWakesOnProgress(t, NewLiteBlocking())
	testStrategyReturnsAlert(t, NewLiteBlocking())
}

func TestTimeoutBlockingWaitStrategyWakesOnProgress(t *testing.T) {
	testStrategyWakesOnProgress(t, NewTimeoutBlocking(time.Second))
}

func TestTimeoutBlockingWaitStrategyReturnsAlert(t *testing.T) {
	testStrategyReturnsAlert(t, NewTimeoutBlocking(time.Second))
}

func TestTimeoutBlockingWaitStrategyTimesOut(t *testing.T) {
	w := NewTimeoutBlocking(10 * time.Millisecond)
	cursor := sequence.NewWithValue(-1)
	barrier := &fakeBarrier{}

	start := time.Now()
	_, err := w.WaitFor(0, cursor, cursor, barrier)
	elapsed := time.Since(start)

	if !errors.Is(err, rlerrors.ErrTimeout) {
		t.Fatalf("WaitFor error = %v, want ErrTimeout", err)
	}
	if elapsed > 500*time.Millisecond {
		t.Fatalf("WaitFor took %v, want close to the 10ms timeout", elapsed)
	}
}

func TestLiteBlockingSkipsSignalWhenNoWaiter(t *testing.T) {
	w := NewLiteBlocking()
	// No one is waiting; SignalAllWhenBlocking must be safe to call and
	// must not deadlock or panic even though signalNeeded is false.
	w.SignalAllWhenBlocking()
}
