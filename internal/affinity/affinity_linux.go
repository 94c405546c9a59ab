//go:build linux

// Package affinity optionally pins the calling OS thread to a single
// logical CPU, for consumers that want dedicated-core latency guarantees.
// It is never required: a BatchEventProcessor runs correctly on whatever
// goroutine its ThreadFactory schedules it onto.
package affinity

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Pin locks the calling goroutine to its current OS thread and restricts
// that thread to cpu. Errors are deliberately swallowed: on a
// containerised or cgroup-restricted host the call may return EPERM or
// EINVAL, and the fallback is simply "no pin", never a crash.
func Pin(cpu int) {
	if cpu < 0 {
		return
	}
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	_ = unix.SchedSetaffinity(0, &set)
}

// Unpin releases the calling goroutine's OS thread lock. Callers that Pin
// at the start of a long-running consumer loop typically never call this;
// it exists for tests and short-lived pinned sections.
func Unpin() {
	runtime.UnlockOSThread()
}
