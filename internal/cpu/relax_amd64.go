//go:build amd64 && !noasm && !nocgo

package cpu

/*
#ifdef __x86_64__
static inline void cpu_pause() {
    __asm__ __volatile__("pause" ::: "memory");
}
#else
#error "This file requires x86-64 architecture"
#endif
*/
import "C"

// Relax emits the x86-64 PAUSE instruction. PAUSE delays the next
// instruction's execution while letting sibling hyperthreads make
// progress; typical delay is 10-140 cycles depending on microarchitecture.
//
//go:nosplit
func Relax() {
	C.cpu_pause()
}
