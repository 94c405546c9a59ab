//go:build arm64 && !noasm && !nocgo

package cpu

/*
#ifdef __aarch64__
static inline void cpu_yield() {
    __asm__ __volatile__("yield" ::: "memory");
}
#else
#error "This file requires ARM64 architecture"
#endif
*/
import "C"

// Relax emits the ARM64 YIELD instruction, hinting to the core that the
// calling thread is in a spin-wait loop.
//
//go:nosplit
func Relax() {
	C.cpu_yield()
}
