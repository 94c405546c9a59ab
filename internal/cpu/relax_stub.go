//go:build (!amd64 && !arm64) || noasm || nocgo

// Portable fall-back for architectures without a cgo-backed hint, or when
// built with the noasm or nocgo tag. CGO_ENABLED=0 alone does not select
// this file.

package cpu

// Relax is a no-op on unsupported targets.
//
//go:nosplit
func Relax() {}
