// Package cpu exposes a single architecture-specific spin-wait hint,
// Relax, used by the busy-spin and sleeping wait strategies while they
// poll a dependent Sequence. It never sleeps, never allocates, and never
// blocks — it only tells the core to back off for a handful of cycles so
// sibling hyperthreads or cores make progress.
package cpu
