// Package threadfactory abstracts how a ConsumerRegistry starts a
// BatchEventProcessor's long-running drain loop: on a plain goroutine, or
// handed off to a pooled worker.
package threadfactory

// ThreadFactory starts run executing under the given name and returns
// immediately; run is expected to keep going until the caller halts
// whatever it is driving. name is diagnostic only — pool-backed factories
// may use it for panic logging, a bare goroutine factory can ignore it.
type ThreadFactory func(name string, run func())

// Go is the default ThreadFactory: it starts run on a freshly spawned
// goroutine. A BatchEventProcessor's loop runs for the ring's entire
// lifetime, so there is nothing to reuse a pooled worker for.
func Go(name string, run func()) {
	go run()
}
