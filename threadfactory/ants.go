package threadfactory

import (
	"github.com/panjf2000/ants/v2"

	"ringline/internal/xlog"
)

// AntsPool wraps a github.com/panjf2000/ants worker pool and exposes a
// ThreadFactory that submits processor loops to it instead of spawning a
// bare goroutine per consumer. Since each submitted function runs for the
// lifetime of its processor rather than returning promptly, the pool's
// capacity must be sized to at least the number of consumers that will
// ever be started through it — there is no task-level reuse to exploit
// here, only the pool's shared panic recovery and lifecycle accounting.
type AntsPool struct {
	pool *ants.Pool
}

// NewAntsPool constructs an AntsPool backed by a blocking pool of the
// given capacity: Submit waits for a free worker rather than dropping the
// task, since a dropped processor loop would simply never run.
func NewAntsPool(capacity int) (*AntsPool, error) {
	pool, err := ants.NewPool(capacity, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	return &AntsPool{pool: pool}, nil
}

// Factory returns the ThreadFactory backed by this pool.
func (p *AntsPool) Factory() ThreadFactory {
	return func(name string, run func()) {
		if err := p.pool.Submit(func() {
			defer func() {
				if r := recover(); r != nil {
					xlog.Errorf("consumer %q panicked: %v", name, r)
				}
			}()
			run()
		}); err != nil {
			xlog.Errorf("failed to submit consumer %q to pool: %v", name, err)
		}
	}
}

// Release closes the pool. It does not wait for processor loops started
// through it to exit.
func (p *AntsPool) Release() {
	p.pool.Release()
}
