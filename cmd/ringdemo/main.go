// Command ringdemo wires a RingBuffer, a chain of consumers, and a
// ConsumerRegistry end to end, and runs it against synthetic load until
// interrupted or the -run-for duration elapses. It exists to exercise every piece of the coordination
// engine together, the way main.go exercises the original system's
// router and harvester together.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ringline/internal/affinity"
	"ringline/internal/xlog"
	"ringline/processor"
	"ringline/registry"
	"ringline/ringbuffer"
	"ringline/sequencer"
	"ringline/threadfactory"
	"ringline/waitstrategy"
)

type tick struct {
	value int64
}

// relayHandler doubles every tick's value and passes it downstream; it
// sits at the head of the two-stage consumer chain.
type relayHandler struct{}

func (relayHandler) OnEvent(e *tick, seq int64, endOfBatch bool) error {
	e.value *= 2
	return nil
}

// sinkHandler is the end of the chain: it counts events and logs a
// progress line once per second.
type sinkHandler struct {
	count    int64
	lastLog  time.Time
}

func (h *sinkHandler) OnEvent(e *tick, seq int64, endOfBatch bool) error {
	h.count++
	if endOfBatch && time.Since(h.lastLog) > time.Second {
		xlog.Infof("sink: %d events processed, last value %d", h.count, e.value)
		h.lastLog = time.Now()
	}
	return nil
}

func (h *sinkHandler) OnStart() {
	h.lastLog = time.Now()
	xlog.Infof("sink: starting")
}

func (h *sinkHandler) OnShutdown() {
	xlog.Infof("sink: stopping after %d events", h.count)
}

func main() {
	var (
		capacity     = flag.Int64("capacity", 1024, "ring buffer capacity, must be a power of two")
		multiProducer = flag.Bool("multi-producer", false, "use the multi-producer sequencer instead of single-producer")
		poolSize     = flag.Int("pool-size", 8, "ants worker pool capacity for the ThreadFactory")
		pinCPU       = flag.Int("pin-cpu", -1, "logical CPU to pin every consumer to; -1 disables pinning")
		runFor       = flag.Duration("run-for", 5*time.Second, "how long to publish synthetic load before shutting down")
	)
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	xlog.SetDefault(logger.Sugar())
	defer logger.Sync()

	ws := waitstrategy.NewBlocking()

	var seq sequencer.Sequencer
	if *multiProducer {
		seq = sequencer.NewMultiProducer(*capacity, ws)
	} else {
		seq = sequencer.NewSingleProducer(*capacity, ws)
	}

	ring := ringbuffer.New(*capacity, func() tick { return tick{} }, seq)

	reg := registry.New(ring.GetCursor())

	relay := relayHandler{}
	relayBarrier := ring.NewBarrier()
	relayExh := processor.NewLoggingExceptionHandler[tick]()
	relayProc := processor.New[tick](ring, relayBarrier, relay, relayExh, nil)
	registry.AddConsumer(reg, "relay", relayProc, relayBarrier)

	sink := &sinkHandler{}
	sinkBarrier := ring.NewBarrier(relayProc.GetSequence())
	sinkExh := processor.NewLoggingExceptionHandler[tick]()
	sinkProc := processor.New[tick](ring, sinkBarrier, sink, sinkExh, nil)
	registry.AddConsumer(reg, "sink", sinkProc, sinkBarrier)
	reg.MarkAsUsedInBarrier("relay")

	ring.AddGatingSequences(relayProc.GetSequence(), sinkProc.GetSequence())

	pool, err := threadfactory.NewAntsPool(*poolSize)
	if err != nil {
		xlog.Errorf("failed to build ants pool: %v", err)
		os.Exit(1)
	}
	defer pool.Release()
	factory := pool.Factory()

	if *pinCPU >= 0 {
		pinned := factory
		factory = func(name string, run func()) {
			pinned(name, func() {
				affinity.Pin(*pinCPU)
				defer affinity.Unpin()
				run()
			})
		}
	}

	reg.StartAll(factory)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	deadline := time.After(*runFor)
	producing := true
	var i int64
	for producing {
		select {
		case <-sigCh:
			producing = false
		case <-deadline:
			producing = false
		default:
			s, err := ring.Next()
			if err != nil {
				continue
			}
			ring.Get(s).value = i
			ring.Publish(s)
			i++
		}
	}

	fmt.Fprintf(os.Stderr, "published %d events, shutting down\n", i)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := reg.Shutdown(ctx); err != nil {
		xlog.Errorf("shutdown did not drain cleanly: %v", err)
		os.Exit(1)
	}
}
