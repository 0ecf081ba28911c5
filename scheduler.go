package rig

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Executor runs fn on the host's tick-processing context and returns once fn
// has completed. It is the thread-safe boundary between the Pump goroutine and
// the single-threaded rig core.
type Executor func(fn func())

// Inline is an Executor that runs fn on the calling goroutine. It is only safe
// when nothing else touches the core concurrently.
func Inline(fn func()) { fn() }

// Pump drives a Clock at a fixed rate. Each step runs the tick listeners and
// then the clock's due timers, all inside the executor.
type Pump struct {
	clock  *Clock
	exec   Executor
	ticks  *Emitter
	rate   time.Duration
	log    *slog.Logger
	counts atomic.Uint64

	started  atomic.Bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewPump creates a pump stepping c every rate through exec.
func NewPump(c *Clock, exec Executor, rate time.Duration, log *slog.Logger) *Pump {
	if exec == nil {
		exec = Inline
	}
	if rate <= 0 {
		rate = 50 * time.Millisecond // 20 TPS
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pump{
		clock:  c,
		exec:   exec,
		ticks:  NewEmitter(c.onError),
		rate:   rate,
		log:    log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// OnTick registers fn to run once per step, before the clock's timers.
func (p *Pump) OnTick(fn func()) Releasable {
	return p.ticks.Listen(fn)
}

// Start begins the tick loop. Calling Start on a running or stopped pump does
// nothing.
func (p *Pump) Start() {
	if p.started.Swap(true) {
		return
	}
	p.log.Debug("rig: pump started", "rate", p.rate)
	go p.tickLoop()
}

// Stop ends the tick loop and waits for the current step to finish. A pump
// cannot be restarted.
func (p *Pump) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		// Claiming the start flag keeps a later Start from spawning a loop.
		if !p.started.CompareAndSwap(false, true) {
			<-p.doneCh
		}
		p.log.Debug("rig: pump stopped", "ticks", p.counts.Load())
	})
}

// Ticks returns the number of steps run so far.
func (p *Pump) Ticks() uint64 {
	return p.counts.Load()
}

// Step runs a single step synchronously. It is used by tick loops owned by the
// host and by tests.
func (p *Pump) Step() {
	p.exec(func() {
		p.ticks.Emit()
		p.clock.Tick()
	})
	p.counts.Add(1)
}

func (p *Pump) tickLoop() {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.rate)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.Step()
		}
	}
}
