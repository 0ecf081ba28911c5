package rig

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Tick is the only notion of time inside rig. It is advanced exactly once per
// fixed-rate host step by Clock.Tick.
type Tick uint64

// TimerState is the lifecycle state of a Timer.
type TimerState uint8

const (
	// TimerScheduled means the timer is waiting for its next firing.
	TimerScheduled TimerState = iota
	// TimerFired means a one-shot timer has run its callback.
	TimerFired
	// TimerCancelled means the timer was cancelled and will never fire again.
	TimerCancelled
)

// String returns the string representation of the timer state.
func (s TimerState) String() string {
	switch s {
	case TimerScheduled:
		return "Scheduled"
	case TimerFired:
		return "Fired"
	case TimerCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// ErrorHandler receives failures recovered at a callback boundary.
type ErrorHandler func(err error)

// CallbackError describes a panic recovered from a scheduled callback or listener.
type CallbackError struct {
	// Source names the boundary that recovered the panic ("timer", "emitter", "bus").
	Source string
	// Tick is the clock tick the callback ran on. Zero outside of a Clock.
	Tick Tick
	// Timer is the id of the timer, zero for listeners.
	Timer uint64
	// Recovered is the value passed to panic.
	Recovered any
	// Stack is the goroutine stack at the time of recovery.
	Stack []byte
}

// Error implements error.
func (e *CallbackError) Error() string {
	if e.Timer != 0 {
		return fmt.Sprintf("rig: panic in %s %d at tick %d: %v", e.Source, e.Timer, e.Tick, e.Recovered)
	}
	return fmt.Sprintf("rig: panic in %s: %v", e.Source, e.Recovered)
}

// Unwrap returns the recovered value if it was an error.
func (e *CallbackError) Unwrap() error {
	err, _ := e.Recovered.(error)
	return err
}

// recoverInto runs fn and converts a panic into a CallbackError passed to h.
func recoverInto(h ErrorHandler, source string, tick Tick, timer uint64, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h(&CallbackError{Source: source, Tick: tick, Timer: timer, Recovered: r, Stack: debug.Stack()})
		}
	}()
	fn()
}

// logErrors returns an ErrorHandler that logs to l at error level.
func logErrors(l *slog.Logger) ErrorHandler {
	return func(err error) {
		l.Error("rig: callback failed", "err", err)
	}
}

// Timer is a pending one-shot or periodic callback registered with a Clock.
// Cancelling is idempotent and safe from within the timer's own callback.
type Timer struct {
	id       uint64
	due      Tick
	period   Tick
	callback func()
	state    TimerState
	clock    *Clock

	// index is the heap index, -1 while the timer is not queued.
	index int
}

// Cancel stops the timer. A timer cancelled before the clock reaches it never
// runs again, even when cancelled on the tick it was due.
func (t *Timer) Cancel() {
	if t == nil || t.state != TimerScheduled {
		return
	}
	t.state = TimerCancelled
	if t.index >= 0 && t.clock != nil {
		t.clock.cancelled++
	}
}

// Release implements Releasable.
func (t *Timer) Release() { t.Cancel() }

// State returns the current state of the timer.
func (t *Timer) State() TimerState {
	return t.state
}

// Periodic reports whether the timer repeats.
func (t *Timer) Periodic() bool {
	return t.period > 0
}

// ClockOption configures a Clock.
type ClockOption func(*Clock)

// WithErrorHandler sets the handler that receives recovered callback panics.
func WithErrorHandler(h ErrorHandler) ClockOption {
	return func(c *Clock) {
		if h != nil {
			c.onError = h
		}
	}
}

// WithLogger sets the logger used by the clock.
func WithLogger(l *slog.Logger) ClockOption {
	return func(c *Clock) {
		if l != nil {
			c.log = l
		}
	}
}

// Clock issues one-shot and periodic callbacks keyed to tick counts.
//
// Concurrency:
// A Clock is not safe for concurrent use. It must only be used from the single
// context that calls Tick, usually a Pump. Callbacks may schedule and cancel
// timers freely (reentrant), but other goroutines must go through an executor
// such as Gateway.Exec.
type Clock struct {
	now  Tick
	seq  uint64
	heap []*Timer

	// cancelled counts cancelled timers still queued.
	cancelled int

	onError ErrorHandler
	log     *slog.Logger
}

// NewClock creates a clock at tick zero.
func NewClock(opts ...ClockOption) *Clock {
	c := &Clock{
		heap: make([]*Timer, 0, 64),
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.onError == nil {
		c.onError = logErrors(c.log)
	}
	return c
}

// Now returns the current tick.
func (c *Clock) Now() Tick {
	return c.now
}

// Pending returns the number of queued timers, including cancelled ones that
// have not been reached yet.
func (c *Clock) Pending() int {
	return len(c.heap)
}

// After schedules fn to run once, delay ticks from now. A delay of zero runs
// fn on the next tick boundary, never synchronously. A negative delay panics.
func (c *Clock) After(delay int, fn func()) *Timer {
	if delay < 0 {
		panic(fmt.Sprintf("rig: negative timer delay %d", delay))
	}
	if fn == nil {
		panic("rig: nil timer callback")
	}
	return c.schedule(delay, 0, fn)
}

// Every schedules fn to run at initialDelay ticks from now and then every
// period ticks until cancelled. A negative delay or a period below one panics.
func (c *Clock) Every(initialDelay, period int, fn func()) *Timer {
	if initialDelay < 0 {
		panic(fmt.Sprintf("rig: negative timer delay %d", initialDelay))
	}
	if period < 1 {
		panic(fmt.Sprintf("rig: non-positive timer period %d", period))
	}
	if fn == nil {
		panic("rig: nil timer callback")
	}
	return c.schedule(initialDelay, Tick(period), fn)
}

func (c *Clock) schedule(delay int, period Tick, fn func()) *Timer {
	// Zero and one both mean the next tick boundary.
	if delay == 0 {
		delay = 1
	}
	c.seq++
	t := &Timer{
		id:       c.seq,
		due:      c.now + Tick(delay),
		period:   period,
		callback: fn,
		clock:    c,
		index:    -1,
	}
	c.push(t)
	return t
}

// Tick advances the clock by one step and runs every timer that is due, in
// (due tick, registration order) order. Timers scheduled by a callback during
// Tick are never run within the same Tick.
func (c *Clock) Tick() {
	c.now++
	now := c.now

	for len(c.heap) > 0 && c.heap[0].due <= now {
		t := c.pop()
		if t.state != TimerScheduled {
			c.cancelled--
			continue
		}

		if t.period == 0 {
			t.state = TimerFired
		}
		recoverInto(c.onError, "timer", now, t.id, t.callback)

		if t.period > 0 && t.state == TimerScheduled {
			t.due += t.period
			c.push(t)
		}
	}

	if c.cancelled > 64 && c.cancelled*2 > len(c.heap) {
		c.compact()
	}
}

// compact removes cancelled timers from the heap and rebuilds the heap property.
func (c *Clock) compact() {
	write := 0
	for read := 0; read < len(c.heap); read++ {
		if c.heap[read].state == TimerScheduled {
			c.heap[write] = c.heap[read]
			c.heap[write].index = write
			write++
		} else {
			c.heap[read].index = -1
		}
	}

	for i := write; i < len(c.heap); i++ {
		c.heap[i] = nil
	}
	c.heap = c.heap[:write]
	c.cancelled = 0

	for i := len(c.heap)/2 - 1; i >= 0; i-- {
		c.down(i, len(c.heap))
	}
}

// push adds a timer to the heap.
func (c *Clock) push(t *Timer) {
	t.index = len(c.heap)
	c.heap = append(c.heap, t)
	c.up(t.index)
}

// pop removes and returns the earliest timer.
func (c *Clock) pop() *Timer {
	n := len(c.heap) - 1
	c.swap(0, n)
	c.down(0, n)
	t := c.heap[n]
	c.heap[n] = nil
	c.heap = c.heap[:n]
	t.index = -1
	return t
}

// less orders timers by due tick, then by registration order.
func (c *Clock) less(i, j int) bool {
	a, b := c.heap[i], c.heap[j]
	if a.due != b.due {
		return a.due < b.due
	}
	return a.id < b.id
}

func (c *Clock) up(i int) {
	for {
		parent := (i - 1) / 2
		if parent == i || !c.less(i, parent) {
			break
		}
		c.swap(i, parent)
		i = parent
	}
}

func (c *Clock) down(i, n int) {
	for {
		left := 2*i + 1
		if left >= n || left < 0 {
			break
		}
		j := left
		if right := left + 1; right < n && c.less(right, left) {
			j = right
		}
		if !c.less(j, i) {
			break
		}
		c.swap(i, j)
		i = j
	}
}

func (c *Clock) swap(i, j int) {
	c.heap[i], c.heap[j] = c.heap[j], c.heap[i]
	c.heap[i].index = i
	c.heap[j].index = j
}
