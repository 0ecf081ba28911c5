package rig

import "log/slog"

// Emitter is an in-process publish/subscribe point for zero-argument
// notifications. Listeners run synchronously on the emitting context.
type Emitter struct {
	listeners []*emitterListener
	onError   ErrorHandler
}

type emitterListener struct {
	fn func()
}

// NewEmitter creates an emitter. Panics raised by listeners are recovered and
// passed to h, or logged with the default logger when h is nil.
func NewEmitter(h ErrorHandler) *Emitter {
	if h == nil {
		h = logErrors(slog.Default())
	}
	return &Emitter{onError: h}
}

// Listen registers fn and returns a Releasable that unsubscribes it.
func (e *Emitter) Listen(fn func()) Releasable {
	if fn == nil {
		panic("rig: nil emitter listener")
	}
	l := &emitterListener{fn: fn}
	e.listeners = append(e.listeners, l)
	return Once(func() { e.remove(l) })
}

// Emit invokes every listener registered at the time of the call, in
// subscription order. Listeners added or removed while emitting do not change
// the set visited by this emission.
func (e *Emitter) Emit() {
	if len(e.listeners) == 0 {
		return
	}
	snapshot := make([]*emitterListener, len(e.listeners))
	copy(snapshot, e.listeners)

	for _, l := range snapshot {
		recoverInto(e.handler(), "emitter", 0, 0, l.fn)
	}
}

// Len returns the number of registered listeners.
func (e *Emitter) Len() int {
	return len(e.listeners)
}

func (e *Emitter) handler() ErrorHandler {
	if e.onError == nil {
		e.onError = logErrors(slog.Default())
	}
	return e.onError
}

func (e *Emitter) remove(l *emitterListener) {
	for i, other := range e.listeners {
		if other == l {
			// Copy instead of shifting in place so snapshots stay valid.
			next := make([]*emitterListener, 0, len(e.listeners)-1)
			next = append(next, e.listeners[:i]...)
			e.listeners = append(next, e.listeners[i+1:]...)
			return
		}
	}
}
