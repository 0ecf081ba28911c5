package rig

import (
	"log/slog"
	"reflect"
)

// Bus routes typed world-input events to filtered listeners. Hosts publish
// events into the bus (see InputHandler); components listen with Listen.
//
// Like Emitter, dispatch is synchronous and snapshot based, and the bus is not
// safe for concurrent use.
type Bus struct {
	listeners map[reflect.Type][]*busListener
	onError   ErrorHandler
}

type busListener struct {
	fn func(any)
}

// NewBus creates an empty bus. Listener panics are passed to h, or logged with
// the default logger when h is nil.
func NewBus(h ErrorHandler) *Bus {
	if h == nil {
		h = logErrors(slog.Default())
	}
	return &Bus{
		listeners: make(map[reflect.Type][]*busListener),
		onError:   h,
	}
}

// Listen registers handler for events of type E that satisfy filter. A nil
// filter accepts every event. The returned Releasable unsubscribes.
//
// Usage:
//
//	scope.Add(rig.Listen(bus, func(e *rig.EventVehicleEnter) bool {
//	    return e.Vehicle == seat
//	}, onEnter))
func Listen[E any](b *Bus, filter func(E) bool, handler func(E)) Releasable {
	if handler == nil {
		panic("rig: nil bus handler")
	}
	t := reflect.TypeOf((*E)(nil)).Elem()
	l := &busListener{fn: func(v any) {
		e := v.(E)
		if filter != nil && !filter(e) {
			return
		}
		handler(e)
	}}
	b.listeners[t] = append(b.listeners[t], l)
	return Once(func() { b.remove(t, l) })
}

// Publish delivers ev to every listener of type E registered at the time of
// the call, in registration order.
func Publish[E any](b *Bus, ev E) {
	t := reflect.TypeOf((*E)(nil)).Elem()
	current := b.listeners[t]
	if len(current) == 0 {
		return
	}
	snapshot := make([]*busListener, len(current))
	copy(snapshot, current)

	for _, l := range snapshot {
		recoverInto(b.onError, "bus", 0, 0, func() { l.fn(ev) })
	}
}

// Listeners returns the number of listeners registered for E.
func Listeners[E any](b *Bus) int {
	return len(b.listeners[reflect.TypeOf((*E)(nil)).Elem()])
}

func (b *Bus) remove(t reflect.Type, l *busListener) {
	current := b.listeners[t]
	for i, other := range current {
		if other != l {
			continue
		}
		if len(current) == 1 {
			delete(b.listeners, t)
			return
		}
		next := make([]*busListener, 0, len(current)-1)
		next = append(next, current[:i]...)
		b.listeners[t] = append(next, current[i+1:]...)
		return
	}
}
