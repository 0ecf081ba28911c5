package rig

import "log/slog"

// ProxySpec describes one render pass of a Proxy.
type ProxySpec struct {
	// Placement is where the object should be.
	Placement Placement
	// Init runs once on every newly created object.
	Init func(Handle)
	// Update runs on every render pass while the object is alive.
	Update func(Handle)
	// Place overrides how an existing object is moved to Placement. Defaults to
	// World.SetPlacement.
	Place func(h Handle, at Placement)
}

// Proxy owns the lifecycle of a single world-visible stand-in object. It holds
// at most one live object at a time. The object is created lazily by Render,
// recreated if the world invalidates it, and removed by Close.
//
// State machine:
//
//	ABSENT --Render--> LIVE --(external removal)--> ABSENT
//	LIVE/ABSENT --Close--> CLOSED (terminal)
type Proxy struct {
	world  World
	kind   Kind
	handle Handle
	at     Placement
	closed bool
	log    *slog.Logger
}

// NewProxy creates an absent proxy of kind in w.
func NewProxy(w World, kind Kind, log *slog.Logger) *Proxy {
	if log == nil {
		log = slog.Default()
	}
	return &Proxy{world: w, kind: kind, log: log}
}

// Render brings the object to spec.Placement, creating it first when absent,
// and then runs spec.Update. Render on a closed proxy does nothing.
func (p *Proxy) Render(spec ProxySpec) {
	if p.closed {
		p.log.Debug("rig: render on closed proxy", "kind", p.kind)
		return
	}

	if p.handle != nil && !p.world.Valid(p.handle) {
		p.log.Debug("rig: proxy invalidated, recreating", "kind", p.kind, "id", p.handle.UUID())
		// Drops whatever the world still tracks for the lost object.
		p.world.Remove(p.handle)
		p.handle = nil
	}

	p.at = spec.Placement
	if p.handle == nil {
		p.handle = p.world.Spawn(p.kind, spec.Placement, spec.Init)
	} else if spec.Place != nil {
		spec.Place(p.handle, spec.Placement)
	} else {
		p.world.SetPlacement(p.handle, spec.Placement)
	}

	if spec.Update != nil && p.handle != nil {
		spec.Update(p.handle)
	}
}

// Handle returns the live object, if any. The handle must not be retained
// past Close.
func (p *Proxy) Handle() (Handle, bool) {
	if p.handle == nil || !p.world.Valid(p.handle) {
		return nil, false
	}
	return p.handle, true
}

// Is reports whether h is this proxy's live object.
func (p *Proxy) Is(h Handle) bool {
	cur, ok := p.Handle()
	return ok && h != nil && cur == h
}

// Live reports whether the proxy currently holds a valid object.
func (p *Proxy) Live() bool {
	_, ok := p.Handle()
	return ok
}

// Placement returns the placement of the last render pass.
func (p *Proxy) Placement() Placement {
	return p.at
}

// Kind returns the kind the proxy spawns.
func (p *Proxy) Kind() Kind {
	return p.kind
}

// Close removes the object if present. It is safe to call more than once and
// when no object exists.
func (p *Proxy) Close() {
	if p.closed {
		return
	}
	p.closed = true
	if p.handle != nil {
		p.world.Remove(p.handle)
		p.handle = nil
	}
}

// Release implements Releasable.
func (p *Proxy) Release() { p.Close() }
