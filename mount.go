package rig

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
)

// MountState is the state of a Mount.
type MountState uint8

const (
	// Unmounted means nobody rides the subject.
	Unmounted MountState = iota
	// Mounted means a rider is attached to the holder proxy.
	Mounted
)

// String returns the string representation of the mount state.
func (s MountState) String() string {
	switch s {
	case Unmounted:
		return "Unmounted"
	case Mounted:
		return "Mounted"
	default:
		return "Unknown"
	}
}

// Mount makes an animated subject rideable. It is built from two proxies: a
// rideable object players interact with, and a holder object that actually
// carries the rider. Ordinary placement updates drop passengers, so riders are
// always attached to the holder, which is moved with World.Relocate while it
// carries someone.
//
// A rider is never attached to the rideable proxy while the mount is Mounted.
type Mount struct {
	world    World
	cfg      MountConfig
	rideable *Proxy
	holder   *Proxy
	scope    *Scope
	log      *slog.Logger

	state MountState
	rider Handle
}

// NewMount creates a mount and subscribes it to input events on bus. The
// proxies are created by the first Render.
func NewMount(w World, bus *Bus, cfg MountConfig, log *slog.Logger) *Mount {
	if log == nil {
		log = slog.Default()
	}
	m := &Mount{
		world:    w,
		cfg:      cfg,
		rideable: NewProxy(w, KindRideable, log),
		holder:   NewProxy(w, KindHolder, log),
		scope:    NewScope(),
		log:      log,
	}

	// Proxies first so the listeners referring to them are released before them.
	m.scope.Add(m.rideable)
	m.scope.Add(m.holder)

	m.scope.Add(Listen(bus, m.targetsRideable, m.handleInteract))
	m.scope.Add(Listen(bus, func(e *EventVehicleEnter) bool {
		return m.rideable.Is(e.Vehicle)
	}, m.handleEnter))
	m.scope.Add(Listen(bus, func(e *EventDismount) bool {
		return m.holder.Is(e.Vehicle)
	}, func(*EventDismount) { m.sync() }))
	return m
}

// Render repositions both proxies around the subject. It is meant to be called
// once per animation tick.
func (m *Mount) Render(subject Placement, velocity mgl64.Vec3) {
	at := subject
	if m.cfg.lead() {
		at.Position = at.Position.Add(velocity)
	}

	m.rideable.Render(ProxySpec{
		Placement: at.Add(m.cfg.rideable()),
	})
	m.holder.Render(ProxySpec{
		Placement: at.Add(m.cfg.holder()),
		Place:     m.placeHolder,
	})
	m.sync()
}

// placeHolder moves the holder proxy, keeping its rider attached.
func (m *Mount) placeHolder(h Handle, at Placement) {
	if _, ok := m.world.Rider(h); !ok {
		m.world.SetPlacement(h, at)
		return
	}
	m.world.Relocate(h, at.Position)
}

// sync performs the implicit Mounted -> Unmounted transition once the holder
// lost its rider or was destroyed.
func (m *Mount) sync() {
	if m.state != Mounted {
		return
	}
	if holder, ok := m.holder.Handle(); ok {
		if rider, ok := m.world.Rider(holder); ok && rider == m.rider {
			return
		}
	}
	m.log.Debug("rig: rider left mount", "rider", m.rider.UUID())
	m.state = Unmounted
	m.rider = nil
}

func (m *Mount) targetsRideable(e *EventInteract) bool {
	return !e.OffHand && m.rideable.Is(e.Target)
}

func (m *Mount) handleInteract(e *EventInteract) {
	seat, ok := m.rideable.Handle()
	if !ok {
		return
	}

	if e.HoldingSaddle && !m.world.Saddled(seat) {
		m.world.SetSaddled(seat, true)
		m.world.PlaySound(m.rideable.Placement().Position, SoundSaddle)
		return
	}
	if e.Sneaking && e.EmptyHand {
		m.world.SetSaddled(seat, false)
	}
}

// handleEnter redirects a mount of the rideable proxy onto the holder proxy.
func (m *Mount) handleEnter(e *EventVehicleEnter) {
	e.Cancel()

	holder, ok := m.holder.Handle()
	if !ok {
		// Recreated on the next Render; the rider can try again.
		m.log.Debug("rig: holder absent, mount dropped", "rider", e.Rider.UUID())
		return
	}
	m.world.Mount(holder, e.Rider)
	m.state = Mounted
	m.rider = e.Rider
}

// State returns the current mount state.
func (m *Mount) State() MountState {
	return m.state
}

// Rider returns the current rider while Mounted.
func (m *Mount) Rider() (Handle, bool) {
	if m.state != Mounted {
		return nil, false
	}
	return m.rider, true
}

// Rideable returns the rideable proxy.
func (m *Mount) Rideable() *Proxy { return m.rideable }

// Holder returns the holder proxy.
func (m *Mount) Holder() *Proxy { return m.holder }

// Close unsubscribes from input and removes both proxies.
func (m *Mount) Close() {
	m.scope.Close()
	m.state = Unmounted
	m.rider = nil
}

// Release implements Releasable.
func (m *Mount) Release() { m.Close() }
