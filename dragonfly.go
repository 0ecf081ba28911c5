package rig

import (
	"log/slog"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/sound"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Spawner creates the entity handle used as a stand-in of kind.
type Spawner func(kind Kind, at Placement) *world.EntityHandle

// ProxySpawner spawns every proxy as a ProxyType entity.
func ProxySpawner(_ Kind, at Placement) *world.EntityHandle {
	return NewProxyEntity(at)
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithSpawner sets the function used to create proxy entities.
func WithSpawner(s Spawner) GatewayOption {
	return func(g *Gateway) {
		if s != nil {
			g.spawn = s
		}
	}
}

// WithSound maps a rig sound onto a Dragonfly sound.
func WithSound(s Sound, ws world.Sound) GatewayOption {
	return func(g *Gateway) { g.sounds[s] = ws }
}

// WithGatewayLogger sets the logger used by the gateway.
func WithGatewayLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

// Gateway implements World on top of a Dragonfly world.
//
// Dragonfly has no passenger model, so the gateway keeps its own index of
// vehicles and riders. A rider rides at most one vehicle and a vehicle carries
// at most one rider. A rider follows its vehicle on Relocate; SetPlacement
// moves the vehicle alone and detaches its rider. Links whose vehicle or rider
// left the world are dropped when they are next looked up.
//
// Concurrency:
// Every World method needs a transaction. Gateway.Exec binds one for the
// duration of fn; InputHandler binds the player's transaction while it
// publishes events. Calls made without a bound transaction are ignored.
type Gateway struct {
	w   *world.World
	tx  *world.Tx
	bus *Bus
	log *slog.Logger

	spawn   Spawner
	sounds  map[Sound]world.Sound
	kinds   map[uuid.UUID]Kind
	riders  map[uuid.UUID]passenger // by vehicle
	seats   map[uuid.UUID]uuid.UUID // rider to vehicle
	saddled map[uuid.UUID]bool
}

// Compile-time check that Gateway implements World.
var _ World = (*Gateway)(nil)

// NewGateway creates a gateway for w. Dismounts detected by the gateway are
// published on bus.
func NewGateway(w *world.World, bus *Bus, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		w:       w,
		bus:     bus,
		log:     slog.Default(),
		spawn:   ProxySpawner,
		sounds:  map[Sound]world.Sound{SoundSaddle: sound.Click{}},
		kinds:   make(map[uuid.UUID]Kind),
		riders:  make(map[uuid.UUID]passenger),
		seats:   make(map[uuid.UUID]uuid.UUID),
		saddled: make(map[uuid.UUID]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Exec runs fn inside a transaction of the gateway's world and waits for it to
// complete. It is an Executor and must not be called from within a
// transaction of the same world.
func (g *Gateway) Exec(fn func()) {
	<-g.w.Exec(func(tx *world.Tx) {
		defer g.bind(tx)()
		fn()
	})
}

// bind makes tx the current transaction and returns a function restoring the
// previous one.
func (g *Gateway) bind(tx *world.Tx) func() {
	prev := g.tx
	g.tx = tx
	return func() { g.tx = prev }
}

func (g *Gateway) entity(h Handle) (world.Entity, bool) {
	eh, ok := h.(*world.EntityHandle)
	if !ok || eh == nil || g.tx == nil {
		return nil, false
	}
	return eh.Entity(g.tx)
}

// Spawn adds a new stand-in entity built by the gateway's Spawner.
func (g *Gateway) Spawn(kind Kind, at Placement, init func(Handle)) Handle {
	if g.tx == nil {
		g.log.Warn("rig: spawn without transaction", "kind", kind)
		return nil
	}
	eh := g.spawn(kind, at)
	if init != nil {
		init(eh)
	}
	g.tx.AddEntity(eh)
	g.kinds[eh.UUID()] = kind
	return eh
}

// Remove removes the entity and forgets its rider and saddle state.
func (g *Gateway) Remove(h Handle) {
	if h == nil {
		return
	}
	id := h.UUID()
	delete(g.kinds, id)
	delete(g.saddled, id)
	g.unlink(id)
	if e, ok := g.entity(h); ok {
		g.tx.RemoveEntity(e)
	}
}

// Valid reports whether the entity is still in the bound transaction's world.
func (g *Gateway) Valid(h Handle) bool {
	_, ok := g.entity(h)
	return ok
}

// SetPlacement teleports the entity alone and applies the rotation. Its rider,
// if any, is detached.
func (g *Gateway) SetPlacement(h Handle, at Placement) {
	e, ok := g.entity(h)
	if !ok {
		return
	}
	teleport(e, at.Position)
	rotate(e, at.Rotation)
	if link, ok := g.unlink(h.UUID()); ok {
		g.dismounted(link)
	}
}

// Relocate teleports the entity together with its rider.
func (g *Gateway) Relocate(h Handle, pos mgl64.Vec3) {
	e, ok := g.entity(h)
	if !ok {
		return
	}
	teleport(e, pos)
	if link, ok := g.riders[h.UUID()]; ok {
		if re, ok := link.rider.Entity(g.tx); ok {
			teleport(re, pos)
		}
	}
}

// Mount attaches rider to vehicle and moves the rider onto it. The rider is
// first detached from any other vehicle, and a previous rider of vehicle is
// detached.
func (g *Gateway) Mount(vehicle, rider Handle) {
	rh, ok := rider.(*world.EntityHandle)
	if !ok {
		return
	}
	vh, ok := vehicle.(*world.EntityHandle)
	if !ok {
		return
	}
	e, ok := g.entity(vh)
	if !ok {
		return
	}
	if prev, ok := g.seats[rh.UUID()]; ok && prev != vh.UUID() {
		if link, ok := g.unlink(prev); ok {
			g.dismounted(link)
		}
	}
	if link, ok := g.riders[vh.UUID()]; ok && link.rider.UUID() != rh.UUID() {
		g.unlink(vh.UUID())
		g.dismounted(link)
	}
	g.riders[vh.UUID()] = passenger{vehicle: vh, rider: rh}
	g.seats[rh.UUID()] = vh.UUID()
	if re, ok := rh.Entity(g.tx); ok {
		teleport(re, e.Position())
	}
}

// Rider returns the rider of vehicle. Links whose vehicle or rider is no
// longer in the bound transaction's world are dropped.
func (g *Gateway) Rider(vehicle Handle) (Handle, bool) {
	link, ok := g.riders[vehicle.UUID()]
	if !ok {
		return nil, false
	}
	if g.tx != nil && !g.resolves(link) {
		g.unlink(vehicle.UUID())
		return nil, false
	}
	return link.rider, true
}

// Dismount detaches rider from whatever vehicle it is riding and publishes an
// EventDismount.
func (g *Gateway) Dismount(rider Handle) {
	vehicle, ok := g.seats[rider.UUID()]
	if !ok {
		return
	}
	if link, ok := g.unlink(vehicle); ok {
		g.dismounted(link)
	}
}

// Rideable reports whether h was spawned by the gateway as a rideable proxy.
func (g *Gateway) Rideable(h Handle) bool {
	kind, ok := g.kinds[h.UUID()]
	return ok && kind == KindRideable
}

// SetSaddled records the saddle marker of h.
func (g *Gateway) SetSaddled(h Handle, saddled bool) {
	if saddled {
		g.saddled[h.UUID()] = true
		return
	}
	delete(g.saddled, h.UUID())
}

// Saddled returns the saddle marker of h.
func (g *Gateway) Saddled(h Handle) bool {
	return g.saddled[h.UUID()]
}

// PlaySound plays the Dragonfly sound mapped to s.
func (g *Gateway) PlaySound(pos mgl64.Vec3, s Sound) {
	ws, ok := g.sounds[s]
	if !ok || g.tx == nil {
		return
	}
	g.tx.PlaySound(pos, ws)
}

// passenger links a vehicle to the entity riding it.
type passenger struct {
	vehicle *world.EntityHandle
	rider   *world.EntityHandle
}

// unlink removes the link of vehicle from both indices.
func (g *Gateway) unlink(vehicle uuid.UUID) (passenger, bool) {
	link, ok := g.riders[vehicle]
	if !ok {
		return passenger{}, false
	}
	delete(g.riders, vehicle)
	if g.seats[link.rider.UUID()] == vehicle {
		delete(g.seats, link.rider.UUID())
	}
	return link, true
}

func (g *Gateway) resolves(link passenger) bool {
	if _, ok := link.vehicle.Entity(g.tx); !ok {
		return false
	}
	_, ok := link.rider.Entity(g.tx)
	return ok
}

func (g *Gateway) dismounted(link passenger) {
	if g.bus == nil {
		return
	}
	Publish(g.bus, &EventDismount{Vehicle: link.vehicle, Rider: link.rider})
}

// teleport moves e using the best primitive its type offers.
func teleport(e world.Entity, pos mgl64.Vec3) {
	switch t := e.(type) {
	case interface{ Teleport(mgl64.Vec3) }:
		t.Teleport(pos)
	case interface {
		Move(mgl64.Vec3, float64, float64)
	}:
		t.Move(pos.Sub(e.Position()), 0, 0)
	}
}

// rotate turns e to rot if its type supports it.
func rotate(e world.Entity, rot cube.Rotation) {
	if r, ok := e.(interface{ Rotate(cube.Rotation) }); ok {
		r.Rotate(rot)
	}
}
