package rig

import (
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
)

// InputHandler translates Dragonfly player input into rig events.
//
// Interacting with an entity while sneaking or holding a saddle publishes an
// EventInteract; any other interaction is a mount attempt and publishes an
// EventVehicleEnter. If no listener cancels the mount and the target is a
// rideable proxy of the gateway, the rider is attached to it natively.
// Sneaking dismounts.
//
// Concurrency:
// Handlers are executed synchronously by Dragonfly inside the player's world
// transaction. The handler binds that transaction to the gateway while it
// publishes, so listeners may use the World freely. Input from players in
// another world than the gateway's is ignored.
type InputHandler struct {
	player.NopHandler

	gateway *Gateway
	bus     *Bus
}

// NewInputHandler creates a handler publishing on bus through g.
//
// Usage:
//
//	for p := range srv.Accept() {
//	    p.Handle(rig.NewInputHandler(gateway, bus))
//	}
func NewInputHandler(g *Gateway, bus *Bus) *InputHandler {
	return &InputHandler{gateway: g, bus: bus}
}

// Compile-time check that InputHandler implements player.Handler.
var _ player.Handler = (*InputHandler)(nil)

// HandleItemUseOnEntity handles a player interacting with an entity.
func (h *InputHandler) HandleItemUseOnEntity(ctx *player.Context, e world.Entity) {
	p := ctx.Val()
	if !h.owns(p) {
		return
	}
	defer h.gateway.bind(p.Tx())()

	target := e.H()
	main, _ := p.HeldItems()
	saddle := isSaddle(main)

	if p.Sneaking() || saddle {
		ev := &EventInteract{
			Target:        target,
			Actor:         p.H(),
			Sneaking:      p.Sneaking(),
			EmptyHand:     main.Empty(),
			HoldingSaddle: saddle,
		}
		Publish(h.bus, ev)
		if ev.Cancelled() {
			ctx.Cancel()
		}
		return
	}

	ev := &EventVehicleEnter{Vehicle: target, Rider: p.H()}
	Publish(h.bus, ev)
	if ev.Cancelled() {
		ctx.Cancel()
		return
	}
	if h.gateway.Rideable(target) {
		h.gateway.Mount(target, p.H())
	}
}

// HandleToggleSneak dismounts a player that starts sneaking.
func (h *InputHandler) HandleToggleSneak(ctx *player.Context, after bool) {
	if !after {
		return
	}
	p := ctx.Val()
	if !h.owns(p) {
		return
	}
	defer h.gateway.bind(p.Tx())()
	h.gateway.Dismount(p.H())
}

// HandleQuit dismounts a player leaving the server.
func (h *InputHandler) HandleQuit(p *player.Player) {
	if !h.owns(p) {
		return
	}
	defer h.gateway.bind(p.Tx())()
	h.gateway.Dismount(p.H())
}

// owns reports whether p is in the gateway's world, so that its transaction
// is the only one touching the gateway.
func (h *InputHandler) owns(p *player.Player) bool {
	return p.Tx().World() == h.gateway.w
}

func isSaddle(s item.Stack) bool {
	if s.Empty() {
		return false
	}
	name, _ := s.Item().EncodeItem()
	return name == "minecraft:saddle"
}
