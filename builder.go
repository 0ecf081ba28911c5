package rig

import (
	"log/slog"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

// Builder configures a Runtime before initialization.
// Use NewBuilder() to create a builder and chain configuration methods.
type Builder struct {
	cfg     Config
	log     *slog.Logger
	onError ErrorHandler
	exec    Executor
	world   *world.World
	gwOpts  []GatewayOption
	noStart bool
}

// NewBuilder creates a builder with DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// Config sets the configuration.
func (b *Builder) Config(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// Logger sets the logger shared by every component.
func (b *Builder) Logger(l *slog.Logger) *Builder {
	b.log = l
	return b
}

// ErrorHandler sets the handler receiving recovered callback panics.
func (b *Builder) ErrorHandler(h ErrorHandler) *Builder {
	b.onError = h
	return b
}

// Executor sets the boundary the pump steps through. Ignored when a
// Dragonfly world is configured, which uses Gateway.Exec.
func (b *Builder) Executor(e Executor) *Builder {
	b.exec = e
	return b
}

// Dragonfly binds the runtime to a Dragonfly world through a Gateway.
func (b *Builder) Dragonfly(w *world.World, opts ...GatewayOption) *Builder {
	b.world = w
	b.gwOpts = opts
	return b
}

// Manual keeps the pump stopped after Init; the host calls Pump.Step itself.
func (b *Builder) Manual() *Builder {
	b.noStart = true
	return b
}

// Runtime holds the wired core: a Clock stepped by a Pump, and the Bus
// carrying input events.
type Runtime struct {
	Config  Config
	Clock   *Clock
	Bus     *Bus
	Pump    *Pump
	Gateway *Gateway

	log   *slog.Logger
	scope *Scope
}

// Init wires the runtime and starts its pump.
func (b *Builder) Init() *Runtime {
	log := b.log
	if log == nil {
		log = slog.Default()
	}
	onError := b.onError
	if onError == nil {
		onError = logErrors(log)
	}

	r := &Runtime{
		Config: b.cfg,
		Clock:  NewClock(WithLogger(log), WithErrorHandler(onError)),
		Bus:    NewBus(onError),
		log:    log,
		scope:  NewScope(),
	}

	exec := b.exec
	if b.world != nil {
		opts := append([]GatewayOption{WithGatewayLogger(log)}, b.gwOpts...)
		r.Gateway = NewGateway(b.world, r.Bus, opts...)
		exec = r.Gateway.Exec
	}
	r.Pump = NewPump(r.Clock, exec, b.cfg.TickRate(), log)

	if !b.noStart {
		r.Pump.Start()
	}
	return r
}

// World returns the Gateway as a World, or nil without a Dragonfly world.
func (r *Runtime) World() World {
	if r.Gateway == nil {
		return nil
	}
	return r.Gateway
}

// NewMount creates a Mount in w that renders every tick at the placement
// returned by subject. The mount is closed with the runtime. Call it from the
// tick context, or before the pump starts when using Builder.Manual.
func (r *Runtime) NewMount(w World, subject func() (Placement, mgl64.Vec3)) *Mount {
	m := NewMount(w, r.Bus, r.Config.Mount, r.log)
	r.scope.Add(m)
	// Registered after the mount so it stops rendering before the proxies go.
	r.scope.Add(r.Pump.OnTick(func() {
		at, v := subject()
		m.Render(at, v)
	}))
	return m
}

// Close stops the pump and then releases every component created through the
// runtime, newest first, through the pump's executor. It must not be called
// from within a world transaction.
func (r *Runtime) Close() {
	r.Pump.Stop()
	r.Pump.exec(r.scope.Close)
}
