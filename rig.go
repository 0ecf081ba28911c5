// Package rig provides the scheduling and managed-resource core of animated
// in-world entities for Dragonfly servers.
//
// Rig is a small layer on top of a host world that provides:
//   - A tick-synchronous Clock with one-shot and periodic timers
//   - Series for declarative "wait N ticks, then run" sequences
//   - Emitter and Bus for in-process notifications and typed input events
//   - Scope for composing acquisitions into one deterministic teardown
//   - Proxy for lifecycle-managed stand-in objects
//   - Mount for keeping a rider attached across teleports
//
// # Quick Start
//
//	rt := rig.NewBuilder().
//	    Config(cfg).
//	    Dragonfly(w).
//	    Init()
//	defer rt.Close()
//
//	for p := range srv.Accept() {
//	    p.Handle(rig.NewInputHandler(rt.Gateway, rt.Bus))
//	}
//
// # Scheduling
//
// Everything runs on the tick context driven by the Pump:
//
//	scope := rig.NewScope()
//	scope.Add(rt.Clock.Every(0, 20, heartbeat))
//
//	s := rig.NewSeries(rt.Clock)
//	s.Advance(10).At(playSound).Advance(5).At(removeProp)
//	scope.Add(s.Commit())
//
//	scope.Close() // cancels the heartbeat and whatever is left of the series
//
// # Concurrency
//
// The core is reentrant but not thread-safe. Only the Pump's executor (for
// Dragonfly, Gateway.Exec) and Dragonfly handlers may call into it.
package rig

// Version is the rig version.
const Version = "1.0.0"
