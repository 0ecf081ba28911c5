package rig

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

func newTestMount(t *testing.T) (*Mount, *fakeWorld, *Bus) {
	t.Helper()
	w := newFakeWorld()
	bus := NewBus(func(err error) { t.Fatalf("listener failed: %v", err) })
	m := NewMount(w, bus, DefaultConfig().Mount, nil)
	m.Render(at(0, 64, 0), mgl64.Vec3{})
	return m, w, bus
}

func handleOf(t *testing.T, p *Proxy) Handle {
	t.Helper()
	h, ok := p.Handle()
	if !ok {
		t.Fatalf("%s proxy is not live", p.Kind())
	}
	return h
}

func near(a, b mgl64.Vec3) bool {
	return a.Sub(b).Len() < 1e-9
}

func TestMountPlacesProxiesAroundSubject(t *testing.T) {
	m, w, _ := newTestMount(t)
	m.Render(at(10, 64, 10), mgl64.Vec3{1, 0, 0})

	seat, _ := w.object(handleOf(t, m.Rideable()))
	holder, _ := w.object(handleOf(t, m.Holder()))

	if !near(seat.at.Position, mgl64.Vec3{11, 63.6, 10}) {
		t.Fatalf("unexpected rideable position %v", seat.at.Position)
	}
	if !near(holder.at.Position, mgl64.Vec3{11, 64.5, 10}) {
		t.Fatalf("unexpected holder position %v", holder.at.Position)
	}
	if holder.relocated != 0 {
		t.Fatal("holder without rider was relocated instead of placed")
	}
}

func TestMountWithoutVelocityLead(t *testing.T) {
	w := newFakeWorld()
	cfg := DefaultConfig().Mount
	lead := false
	cfg.LeadVelocity = &lead
	m := NewMount(w, NewBus(nil), cfg, nil)
	m.Render(at(0, 0, 0), mgl64.Vec3{5, 5, 5})

	seat, _ := w.object(handleOf(t, m.Rideable()))
	if !near(seat.at.Position, mgl64.Vec3{0, -0.4, 0}) {
		t.Fatalf("unexpected rideable position %v", seat.at.Position)
	}
}

func TestVehicleEnterRedirectsToHolder(t *testing.T) {
	m, w, bus := newTestMount(t)
	seat := handleOf(t, m.Rideable())
	holder := handleOf(t, m.Holder())
	rider := &fakeHandle{id: uuid.New()}

	ev := &EventVehicleEnter{Vehicle: seat, Rider: rider}
	Publish(bus, ev)

	if !ev.Cancelled() {
		t.Fatal("native mount was not suppressed")
	}
	if got, ok := w.Rider(holder); !ok || got != rider {
		t.Fatal("rider not attached to holder")
	}
	if _, ok := w.Rider(seat); ok {
		t.Fatal("rider attached to rideable proxy")
	}
	if vehicles := w.mounted[rider]; len(vehicles) != 1 || vehicles[0] != holder {
		t.Fatalf("rider attached to unexpected vehicles %v", vehicles)
	}
	if m.State() != Mounted {
		t.Fatalf("expected Mounted, got %s", m.State())
	}
	if r, ok := m.Rider(); !ok || r != rider {
		t.Fatal("mount does not report its rider")
	}
}

func TestVehicleEnterIgnoresOtherVehicles(t *testing.T) {
	m, w, bus := newTestMount(t)
	other := w.Spawn(KindRideable, at(0, 0, 0), nil)
	rider := &fakeHandle{id: uuid.New()}

	ev := &EventVehicleEnter{Vehicle: other, Rider: rider}
	Publish(bus, ev)

	if ev.Cancelled() {
		t.Fatal("enter on an unrelated vehicle was cancelled")
	}
	if m.State() != Unmounted {
		t.Fatalf("expected Unmounted, got %s", m.State())
	}
	if len(w.mounted[rider]) != 0 {
		t.Fatal("rider attached by the mount")
	}
}

func TestMountKeepsRiderAcrossTicks(t *testing.T) {
	m, w, bus := newTestMount(t)
	rider := &fakeHandle{id: uuid.New()}
	Publish(bus, &EventVehicleEnter{Vehicle: handleOf(t, m.Rideable()), Rider: rider})

	for tick := 1; tick <= 120; tick++ {
		angle := float64(tick) / 10
		subject := at(math.Cos(angle)*8, 64+math.Sin(angle), math.Sin(angle)*8)
		velocity := mgl64.Vec3{0.1, 0, 0.1}
		m.Render(subject, velocity)

		holder := handleOf(t, m.Holder())
		if got, ok := w.Rider(holder); !ok || got != rider {
			t.Fatalf("tick %d: rider lost after relocation", tick)
		}
		o, _ := w.object(holder)
		want := subject.Position.Add(velocity).Add(mgl64.Vec3{0, 0.5, 0})
		if !near(o.at.Position, want) {
			t.Fatalf("tick %d: holder at %v, want %v", tick, o.at.Position, want)
		}
		if o.relocated != tick {
			t.Fatalf("tick %d: expected %d relocations, got %d", tick, tick, o.relocated)
		}
		if m.State() != Mounted {
			t.Fatalf("tick %d: expected Mounted, got %s", tick, m.State())
		}
	}
	if len(w.spawned) != 2 {
		t.Fatalf("expected the two proxies only, got %d spawns", len(w.spawned))
	}
}

func TestMountDismount(t *testing.T) {
	m, w, bus := newTestMount(t)
	rider := &fakeHandle{id: uuid.New()}
	Publish(bus, &EventVehicleEnter{Vehicle: handleOf(t, m.Rideable()), Rider: rider})

	holder := handleOf(t, m.Holder())
	w.dismount(holder)
	m.Render(at(1, 64, 1), mgl64.Vec3{})

	if m.State() != Unmounted {
		t.Fatalf("expected Unmounted after dismount, got %s", m.State())
	}
	if _, ok := m.Rider(); ok {
		t.Fatal("mount still reports a rider")
	}
	o, _ := w.object(holder)
	if o.relocated != 0 {
		t.Fatal("empty holder was relocated")
	}
}

func TestMountDismountEvent(t *testing.T) {
	m, w, bus := newTestMount(t)
	rider := &fakeHandle{id: uuid.New()}
	Publish(bus, &EventVehicleEnter{Vehicle: handleOf(t, m.Rideable()), Rider: rider})

	holder := handleOf(t, m.Holder())
	w.dismount(holder)
	Publish(bus, &EventDismount{Vehicle: holder, Rider: rider})

	if m.State() != Unmounted {
		t.Fatalf("expected Unmounted after dismount event, got %s", m.State())
	}
}

func TestMountHolderInvalidated(t *testing.T) {
	m, w, bus := newTestMount(t)
	rider := &fakeHandle{id: uuid.New()}
	Publish(bus, &EventVehicleEnter{Vehicle: handleOf(t, m.Rideable()), Rider: rider})

	old := handleOf(t, m.Holder())
	w.invalidate(old)
	m.Render(at(0, 64, 0), mgl64.Vec3{})

	if m.State() != Unmounted {
		t.Fatalf("expected Unmounted after holder loss, got %s", m.State())
	}
	if fresh := handleOf(t, m.Holder()); fresh == old {
		t.Fatal("holder was not recreated")
	}
}

func TestVehicleEnterWithoutHolder(t *testing.T) {
	m, w, bus := newTestMount(t)
	w.invalidate(handleOf(t, m.Holder()))
	rider := &fakeHandle{id: uuid.New()}

	ev := &EventVehicleEnter{Vehicle: handleOf(t, m.Rideable()), Rider: rider}
	Publish(bus, ev)

	if !ev.Cancelled() {
		t.Fatal("native mount onto the rideable proxy was allowed")
	}
	if m.State() != Unmounted || len(w.mounted[rider]) != 0 {
		t.Fatal("rider attached without a holder")
	}
}

func TestInteractRemovesSaddle(t *testing.T) {
	m, w, bus := newTestMount(t)
	seat := handleOf(t, m.Rideable())
	actor := &fakeHandle{id: uuid.New()}
	w.SetSaddled(seat, true)

	Publish(bus, &EventInteract{Target: seat, Actor: actor, Sneaking: false, EmptyHand: true})
	if !w.Saddled(seat) {
		t.Fatal("saddle removed without sneaking")
	}
	Publish(bus, &EventInteract{Target: seat, Actor: actor, Sneaking: true, EmptyHand: false})
	if !w.Saddled(seat) {
		t.Fatal("saddle removed with an item in hand")
	}
	Publish(bus, &EventInteract{Target: seat, Actor: actor, Sneaking: true, EmptyHand: true, OffHand: true})
	if !w.Saddled(seat) {
		t.Fatal("saddle removed by an off-hand interaction")
	}
	Publish(bus, &EventInteract{Target: seat, Actor: actor, Sneaking: true, EmptyHand: true})
	if w.Saddled(seat) {
		t.Fatal("sneaking empty-hand interaction did not remove the saddle")
	}
	if m.State() != Unmounted {
		t.Fatal("interaction changed the mount state")
	}
}

func TestInteractSaddleSound(t *testing.T) {
	m, w, bus := newTestMount(t)
	seat := handleOf(t, m.Rideable())
	actor := &fakeHandle{id: uuid.New()}

	Publish(bus, &EventInteract{Target: seat, Actor: actor, HoldingSaddle: true})
	if len(w.sounds) != 1 || w.sounds[0].sound != SoundSaddle {
		t.Fatalf("expected saddle sound, got %v", w.sounds)
	}
	if !near(w.sounds[0].pos, m.Rideable().Placement().Position) {
		t.Fatal("sound not played at the rideable proxy")
	}
	if !w.Saddled(seat) {
		t.Fatal("saddle not applied")
	}

	Publish(bus, &EventInteract{Target: seat, Actor: actor, HoldingSaddle: true})
	if len(w.sounds) != 1 {
		t.Fatal("sound played for an already saddled proxy")
	}

	other := w.Spawn(KindRideable, at(0, 0, 0), nil)
	Publish(bus, &EventInteract{Target: other, Actor: actor, HoldingSaddle: true})
	if len(w.sounds) != 1 {
		t.Fatal("sound played for an unrelated object")
	}
}

func TestMountClose(t *testing.T) {
	m, w, bus := newTestMount(t)
	seat := handleOf(t, m.Rideable())
	Publish(bus, &EventVehicleEnter{Vehicle: seat, Rider: &fakeHandle{id: uuid.New()}})

	m.Close()
	m.Close()

	if w.live() != 0 {
		t.Fatalf("expected proxies removed, %d left", w.live())
	}
	if Listeners[*EventVehicleEnter](bus) != 0 || Listeners[*EventInteract](bus) != 0 || Listeners[*EventDismount](bus) != 0 {
		t.Fatal("listeners still registered after close")
	}
	if m.State() != Unmounted {
		t.Fatal("closed mount still Mounted")
	}

	m.Render(at(0, 0, 0), mgl64.Vec3{})
	if w.live() != 0 {
		t.Fatal("closed mount recreated proxies")
	}
}
