package rig

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// fakeHandle is an object of fakeWorld.
type fakeHandle struct {
	id   uuid.UUID
	kind Kind
}

func (h *fakeHandle) UUID() uuid.UUID { return h.id }

type fakeObject struct {
	at        Placement
	rider     Handle
	saddled   bool
	relocated int
}

type soundPlay struct {
	pos   mgl64.Vec3
	sound Sound
}

// fakeWorld models a host where SetPlacement drops passengers.
type fakeWorld struct {
	objects map[*fakeHandle]*fakeObject
	spawned []*fakeHandle
	removed []*fakeHandle
	sounds  []soundPlay
	// mounted records every vehicle a rider has been attached to.
	mounted map[Handle][]Handle
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		objects: make(map[*fakeHandle]*fakeObject),
		mounted: make(map[Handle][]Handle),
	}
}

func (w *fakeWorld) object(h Handle) (*fakeObject, bool) {
	fh, ok := h.(*fakeHandle)
	if !ok {
		return nil, false
	}
	o, ok := w.objects[fh]
	return o, ok
}

func (w *fakeWorld) Spawn(kind Kind, at Placement, init func(Handle)) Handle {
	h := &fakeHandle{id: uuid.New(), kind: kind}
	if init != nil {
		init(h)
	}
	w.objects[h] = &fakeObject{at: at}
	w.spawned = append(w.spawned, h)
	return h
}

func (w *fakeWorld) Remove(h Handle) {
	fh, ok := h.(*fakeHandle)
	if !ok {
		return
	}
	if _, ok := w.objects[fh]; ok {
		delete(w.objects, fh)
		w.removed = append(w.removed, fh)
	}
}

// invalidate removes h the way the host would, without rig knowing.
func (w *fakeWorld) invalidate(h Handle) {
	delete(w.objects, h.(*fakeHandle))
}

func (w *fakeWorld) Valid(h Handle) bool {
	_, ok := w.object(h)
	return ok
}

func (w *fakeWorld) SetPlacement(h Handle, at Placement) {
	if o, ok := w.object(h); ok {
		o.at = at
		o.rider = nil
	}
}

func (w *fakeWorld) Relocate(h Handle, pos mgl64.Vec3) {
	if o, ok := w.object(h); ok {
		o.at.Position = pos
		o.relocated++
	}
}

func (w *fakeWorld) Mount(vehicle, rider Handle) {
	if o, ok := w.object(vehicle); ok {
		o.rider = rider
		w.mounted[rider] = append(w.mounted[rider], vehicle)
	}
}

func (w *fakeWorld) Rider(vehicle Handle) (Handle, bool) {
	o, ok := w.object(vehicle)
	if !ok || o.rider == nil {
		return nil, false
	}
	return o.rider, true
}

func (w *fakeWorld) SetSaddled(h Handle, saddled bool) {
	if o, ok := w.object(h); ok {
		o.saddled = saddled
	}
}

func (w *fakeWorld) Saddled(h Handle) bool {
	o, ok := w.object(h)
	return ok && o.saddled
}

func (w *fakeWorld) PlaySound(pos mgl64.Vec3, s Sound) {
	w.sounds = append(w.sounds, soundPlay{pos: pos, sound: s})
}

// dismount detaches the rider of vehicle.
func (w *fakeWorld) dismount(vehicle Handle) {
	if o, ok := w.object(vehicle); ok {
		o.rider = nil
	}
}

func (w *fakeWorld) live() int {
	return len(w.objects)
}

var _ World = (*fakeWorld)(nil)
