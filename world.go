package rig

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Handle identifies a world object. *world.EntityHandle satisfies it, so
// Dragonfly entities and players can be used directly.
type Handle interface {
	UUID() uuid.UUID
}

// Kind selects what a proxy stand-in is spawned as.
type Kind uint8

const (
	// KindRideable is the visible object players mount.
	KindRideable Kind = iota
	// KindHolder is the teleport-safe object that actually carries a rider.
	KindHolder
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindRideable:
		return "Rideable"
	case KindHolder:
		return "Holder"
	default:
		return "Unknown"
	}
}

// Placement is a position and orientation in the world.
type Placement struct {
	Position mgl64.Vec3
	Rotation cube.Rotation
}

// Add returns the placement moved by offset.
func (p Placement) Add(offset mgl64.Vec3) Placement {
	p.Position = p.Position.Add(offset)
	return p
}

// Sound names an effect played through World.PlaySound.
type Sound uint8

const (
	// SoundSaddle is played when a saddle is put on the rideable proxy.
	SoundSaddle Sound = iota
)

// World is the narrow gateway rig uses to touch the host. All methods are
// called from the single tick-processing context.
type World interface {
	// Spawn creates an object of kind at placement and runs init on it before it
	// becomes visible.
	Spawn(kind Kind, at Placement, init func(Handle)) Handle
	// Remove removes the object. For an invalid handle it only forgets the
	// state the world keeps for it.
	Remove(h Handle)
	// Valid reports whether the object still exists in the world.
	Valid(h Handle) bool
	// SetPlacement moves the object. Passengers are not carried along.
	SetPlacement(h Handle, at Placement)
	// Relocate moves the object with a passenger-preserving primitive.
	Relocate(h Handle, pos mgl64.Vec3)
	// Mount attaches rider to vehicle.
	Mount(vehicle, rider Handle)
	// Rider returns the first passenger of vehicle.
	Rider(vehicle Handle) (Handle, bool)
	// SetSaddled toggles the equip-state marker of a rideable object.
	SetSaddled(h Handle, saddled bool)
	// Saddled reports the equip-state marker of a rideable object.
	Saddled(h Handle) bool
	// PlaySound plays s at pos.
	PlaySound(pos mgl64.Vec3, s Sound)
}
