package rig

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/entity"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

// ProxyType is the entity type the gateway spawns by default: a stationary,
// invisible entity without gravity or AI that can be repositioned freely.
var ProxyType proxyType

var proxyConf entity.StationaryBehaviourConfig

// NewProxyEntity creates a proxy entity handle at the placement passed.
func NewProxyEntity(at Placement) *world.EntityHandle {
	return world.EntitySpawnOpts{Position: at.Position, Rotation: at.Rotation}.New(ProxyType, proxyConf)
}

type proxyType struct{}

func (proxyType) Open(tx *world.Tx, handle *world.EntityHandle, data *world.EntityData) world.Entity {
	return &ProxyEntity{Ent: entity.Open(tx, handle, data), tx: tx, data: data}
}
func (proxyType) EncodeEntity() string        { return "rig:proxy" }
func (proxyType) BBox(world.Entity) cube.BBox { return cube.BBox{} }
func (proxyType) NetworkEncodeEntity() string { return "minecraft:falling_block" }

func (proxyType) DecodeNBT(_ map[string]any, data *world.EntityData) { data.Data = proxyConf.New() }
func (proxyType) EncodeNBT(*world.EntityData) map[string]any       { return nil }

// ProxyEntity is the world.Entity of a ProxyType handle.
type ProxyEntity struct {
	*entity.Ent
	tx   *world.Tx
	data *world.EntityData
}

// Teleport moves the entity to pos immediately.
func (e *ProxyEntity) Teleport(pos mgl64.Vec3) {
	for _, v := range e.tx.Viewers(e.data.Pos) {
		v.ViewEntityTeleport(e, pos)
	}
	e.data.Pos = pos
	e.data.Vel = mgl64.Vec3{}
}

// Rotate sets the yaw and pitch of the entity.
func (e *ProxyEntity) Rotate(rot cube.Rotation) {
	e.data.Rot = rot
	for _, v := range e.tx.Viewers(e.data.Pos) {
		v.ViewEntityMovement(e, e.data.Pos, rot, false)
	}
}
