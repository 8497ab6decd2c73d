package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/ecs"
)

// Transform is an entity's placement. Models, cameras and lights on the same
// entity follow it every frame. For an entity that only has a floor-plan
// model, X and Y are plan coordinates, Z is the draw depth and the yaw is the
// plan rotation.
type Transform struct {
	ecs.Base
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	version uint64
}

func newTransform() *Transform {
	return &Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Version increases every time the transform changes through its methods
// or messages.
func (t *Transform) Version() uint64 { return t.version }

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.Position = p
	t.version++
}

func (t *Transform) SetRotation(q mgl32.Quat) {
	t.Rotation = q.Normalize()
	t.version++
}

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.Scale = s
	t.version++
}

func (t *Transform) Translate(d mgl32.Vec3) {
	t.SetPosition(t.Position.Add(d))
}

// RotateYaw turns the transform about world +Y.
func (t *Transform) RotateYaw(rad float32) {
	t.SetRotation(mgl32.QuatRotate(rad, mgl32.Vec3{0, 1, 0}).Mul(t.Rotation))
}

func (t *Transform) Serialize(o ecs.Object) {
	o.SetVec3("position", t.Position)
	o.SetQuat("rotation", t.Rotation)
	o.SetVec3("scale", t.Scale)
}

// Deserialize accepts "rotation" as an [x, y, z, w] quaternion or "yaw" in
// degrees.
func (t *Transform) Deserialize(o ecs.Object) error {
	t.Position = o.Vec3("position", t.Position)
	t.Scale = o.Vec3("scale", t.Scale)
	if o.Has("rotation") {
		t.Rotation = o.Quat("rotation", t.Rotation)
	} else if o.Has("yaw") {
		t.Rotation = mgl32.QuatRotate(mgl32.DegToRad(o.Float32("yaw", 0)), mgl32.Vec3{0, 1, 0})
	}
	t.version++
	return nil
}

// Motion moves its entity's Transform: a linear velocity in units per second
// and a spin about +Y in radians per second.
type Motion struct {
	ecs.Base
	Velocity mgl32.Vec3
	Spin     float32
}

func (m *Motion) Update(dt float64) {
	t := ecs.Find[*Transform](m.Owner())
	if t == nil {
		return
	}
	if m.Velocity != (mgl32.Vec3{}) {
		t.Translate(m.Velocity.Mul(float32(dt)))
	}
	if m.Spin != 0 {
		t.RotateYaw(m.Spin * float32(dt))
	}
}

func (m *Motion) Serialize(o ecs.Object) {
	o.SetVec3("velocity", m.Velocity)
	o["spin"] = float64(m.Spin)
}

func (m *Motion) Deserialize(o ecs.Object) error {
	m.Velocity = o.Vec3("velocity", m.Velocity)
	m.Spin = o.Float32("spin", m.Spin)
	return nil
}
