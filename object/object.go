// Package object holds the renderer-facing scene objects that components wrap:
// transforms, models, cameras, lights and the floor-plan grid.
package object

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Object3D places something in the world.
type Object3D struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Enabled  bool
}

// NewObject3D returns an enabled object at the origin with unit scale.
func NewObject3D(name string) Object3D {
	return Object3D{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Enabled:  true,
	}
}

// Model is the translate * rotate * scale matrix.
func (o *Object3D) Model() mgl32.Mat4 {
	return mgl32.Translate3D(o.Position[0], o.Position[1], o.Position[2]).
		Mul4(o.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(o.Scale[0], o.Scale[1], o.Scale[2]))
}

// Yaw is the heading about +Y in radians, measured from -Z toward -X.
func (o *Object3D) Yaw() float32 {
	f := o.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
	return float32(math.Atan2(float64(-f[0]), float64(-f[2])))
}

// SetYaw replaces the heading while keeping pitch and roll: the rotation is
// pre-multiplied by the yaw difference about world Y.
func (o *Object3D) SetYaw(yaw float32) {
	delta := yaw - o.Yaw()
	o.Rotation = mgl32.QuatRotate(delta, mgl32.Vec3{0, 1, 0}).Mul(o.Rotation).Normalize()
}

// Object2D places something on the floor plan. Rotation is about +Z in
// radians; Depth orders overlapping objects.
type Object2D struct {
	Name     string
	Position mgl32.Vec2
	Rotation float32
	Scale    mgl32.Vec2
	Depth    float32
	Enabled  bool
}

func NewObject2D(name string) Object2D {
	return Object2D{
		Name:    name,
		Scale:   mgl32.Vec2{1, 1},
		Enabled: true,
	}
}

func (o *Object2D) Model() mgl32.Mat4 {
	return mgl32.Translate3D(o.Position[0], o.Position[1], o.Depth).
		Mul4(mgl32.HomogRotate3DZ(o.Rotation)).
		Mul4(mgl32.Scale3D(o.Scale[0], o.Scale[1], 1))
}
