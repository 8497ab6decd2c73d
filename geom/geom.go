// Package geom provides the bounding volumes and view-frustum math shared by
// the scene and the renderer.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns an inverted box that any Extend call will overwrite.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// NewAABB builds a box from two corners in any order.
func NewAABB(a, b mgl32.Vec3) AABB {
	box := EmptyAABB()
	box.Extend(a)
	box.Extend(b)
	return box
}

// Extend grows the box to include p.
func (b *AABB) Extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Valid reports whether Min <= Max on every axis.
func (b AABB) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside the box, borders included.
func (b AABB) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// ContainsBox reports whether o lies fully inside b.
func (b AABB) ContainsBox(o AABB) bool {
	return b.Contains(o.Min) && b.Contains(o.Max)
}

// Corners returns the eight corners of the box.
func (b AABB) Corners() [8]mgl32.Vec3 {
	var c [8]mgl32.Vec3
	for i := 0; i < 8; i++ {
		c[i] = mgl32.Vec3{
			pick(i&1 != 0, b.Max[0], b.Min[0]),
			pick(i&2 != 0, b.Max[1], b.Min[1]),
			pick(i&4 != 0, b.Max[2], b.Min[2]),
		}
	}
	return c
}

// Transform returns the axis-aligned bounds of the box after applying m.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	out := EmptyAABB()
	for _, c := range b.Corners() {
		out.Extend(mgl32.TransformCoordinate(c, m))
	}
	return out
}

// Sphere returns the smallest sphere centered on the box that encloses it.
func (b AABB) Sphere() Sphere {
	return Sphere{Center: b.Center(), Radius: b.Size().Len() * 0.5}
}

// Nudge returns the translation that moves box inside b, axis by axis. An
// axis already within bounds gets zero. When box is wider than b on an axis
// the minimum side wins.
func (b AABB) Nudge(box AABB) mgl32.Vec3 {
	var d mgl32.Vec3
	for i := 0; i < 3; i++ {
		switch {
		case box.Min[i] < b.Min[i]:
			d[i] = b.Min[i] - box.Min[i]
		case box.Max[i] > b.Max[i]:
			d[i] = b.Max[i] - box.Max[i]
		}
	}
	return d
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// OOBB is an object-oriented bounding box: a local AABB placed in the world by
// a model matrix.
type OOBB struct {
	Local AABB
	Model mgl32.Mat4
}

// Corners returns the eight world-space corners.
func (o OOBB) Corners() [8]mgl32.Vec3 {
	c := o.Local.Corners()
	for i := range c {
		c[i] = mgl32.TransformCoordinate(c[i], o.Model)
	}
	return c
}

// Bounds returns the world-space AABB enclosing the oriented box.
func (o OOBB) Bounds() AABB {
	out := EmptyAABB()
	for _, c := range o.Corners() {
		out.Extend(c)
	}
	return out
}

// Plane is n·p + D = 0 with n pointing to the inside half-space.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// Distance is the signed distance of p from the plane.
func (p Plane) Distance(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) + p.D
}

func (p Plane) normalized() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Mul(1 / l), D: p.D / l}
}

// Frustum planes, in Left, Right, Bottom, Top, Near, Far order.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts the planes of a view-projection matrix.
func FrustumFromMatrix(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)
	mk := func(v mgl32.Vec4) Plane {
		return Plane{Normal: v.Vec3(), D: v[3]}.normalized()
	}
	return Frustum{Planes: [6]Plane{
		mk(r3.Add(r0)),
		mk(r3.Sub(r0)),
		mk(r3.Add(r1)),
		mk(r3.Sub(r1)),
		mk(r3.Add(r2)),
		mk(r3.Sub(r2)),
	}}
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether s is at least partly inside the frustum.
func (f Frustum) IntersectsSphere(s Sphere) bool {
	for _, pl := range f.Planes {
		if pl.Distance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// IntersectsAABB uses the positive-vertex test; boxes straddling a corner
// outside the frustum may be reported as visible.
func (f Frustum) IntersectsAABB(b AABB) bool {
	for _, pl := range f.Planes {
		p := mgl32.Vec3{
			pick(pl.Normal[0] >= 0, b.Max[0], b.Min[0]),
			pick(pl.Normal[1] >= 0, b.Max[1], b.Min[1]),
			pick(pl.Normal[2] >= 0, b.Max[2], b.Min[2]),
		}
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float32) float32 {
	if cond {
		return a
	}
	return b
}
