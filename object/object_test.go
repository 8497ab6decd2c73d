package object_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/asset"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/geom"
	"github.com/plus3/floorplan/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorID(t *testing.T) {
	id := object.ColorID(0x123456)
	rgb := id.RGB()
	back := object.ColorIDFromRGB(uint8(rgb[0]*255+0.5), uint8(rgb[1]*255+0.5), uint8(rgb[2]*255+0.5))
	assert.Equal(t, id, back)
	assert.Equal(t, "#123456", id.String())
}

func TestIDAllocator(t *testing.T) {
	a := object.NewIDAllocator()
	a.Reserve(2)

	assert.Equal(t, object.ColorID(1), a.Alloc())
	assert.Equal(t, object.ColorID(3), a.Alloc(), "reserved ids are skipped")
	assert.False(t, a.Claim(3))
	assert.False(t, a.Claim(2))
	assert.False(t, a.Claim(object.NoColorID))
	assert.True(t, a.Claim(4))
	assert.Equal(t, object.ColorID(5), a.Alloc())

	a.Release(3)
	assert.True(t, a.Claim(3))
	assert.Equal(t, 4, a.Len())
}

func TestObject3DYaw(t *testing.T) {
	o := object.NewObject3D("chair")
	o.Rotation = mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0})
	assert.InDelta(t, 0.7, o.Yaw(), 1e-5)

	tilt := mgl32.QuatRotate(0.3, mgl32.Vec3{1, 0, 0})
	o.Rotation = mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0}).Mul(tilt)
	before := o.Rotation
	o.SetYaw(-1.2)
	assert.InDelta(t, -1.2, o.Yaw(), 1e-4)

	o.SetYaw(0.5)
	assert.True(t, o.Rotation.ApproxEqualThreshold(before, 1e-4) ||
		o.Rotation.ApproxEqualThreshold(before.Scale(-1), 1e-4))
}

func TestObjectModelMatrices(t *testing.T) {
	o := object.NewObject3D("box")
	o.Position = mgl32.Vec3{1, 2, 3}
	o.Scale = mgl32.Vec3{2, 2, 2}
	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, o.Model())
	assert.True(t, p.ApproxEqual(mgl32.Vec3{3, 2, 3}))

	o2 := object.NewObject2D("plan")
	o2.Position = mgl32.Vec2{5, 5}
	o2.Rotation = mgl32.DegToRad(90)
	p = mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, o2.Model())
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{5, 6, 0}, 1e-5))
}

func TestModelBoundsAndOwner(t *testing.T) {
	box := asset.Box("box", mgl32.Vec3{2, 2, 2}, [4]float32{1, 1, 1, 1}, false)
	m := object.NewModel3D("box", box, 7)
	m.Position = mgl32.Vec3{10, 0, 0}
	m.Rotation = mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0})

	wb := m.WorldBounds()
	assert.InDelta(t, 10-1.41421, wb.Min[0], 1e-3)
	assert.InDelta(t, 10+1.41421, wb.Max[0], 1e-3)
	assert.True(t, m.CastShadows)

	reg := ecs.NewRegistry(nil)
	em := ecs.NewEntityManager(reg, nil, nil)
	e := em.CreateNamedEntity("owner")
	m.SetOwner(e)
	assert.Same(t, e, m.Owner())

	plan := object.NewModel2D("plan", asset.Quad2D("q", 2, 1, [4]float32{1, 1, 1, 1}, nil), 8)
	plan.Position = mgl32.Vec2{3, 4}
	assert.Equal(t, mgl32.Vec3{3, 4, 0}, plan.Center())
	plan.SetBuddy(m.ID)
	assert.Equal(t, object.ColorID(7), plan.Buddy())
}

func TestCamera(t *testing.T) {
	c := object.NewPerspectiveCamera("camera3d", 60, 1, 0.1, 100)
	c.Position = mgl32.Vec3{0, 0, 10}
	c.LookAt(mgl32.Vec3{})
	c.Recalculate()

	assert.InDelta(t, 0, c.Yaw, 1e-6)
	assert.InDelta(t, 0, c.Pitch, 1e-6)

	px, ok := c.Project(mgl32.Vec3{}, 200, 100)
	require.True(t, ok)
	assert.InDelta(t, 100, px[0], 1e-3)
	assert.InDelta(t, 50, px[1], 1e-3)

	_, ok = c.Project(mgl32.Vec3{0, 0, 20}, 200, 100)
	assert.False(t, ok)

	f := c.Frustum()
	assert.True(t, f.IntersectsSphere(geom.Sphere{Radius: 1}))
	assert.False(t, f.IntersectsSphere(geom.Sphere{Center: mgl32.Vec3{0, 0, 20}, Radius: 1}))

	c.Rotate(0, 10)
	assert.Less(t, c.Pitch, float32(1.56))

	ortho := object.NewOrthographicCamera("camera2d", 5, 2, 0.1, 100)
	ortho.Position = mgl32.Vec3{0, 0, 10}
	ortho.Recalculate()
	assert.True(t, ortho.Frustum().ContainsPoint(mgl32.Vec3{9.9, 0, 0}))
	assert.False(t, ortho.Frustum().ContainsPoint(mgl32.Vec3{10.1, 0, 0}))
	assert.Equal(t, float32(5), ortho.Distance())
	assert.Equal(t, object.Orthographic, object.ParseProjection("orthographic"))
}

func TestLightSpaces(t *testing.T) {
	bounds := geom.NewAABB(mgl32.Vec3{-5, 0, -5}, mgl32.Vec3{5, 3, 5})

	d := object.NewDirectLight("sun")
	ls := d.LightSpace(bounds)
	for _, corner := range bounds.Corners() {
		p := mgl32.TransformCoordinate(corner, ls)
		for i := 0; i < 3; i++ {
			assert.LessOrEqual(t, p[i], float32(1.0001))
			assert.GreaterOrEqual(t, p[i], float32(-1.0001))
		}
	}

	s := object.NewSpotLight("spot")
	s.Position = mgl32.Vec3{0, 5, 0}
	center := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 0}, s.LightSpace())
	assert.InDelta(t, 0, center[0], 1e-4)
	assert.InDelta(t, 0, center[1], 1e-4)

	p := object.NewPointLight("bulb")
	p.Position = mgl32.Vec3{1, 1, 1}
	below := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 1}, p.FaceSpace(3))
	assert.InDelta(t, 0, below[0], 1e-4)
	assert.InDelta(t, 0, below[1], 1e-4)

	att := p.Attenuation()
	assert.Equal(t, float32(1), object.AttenuationAt(att, 0))
	assert.InDelta(t, 1.0/80.5, object.AttenuationAt(att, p.Range), 1e-4)
}

func TestGrid(t *testing.T) {
	g := object.NewGrid()
	assert.Equal(t, float32(1), g.Step(10))
	assert.Equal(t, float32(10), g.Step(100))
	assert.InDelta(t, 0.1, g.Step(1), 1e-6)

	minor, major := g.Lines(mgl32.Vec2{-10, -10}, mgl32.Vec2{10, 10}, 0, 10)
	assert.Len(t, major, 6)
	assert.Len(t, minor, 36)
}

func TestBuddySync(t *testing.T) {
	m3 := object.NewModel3D("table", nil, 1)
	m3.Position = mgl32.Vec3{2, 0.5, 3}
	m3.Rotation = mgl32.QuatRotate(0.4, mgl32.Vec3{0, 1, 0}).Mul(mgl32.QuatRotate(0.1, mgl32.Vec3{1, 0, 0}))
	m3.Scale = mgl32.Vec3{2, 3, 4}
	m2 := object.NewModel2D("table-plan", nil, 2)

	orig := m3.Object3D
	object.SyncPlan(m3, m2)
	assert.Equal(t, mgl32.Vec2{2, -3}, m2.Position)
	assert.InDelta(t, 0.4, m2.Rotation, 1e-5)
	assert.Equal(t, mgl32.Vec2{2, 4}, m2.Scale)

	m2.Position = mgl32.Vec2{-1, 5}
	object.SyncSpace(m2, m3)
	assert.Equal(t, mgl32.Vec3{-1, 0.5, -5}, m3.Position)
	assert.Equal(t, float32(3), m3.Scale[1])

	m2.Position = mgl32.Vec2{2, -3}
	object.SyncSpace(m2, m3)
	assert.True(t, m3.Position.ApproxEqual(orig.Position))
	assert.True(t, m3.Rotation.ApproxEqualThreshold(orig.Rotation, 1e-4))
}
