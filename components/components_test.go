package components_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/asset"
	"github.com/plus3/floorplan/components"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type world struct {
	registry *ecs.Registry
	entities *ecs.EntityManager
	managers *components.Managers
}

func newWorld(t *testing.T) *world {
	t.Helper()
	logger := zaptest.NewLogger(t)
	reg := ecs.NewRegistry(nil)
	em := ecs.NewEntityManager(reg, nil, logger)
	m := components.Register(reg, em.Subscriptions(), components.Options{
		Assets: asset.NewLibrary(logger),
	})
	em.Subscriptions().Seal()
	return &world{registry: reg, entities: em, managers: m}
}

func (w *world) spawn(t *testing.T, doc string) *ecs.Entity {
	t.Helper()
	e, err := w.entities.CreateEntityFromJSON([]byte(doc))
	require.NoError(t, err)
	return e
}

const chairDoc = `{
	"name": "chair",
	"components": [
		{"type": "TransformCmp", "position": [1, 0, 2], "yaw": 90},
		{"type": "MotionCmp", "velocity": [1, 0, 0]},
		{"type": "RenderableCmp", "asset": "builtin:box", "view": "both", "label": "Chair"}
	]
}`

func TestUpdatePriorities(t *testing.T) {
	w := newWorld(t)
	m := w.managers

	motion := w.registry.UpdatePriority(m.Motion.ID())
	transform := w.registry.UpdatePriority(m.Transform.ID())

	assert.Greater(t, motion, transform)
	for _, id := range []ecs.ComponentID{m.Camera.ID(), m.Renderable.ID(), m.DirectLight.ID(), m.PointLight.ID(), m.SpotLight.ID()} {
		assert.Greater(t, transform, w.registry.UpdatePriority(id))
	}

	order := w.registry.UpdateOrder()
	require.NotEmpty(t, order)
	assert.Equal(t, m.Motion.ID(), order[0])
	assert.Equal(t, m.Transform.ID(), order[1])
}

func TestRenderableFollowsTransform(t *testing.T) {
	w := newWorld(t)
	e := w.spawn(t, chairDoc)

	r := w.managers.Renderable.Of(e)
	require.NotNil(t, r)
	require.NotNil(t, r.Model3D())
	require.NotNil(t, r.Model2D())
	assert.Equal(t, "Chair", r.Model2D().Label)
	assert.Equal(t, r.Model2D().ID, r.Model3D().Buddy())
	assert.Equal(t, r.Model3D().ID, r.Model2D().Buddy())

	// placed from the transform at build time
	assert.Equal(t, mgl32.Vec3{1, 0, 2}, r.Model3D().Position)
	assert.InDelta(t, 1, r.Model2D().Position[0], 1e-5)
	assert.InDelta(t, -2, r.Model2D().Position[1], 1e-5)

	w.registry.Update(0.5)

	assert.InDelta(t, 1.5, r.Model3D().Position[0], 1e-5)
	assert.InDelta(t, 1.5, r.Model2D().Position[0], 1e-5)
	assert.InDelta(t, mgl32.DegToRad(90), r.Model3D().Yaw(), 1e-4)
}

func TestPushTransformFromFootprint(t *testing.T) {
	w := newWorld(t)
	e := w.spawn(t, chairDoc)
	r := w.managers.Renderable.Of(e)
	tr := w.managers.Transform.Of(e)
	before := tr.Version()

	m2 := r.Model2D()
	m2.Position = mgl32.Vec2{4, -6}
	r.PushTransform(tr, m2)

	assert.Greater(t, tr.Version(), before)
	assert.InDelta(t, 4, tr.Position[0], 1e-5)
	assert.InDelta(t, 6, tr.Position[2], 1e-5)
	assert.InDelta(t, 4, r.Model3D().Position[0], 1e-5)
	assert.InDelta(t, 6, r.Model3D().Position[2], 1e-5)
}

func TestSerializeRoundTrip(t *testing.T) {
	w := newWorld(t)
	e := w.spawn(t, chairDoc)
	first := e.Serialize()

	data, err := first.Marshal()
	require.NoError(t, err)

	other := newWorld(t)
	copied, err := other.entities.CreateEntityFromJSON(data)
	require.NoError(t, err)
	second := copied.Serialize()

	assert.Equal(t, first, second)

	blocks, err := second.Objects("components")
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, components.TransformName, blocks[0]["type"])
	assert.Equal(t, components.MotionName, blocks[1]["type"])
	assert.Equal(t, components.RenderableName, blocks[2]["type"])
}

func TestMessages(t *testing.T) {
	w := newWorld(t)
	e := w.spawn(t, chairDoc)
	tr := w.managers.Transform.Of(e)
	r := w.managers.Renderable.Of(e)

	e.Send(components.Translate{Delta: mgl32.Vec3{0, 1, 0}})
	assert.Equal(t, mgl32.Vec3{1, 1, 2}, tr.Position)

	e.Send(components.MoveTo{Position: mgl32.Vec3{5, 0, 5}})
	assert.Equal(t, mgl32.Vec3{5, 0, 5}, tr.Position)

	e.Send(components.Visibility{Visible: false})
	assert.False(t, r.Visible)
	assert.False(t, r.Model3D().Enabled)
	assert.False(t, r.Model2D().Enabled)

	assert.Equal(t, 1, w.entities.Subscriptions().Len(components.TranslateMsg))
	assert.Equal(t, 3, w.entities.Subscriptions().Len(components.LightSwitchMsg))
}

func TestDestroyReleasesIDs(t *testing.T) {
	w := newWorld(t)
	e := w.spawn(t, chairDoc)
	r := w.managers.Renderable.Of(e)
	m3 := r.Model3D()

	assert.Equal(t, 2, w.managers.IDs().Len())

	w.entities.DestroyEntity(e.ID())
	w.entities.Update()

	assert.Equal(t, 0, w.managers.IDs().Len())
	assert.False(t, m3.Enabled)
	assert.Equal(t, 0, w.managers.Renderable.Len())
}

func TestRenderableErrors(t *testing.T) {
	w := newWorld(t)

	_, err := w.entities.CreateEntityFromJSON([]byte(`{"name": "x", "components": [{"type": "RenderableCmp"}]}`))
	assert.ErrorIs(t, err, ecs.ErrMissingField)

	_, err = w.entities.CreateEntityFromJSON([]byte(`{"name": "y", "components": [{"type": "RenderableCmp", "asset": "builtin:nope"}]}`))
	assert.Error(t, err)

	_, err = w.entities.CreateEntityFromJSON([]byte(`{"name": "z", "components": [{"type": "RenderableCmp", "asset": "builtin:box", "view": "4d"}]}`))
	assert.Error(t, err)

	assert.Equal(t, 0, w.entities.Len())
	assert.Equal(t, 0, w.managers.Renderable.Len())
}

func TestFloorPlanOnlyRenderable(t *testing.T) {
	w := newWorld(t)
	e := w.spawn(t, `{
		"name": "rug",
		"components": [
			{"type": "TransformCmp", "position": [3, 4, 0.5]},
			{"type": "RenderableCmp", "asset": "builtin:quad", "view": "2d", "nogizmo": true}
		]
	}`)
	r := w.managers.Renderable.Of(e)
	require.Nil(t, r.Model3D())
	require.NotNil(t, r.Model2D())
	assert.Equal(t, mgl32.Vec2{3, 4}, r.Model2D().Position)
	assert.Equal(t, float32(0.5), r.Model2D().Depth)
	assert.True(t, r.Model2D().NoGizmo)
}

func TestLights(t *testing.T) {
	w := newWorld(t)
	e := w.spawn(t, `{
		"name": "lamp",
		"components": [
			{"type": "TransformCmp", "position": [0, 3, 0]},
			{"type": "PointLightCmp", "rgba": [255, 0, 0, 255], "intensity": 2, "range": 8},
			{"type": "SpotLightCmp", "direction": [0, -2, 0], "inner": 20, "outer": 10}
		]
	}`)

	p := w.managers.PointLight.Of(e)
	require.NotNil(t, p)
	assert.Equal(t, "lamp", p.Light.Name)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, p.Light.Color)
	assert.Equal(t, float32(8), p.Light.Range)

	s := w.managers.SpotLight.Of(e)
	require.NotNil(t, s)
	assert.InDelta(t, -1, s.Light.Direction[1], 1e-6)
	assert.InDelta(t, mgl32.DegToRad(20), s.Light.OuterCutoff, 1e-6)

	w.registry.Update(0)
	assert.Equal(t, mgl32.Vec3{0, 3, 0}, p.Light.Position)
	assert.Equal(t, mgl32.Vec3{0, 3, 0}, s.Light.Position)

	e.Send(components.LightSwitch{On: false})
	assert.False(t, p.Light.Enabled)
	assert.False(t, s.Light.Enabled)
}

func TestCameraDefaults(t *testing.T) {
	w := newWorld(t)
	e := w.spawn(t, `{
		"name": "camera2d",
		"components": [{"type": "CameraCmp", "projection": "orthographic"}]
	}`)
	c := w.managers.Camera.Of(e)
	require.NotNil(t, c)
	assert.Equal(t, object.Orthographic, c.Camera.Projection)
	assert.Equal(t, "camera2d", c.Camera.Name)
	assert.Equal(t, float32(10), c.Camera.Zoom)
	assert.Equal(t, mgl32.Vec3{0, 0, 100}, c.Camera.Position)
}

func TestCatalogComponent(t *testing.T) {
	w := newWorld(t)
	e := w.spawn(t, `{
		"name": "sofa",
		"components": [{"type": "CatalogCmp", "catalog": "living", "item": "sofa", "category": "seating"}]
	}`)
	c := w.managers.Catalog.Of(e)
	require.NotNil(t, c)
	assert.Equal(t, "living", c.Catalog)
	assert.Equal(t, "seating", c.Category)

	blocks, err := e.Serialize().Objects("components")
	require.NoError(t, err)
	assert.NotContains(t, blocks[0], "thumbnail")
}
