package scene_test

import (
	"fmt"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/asset"
	"github.com/plus3/floorplan/components"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/geom"
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newScene(t *testing.T) *scene.Scene {
	t.Helper()
	logger := zaptest.NewLogger(t)
	reg := ecs.NewRegistry(nil)
	em := ecs.NewEntityManager(reg, nil, logger)
	m := components.Register(reg, em.Subscriptions(), components.Options{Assets: asset.NewLibrary(logger)})
	em.Subscriptions().Seal()
	return scene.New(em, m, logger)
}

func load(t *testing.T, s *scene.Scene, doc string) {
	t.Helper()
	o, err := ecs.ParseObject([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, s.Deserialize(o))
}

const roomDoc = `{
	"name": "room",
	"rendertarget": "NoAA",
	"constraints3d": {"min": [-5, 0, -5], "max": [5, 3, 5]},
	"camera": "camera3d",
	"entities": [
		{"name": "camera3d", "components": [{"type": "CameraCmp", "position": [0, 5, 8], "target": [0, 0, 0]}]},
		{"name": "camera2d", "components": [{"type": "CameraCmp", "projection": "orthographic"}]},
		{"name": "sun", "components": [{"type": "DirectLightCmp", "direction": [-1, -2, -1]}]},
		{"name": "lamp", "components": [
			{"type": "TransformCmp", "position": [1, 2.5, 1]},
			{"type": "PointLightCmp", "range": 6}
		]},
		{"name": "table", "components": [
			{"type": "TransformCmp", "position": [10, 1, 0], "yaw": 30},
			{"type": "RenderableCmp", "asset": "builtin:cube", "view": "both", "label": "Table"}
		]},
		{"name": "rug", "components": [
			{"type": "TransformCmp", "position": [0, 0, 0.1]},
			{"type": "RenderableCmp", "asset": "builtin:quad", "view": "2d"}
		]}
	]
}`

func TestDeserialize(t *testing.T) {
	s := newScene(t)
	load(t, s, roomDoc)

	cams, m3, m2, lights := s.Len()
	assert.Equal(t, 2, cams)
	assert.Equal(t, 1, m3)
	assert.Equal(t, 2, m2)
	assert.Equal(t, 2, lights)

	require.NotNil(t, s.ActiveCamera())
	assert.Equal(t, "camera3d", s.ActiveCamera().Name)
	require.NotNil(t, s.DirectLight())
	assert.Equal(t, "sun", s.DirectLight().Name)

	targets := s.Targets()
	require.Len(t, targets, 2)
	assert.Equal(t, scene.NoAATarget, targets[0].Name)
	assert.Equal(t, scene.GBufferTarget, targets[1].Name)
	assert.Equal(t, []scene.Format{scene.RGBA8, scene.RGB8, scene.RGB32F, scene.RGBA32F}, targets[1].Attachments)
}

func TestMinimalScene(t *testing.T) {
	s := newScene(t)
	load(t, s, `{
		"rendertarget": "NoAA",
		"entities": [
			{"name": "camera3d", "components": [{"type": "CameraCmp"}]},
			{"name": "box", "components": [{"type": "RenderableCmp", "asset": "builtin:box"}]}
		]
	}`)

	cams, m3, _, _ := s.Len()
	assert.Equal(t, 1, cams)
	assert.Equal(t, 1, m3)
	assert.Nil(t, s.DirectLight())
	assert.Equal(t, "camera3d", s.ActiveCamera().Name)
}

func TestDeserializeErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		err  error
	}{
		{"unknown target", `{"rendertarget": "SSAA"}`, scene.ErrUnknownTarget},
		{"unknown target in list", `{"rendertargets": [{"type": "Bloom", "clearcolor": [0, 0, 0, 255]}]}`, scene.ErrUnknownTarget},
		{"missing clear color", `{"rendertargets": [{"type": "MSAA"}]}`, ecs.ErrMissingField},
		{"missing target type", `{"rendertargets": [{"clearcolor": [0, 0, 0, 255]}]}`, ecs.ErrMissingField},
		{"bad constraints", `{"constraints3d": {"min": [0, 0, 0], "max": [1, -1, 1]}}`, scene.ErrBadConstraints},
		{"unknown component", `{"entities": [{"name": "x", "components": [{"type": "NopeCmp"}]}]}`, ecs.ErrUnknownComponent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newScene(t)
			o, err := ecs.ParseObject([]byte(tc.doc))
			require.NoError(t, err)
			assert.ErrorIs(t, s.Deserialize(o), tc.err)
		})
	}
}

func TestExtraRenderTarget(t *testing.T) {
	s := newScene(t)
	load(t, s, `{"rendertargets": [{"name": "preview", "type": "MSAA", "clearcolor": [255, 0, 0, 255], "samples": 8}]}`)

	spec, ok := s.Target("preview")
	require.True(t, ok)
	assert.Equal(t, scene.TargetMSAA, spec.Type)
	assert.Equal(t, 8, spec.Samples)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, spec.Clear)
	assert.Len(t, s.Targets(), 3)
}

func TestConstrainPosition(t *testing.T) {
	s := newScene(t)
	load(t, s, `{
		"constraints3d": {"min": [-5, 0, -5], "max": [5, 3, 5]},
		"entities": [{"name": "cube", "components": [
			{"type": "TransformCmp", "position": [10, 1, -2]},
			{"type": "RenderableCmp", "asset": "builtin:cube"}
		]}]
	}`)

	m := s.Models3D()[0]
	// pushed back by exactly the overshoot on x, untouched on y and z
	assert.InDelta(t, 4.5, m.Position[0], 1e-5)
	assert.InDelta(t, 1, m.Position[1], 1e-5)
	assert.InDelta(t, -2, m.Position[2], 1e-5)

	e := s.Entities().GetEntityByName("cube")
	tr := s.Managers().Transform.Of(e)
	assert.Equal(t, m.Position, tr.Position)

	// already inside
	assert.False(t, s.ConstrainPosition(m))

	m.Position = mgl32.Vec3{0, -1, 7}
	require.True(t, s.ConstrainPosition(m))
	assert.InDelta(t, 0, m.Position[0], 1e-5)
	assert.InDelta(t, 0.5, m.Position[1], 1e-5)
	assert.InDelta(t, 4.5, m.Position[2], 1e-5)
	assert.Equal(t, m.Position, tr.Position)
}

func TestConstrainRenderableBeforeTransform(t *testing.T) {
	s := newScene(t)
	load(t, s, `{
		"constraints3d": {"min": [-5, -5, -5], "max": [5, 5, 5]},
		"entities": [{"name": "box", "components": [
			{"type": "RenderableCmp", "asset": "builtin:box"},
			{"type": "TransformCmp", "position": [20, 1, 0]}
		]}]
	}`)

	m := s.Models3D()[0]
	tr := s.Managers().Transform.Of(s.Entities().GetEntityByName("box"))
	assert.InDelta(t, 4.5, m.Position[0], 1e-5)
	assert.InDelta(t, 1, m.Position[1], 1e-5)
	assert.Equal(t, m.Position, tr.Position)

	s.Entities().Registry().Update(0)
	assert.InDelta(t, 4.5, m.Position[0], 1e-5)
	b, _ := s.Bounds()
	assert.LessOrEqual(t, m.WorldBounds().Max[0], b.Max[0]+1e-5)
}

func TestConstrainWithoutBounds(t *testing.T) {
	s := newScene(t)
	m := object.NewModel3D("free", nil, 7)
	m.Position = mgl32.Vec3{100, 100, 100}
	assert.False(t, s.ConstrainPosition(m))

	require.ErrorIs(t, s.SetBounds(geom.AABB{Min: mgl32.Vec3{1, 0, 0}, Max: mgl32.Vec3{0, 1, 1}}), scene.ErrBadConstraints)
	_, ok := s.Bounds()
	assert.False(t, ok)
}

func TestToggleCameraTwiceRestores(t *testing.T) {
	s := newScene(t)
	load(t, s, roomDoc)

	m3 := s.Models3D()[0]
	m2 := s.Buddy2D(m3)
	require.NotNil(t, m2)

	m3.SetYaw(mgl32.DegToRad(45))
	m3.Position = mgl32.Vec3{2, 1.2, -3}
	m3.Scale = mgl32.Vec3{2, 0.5, 3}
	pos, rot, scale := m3.Position, m3.Rotation, m3.Scale

	require.True(t, s.ToggleCamera())
	assert.Equal(t, object.Orthographic, s.ActiveCamera().Projection)
	assert.InDelta(t, 2, m2.Position[0], 1e-5)
	assert.InDelta(t, 3, m2.Position[1], 1e-5)
	assert.InDelta(t, mgl32.DegToRad(45), m2.Rotation, 1e-4)
	assert.Equal(t, mgl32.Vec2{2, 3}, m2.Scale)

	require.True(t, s.ToggleCamera())
	assert.Equal(t, object.Perspective, s.ActiveCamera().Projection)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, pos[i], m3.Position[i], 1e-4)
		assert.InDelta(t, scale[i], m3.Scale[i], 1e-4)
	}
	assert.InDelta(t, 1, absDot(rot, m3.Rotation), 1e-4)
}

func absDot(a, b mgl32.Quat) float32 {
	d := a.Dot(b)
	if d < 0 {
		return -d
	}
	return d
}

func TestToggleClearsSelection(t *testing.T) {
	s := newScene(t)
	load(t, s, roomDoc)

	id := s.Models3D()[0].ID
	require.True(t, s.Select(id))
	s.Focus(id)
	require.True(t, s.BeginTransform())

	require.True(t, s.ToggleCamera())
	assert.Equal(t, object.NoColorID, s.Selected())
	assert.Equal(t, object.NoColorID, s.Focused())
	_, transforming := s.Transforming()
	assert.False(t, transforming)
}

func TestToggleWithoutTarget(t *testing.T) {
	s := newScene(t)
	load(t, s, `{"entities": [{"name": "camera3d", "components": [{"type": "CameraCmp"}]}]}`)
	assert.False(t, s.ToggleCamera())
	assert.Equal(t, "camera3d", s.ActiveCamera().Name)
}

func TestLinkBuddiesAcrossEntities(t *testing.T) {
	s := newScene(t)
	load(t, s, `{"entities": [
		{"name": "sofa", "components": [
			{"type": "TransformCmp", "position": [1, 0, 1]},
			{"type": "RenderableCmp", "asset": "builtin:box"}
		]},
		{"name": "sofa-plan", "components": [
			{"type": "TransformCmp"},
			{"type": "RenderableCmp", "asset": "builtin:box", "view": "2d", "buddy": "sofa"}
		]}
	]}`)

	m3 := s.Models3D()[0]
	m2 := s.Models2D()[0]
	assert.Equal(t, m2, s.Buddy2D(m3))
	assert.Equal(t, m3, s.Buddy3D(m2))
	assert.Equal(t, 0, s.LinkBuddies())
}

func TestSelection(t *testing.T) {
	s := newScene(t)
	load(t, s, roomDoc)
	m3 := s.Models3D()[0]

	assert.False(t, s.BeginTransform())
	assert.False(t, s.Select(object.ColorID(9999)))
	assert.True(t, s.Select(m3.ID))
	assert.True(t, s.IsSelected(m3.ID))

	// 2D ids are not selectable from the 3D view
	assert.False(t, s.Select(s.Buddy2D(m3).ID))

	require.True(t, s.Select(m3.ID))
	require.True(t, s.BeginTransform())
	before := m3.Position
	require.True(t, s.MoveSelection(mgl32.Vec3{-1, 0, 0}))
	s.EndTransform()

	tr := s.Managers().Transform.Of(s.Entities().GetEntityByName("table"))
	assert.InDelta(t, before[0]-1, tr.Position[0], 1e-5)
	assert.InDelta(t, before[0]-1, s.Buddy2D(m3).Position[0], 1e-5)

	s.ClearSelection()
	assert.Equal(t, object.NoColorID, s.Selected())
}

func TestSyncRemovesDestroyed(t *testing.T) {
	s := newScene(t)
	load(t, s, roomDoc)
	m3 := s.Models3D()[0]
	require.True(t, s.Select(m3.ID))

	em := s.Entities()
	em.DestroyEntity(em.GetEntityByName("table").ID())
	em.DestroyEntity(em.GetEntityByName("lamp").ID())
	assert.Equal(t, 0, s.Sync())

	em.Update()
	assert.Equal(t, 3, s.Sync())

	cams, models3d, models2d, lights := s.Len()
	assert.Equal(t, 2, cams)
	assert.Equal(t, 0, models3d)
	assert.Equal(t, 1, models2d)
	assert.Equal(t, 1, lights)
	assert.Equal(t, object.NoColorID, s.Selected())
	assert.Nil(t, s.Model3D(m3.ID))
}

func TestSaveLoadFile(t *testing.T) {
	s := newScene(t)
	load(t, s, roomDoc)
	path := filepath.Join(t.TempDir(), "room.json")
	require.NoError(t, s.SaveFile(path))

	other := newScene(t)
	require.NoError(t, other.LoadFile(path))

	a, b := s.Serialize(), other.Serialize()
	assert.Equal(t, a["name"], b["name"])
	assert.Equal(t, a["constraints3d"], b["constraints3d"])
	assert.Equal(t, a["camera"], b["camera"])

	ea, err := a.Objects("entities")
	require.NoError(t, err)
	eb, err := b.Objects("entities")
	require.NoError(t, err)
	require.Len(t, eb, len(ea))
	for i := range ea {
		assert.Equal(t, ea[i]["name"], eb[i]["name"])
	}

	cams, m3, m2, lights := other.Len()
	assert.Equal(t, [4]int{2, 1, 2, 2}, [4]int{cams, m3, m2, lights})

	assert.Error(t, other.LoadFile(filepath.Join(t.TempDir(), "missing.json")))
}

type fakeReader map[[2]int]color.RGBA

func (f fakeReader) ReadPixel(target string, attachment, x, y int) (color.RGBA, error) {
	if attachment != scene.AttachID {
		return color.RGBA{}, fmt.Errorf("unexpected attachment %d of %s", attachment, target)
	}
	return f[[2]int{x, y}], nil
}

func TestGetModelAtPoint(t *testing.T) {
	s := newScene(t)
	load(t, s, roomDoc)
	m3 := s.Models3D()[0]

	rgb := m3.ID.RGB()
	reader := fakeReader{
		{10, 10}: {R: uint8(rgb[0]*255 + 0.5), G: uint8(rgb[1]*255 + 0.5), B: uint8(rgb[2]*255 + 0.5), A: 255},
		{20, 20}: {R: 0xEE, G: 0xEE, B: 0x00, A: 255},
	}

	id, err := s.GetModelAtPoint(reader, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, m3.ID, id)

	e, err := s.GetEntityAtPoint(reader, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, "table", e.Name())

	id, err = s.GetModelAtPoint(reader, 20, 20)
	require.NoError(t, err)
	assert.Equal(t, object.NoColorID, id)

	id, err = s.GetModelAtPoint(reader, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, object.NoColorID, id)
}
