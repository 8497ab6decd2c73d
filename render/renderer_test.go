package render_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/asset"
	"github.com/plus3/floorplan/components"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/render"
	"github.com/plus3/floorplan/render/soft"
	"github.com/plus3/floorplan/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const width, height = 64, 48

type harness struct {
	scene    *scene.Scene
	device   *soft.Device
	renderer *render.Renderer
}

func newHarness(t *testing.T, doc string) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	reg := ecs.NewRegistry(nil)
	em := ecs.NewEntityManager(reg, nil, logger)
	m := components.Register(reg, em.Subscriptions(), components.Options{Assets: asset.NewLibrary(logger)})
	em.Subscriptions().Seal()

	s := scene.New(em, m, logger)
	if doc != "" {
		o, err := ecs.ParseObject([]byte(doc))
		require.NoError(t, err)
		require.NoError(t, s.Deserialize(o))
	}
	dev := soft.New(width, height)
	return &harness{scene: s, device: dev, renderer: render.NewRenderer(dev, render.DefaultOptions(), logger)}
}

func (h *harness) frame(t *testing.T) []soft.Command {
	t.Helper()
	h.device.ResetTrace()
	require.NoError(t, h.renderer.RenderScene(h.scene, 1.0/60))
	return h.device.Trace()
}

const crateDoc = `{
	"name": "crate",
	"rendertarget": "NoAA",
	"entities": [
		{"name": "camera3d", "components": [{"type": "CameraCmp", "position": [0, 0, 5], "target": [0, 0, 0]}]},
		{"name": "crate", "components": [
			{"type": "TransformCmp", "position": [0, 0, 0]},
			{"type": "RenderableCmp", "asset": "builtin:cube", "view": "3d"}
		]}
	]
}`

const litDoc = `{
	"name": "lit",
	"entities": [
		{"name": "camera3d", "components": [{"type": "CameraCmp", "position": [0, 4, 8], "target": [0, 0, 0]}]},
		{"name": "sun", "components": [{"type": "DirectLightCmp", "direction": [-1, -2, -1], "shadowsize": 64}]},
		{"name": "lamp", "components": [{"type": "PointLightCmp", "position": [1, 2, 1], "range": 6, "shadowsize": 32}]},
		{"name": "spot", "components": [{"type": "SpotLightCmp", "position": [-1, 3, 0], "direction": [0, -1, 0], "castshadows": false}]},
		{"name": "crate", "components": [
			{"type": "TransformCmp"},
			{"type": "RenderableCmp", "asset": "builtin:box", "view": "3d"}
		]},
		{"name": "floor", "components": [
			{"type": "TransformCmp"},
			{"type": "RenderableCmp", "asset": "builtin:floor", "view": "3d"}
		]}
	]
}`

const planDoc = `{
	"name": "plan",
	"camera": "camera2d",
	"entities": [
		{"name": "camera2d", "components": [{"type": "CameraCmp", "projection": "orthographic", "zoom": 5}]},
		{"name": "camera3d", "components": [{"type": "CameraCmp", "position": [0, 5, 8], "target": [0, 0, 0]}]},
		{"name": "table", "components": [
			{"type": "TransformCmp", "position": [0, 1, 0]},
			{"type": "RenderableCmp", "asset": "builtin:box", "view": "both", "label": "Table"}
		]},
		{"name": "rug", "components": [
			{"type": "TransformCmp", "position": [0, 0, 0]},
			{"type": "RenderableCmp", "asset": "builtin:quad", "view": "2d"}
		]}
	]
}`

func filter(trace []soft.Command, op soft.Op) []soft.Command {
	var out []soft.Command
	for _, c := range trace {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func TestPickRenderedModel(t *testing.T) {
	h := newHarness(t, crateDoc)
	h.frame(t)

	m := h.scene.Models3D()[0]
	p, ok := h.scene.ActiveCamera().Project(m.Position, width, height)
	require.True(t, ok)

	id, err := h.scene.GetModelAtPoint(h.device, int(p[0]), int(p[1]))
	require.NoError(t, err)
	assert.Equal(t, m.ID, id)

	e, err := h.scene.GetEntityAtPoint(h.device, int(p[0]), int(p[1]))
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "crate", e.Name())

	id, err = h.scene.GetModelAtPoint(h.device, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, object.NoColorID, id)

	// background keeps the clear color, the crate only gets ambient light
	bg, err := h.device.ReadPixel(scene.NoAATarget, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(235), bg.R)
	px, err := h.device.ReadPixel(scene.NoAATarget, 0, int(p[0]), int(p[1]))
	require.NoError(t, err)
	assert.InDelta(t, 51, int(px.R), 1)
}

func TestNoCamera(t *testing.T) {
	h := newHarness(t, "")
	err := h.renderer.RenderScene(h.scene, 0)
	assert.ErrorIs(t, err, render.ErrNoCamera)
	assert.Empty(t, filter(h.device.Trace(), soft.OpBind))
}

func TestPassOrder3D(t *testing.T) {
	h := newHarness(t, litDoc)
	trace := h.frame(t)

	var binds []string
	var layers []int
	for _, c := range filter(trace, soft.OpBind) {
		binds = append(binds, c.Target)
		layers = append(layers, c.Layer)
	}
	point := render.PointShadowTarget(0)
	assert.Equal(t, []string{
		render.DirectShadowTarget,
		point, point, point, point, point, point,
		scene.GBufferTarget,
		scene.NoAATarget,
	}, binds)
	assert.Equal(t, []int{0, 0, 1, 2, 3, 4, 5, 0, 0}, layers)

	var programs []render.Program
	var shadows []string
	for _, c := range filter(trace, soft.OpLight) {
		programs = append(programs, c.Program)
		shadows = append(shadows, c.Shadow)
		assert.Equal(t, scene.GBufferTarget, c.Source)
		assert.False(t, c.State.DepthTest)
		assert.False(t, c.State.DepthWrite)
	}
	assert.Equal(t, []render.Program{render.ProgramAmbient, render.ProgramDirect, render.ProgramSpot, render.ProgramPoint}, programs)
	assert.Equal(t, []string{"", render.DirectShadowTarget, "", point}, shadows)

	lights := filter(trace, soft.OpLight)
	assert.Equal(t, render.BlendNone, lights[0].State.Blend)
	for _, c := range lights[1:] {
		assert.Equal(t, render.BlendAdditive, c.State.Blend)
	}

	for _, c := range filter(trace, soft.OpDraw) {
		if c.Program != render.ProgramShadow {
			continue
		}
		assert.Equal(t, render.CullFront, c.State.Cull)
		assert.False(t, c.State.ColorWrite)
	}

	stats := h.renderer.Stats()
	assert.Equal(t, 7, stats.ShadowPasses)
	assert.Equal(t, 4, stats.LightPasses)
	assert.Equal(t, 2, stats.Visible3D)
	assert.Equal(t, 1, stats.PointLights)
	assert.Equal(t, 1, stats.SpotLights)
}

func TestShadowCasterOutsideView(t *testing.T) {
	h := newHarness(t, `{
		"name": "behind",
		"entities": [
			{"name": "camera3d", "components": [{"type": "CameraCmp", "position": [0, 4, 8], "target": [0, 0, 0]}]},
			{"name": "sun", "components": [{"type": "DirectLightCmp", "direction": [-1, -2, -1], "shadowsize": 64}]},
			{"name": "crate", "components": [
				{"type": "TransformCmp"},
				{"type": "RenderableCmp", "asset": "builtin:box", "view": "3d", "castshadows": true}
			]},
			{"name": "pillar", "components": [
				{"type": "TransformCmp", "position": [0, 1, 30]},
				{"type": "RenderableCmp", "asset": "builtin:box", "view": "3d", "castshadows": true}
			]}
		]
	}`)
	trace := h.frame(t)

	pillar := h.scene.Models3D()[1]
	assert.Equal(t, 1, h.renderer.Stats().Visible3D)

	var shadowIDs, sceneIDs []object.ColorID
	for _, c := range filter(trace, soft.OpDraw) {
		if c.Program == render.ProgramShadow {
			assert.Equal(t, render.DirectShadowTarget, c.Target)
			shadowIDs = append(shadowIDs, c.ID)
		} else {
			sceneIDs = append(sceneIDs, c.ID)
		}
	}
	assert.Contains(t, shadowIDs, pillar.ID)
	assert.Len(t, shadowIDs, 2)
	assert.NotContains(t, sceneIDs, pillar.ID)
}

func TestDisabledDirectLight(t *testing.T) {
	h := newHarness(t, litDoc)
	h.scene.DirectLight().Enabled = false
	trace := h.frame(t)

	var programs []render.Program
	for _, c := range filter(trace, soft.OpLight) {
		programs = append(programs, c.Program)
	}
	assert.Equal(t, []render.Program{render.ProgramAmbient, render.ProgramSpot, render.ProgramPoint}, programs)
	assert.Equal(t, 6, h.renderer.Stats().ShadowPasses)
}

func TestCulledLightHasNoPass(t *testing.T) {
	h := newHarness(t, litDoc)
	for l := range h.scene.PointLights() {
		l.Position = mgl32.Vec3{0, 0, 100}
		l.Range = 1
	}
	trace := h.frame(t)
	for _, c := range filter(trace, soft.OpLight) {
		assert.NotEqual(t, render.ProgramPoint, c.Program)
	}
	assert.Equal(t, 0, h.renderer.Stats().PointLights)
}

func TestSelectionContour(t *testing.T) {
	h := newHarness(t, crateDoc)
	m := h.scene.Models3D()[0]
	require.True(t, h.scene.Select(m.ID))
	trace := h.frame(t)

	geo := -1
	for i, c := range trace {
		if c.Op == soft.OpDraw && c.Program == render.ProgramGeometry && c.ID == m.ID {
			geo = i
			break
		}
	}
	require.Greater(t, geo, 1)
	assert.True(t, trace[geo].State.Stencil.Write)
	assert.Equal(t, render.StencilAlways, trace[geo].State.Stencil.Func)

	var cleared bool
	for _, c := range trace[:geo] {
		if c.Op == soft.OpClear && c.Target == scene.GBufferTarget && c.Clear == render.ClearStencil {
			cleared = true
		}
	}
	assert.True(t, cleared)

	var outline *soft.Command
	for i := geo + 1; i < len(trace); i++ {
		if trace[i].Op == soft.OpDraw {
			outline = &trace[i]
			break
		}
	}
	require.NotNil(t, outline)
	assert.Equal(t, render.ProgramFlat, outline.Program)
	assert.Equal(t, render.FillWire, outline.State.Fill)
	assert.Equal(t, render.StencilNotEqual, outline.State.Stencil.Func)
	assert.False(t, outline.State.Stencil.Write)
	assert.False(t, outline.State.DepthTest)
	assert.Greater(t, outline.State.LineWidth, float32(1))

	img, err := h.device.Image(scene.NoAATarget, 0)
	require.NoError(t, err)
	var found bool
	for i := 0; i < len(img.Pix) && !found; i += 4 {
		found = img.Pix[i] == 255 && img.Pix[i+1] == 153 && img.Pix[i+2] == 0
	}
	assert.True(t, found, "no pixel in the selection color")
}

func TestUnselectedHasNoContour(t *testing.T) {
	h := newHarness(t, crateDoc)
	trace := h.frame(t)
	for _, c := range filter(trace, soft.OpDraw) {
		assert.NotEqual(t, render.ProgramFlat, c.Program)
		assert.False(t, c.State.Stencil.Enabled)
	}
}

func TestAssetsUploadOnce(t *testing.T) {
	h := newHarness(t, crateDoc)
	h.frame(t)
	h.frame(t)

	m := h.scene.Models3D()[0]
	assert.True(t, m.Asset.Ready())
	assert.NotZero(t, m.Asset.RenderHandle())
	assert.Equal(t, 1, h.device.Meshes())
	assert.True(t, m.Asset.Bounds().Valid())
}

func TestResizeRecreatesTargets(t *testing.T) {
	h := newHarness(t, crateDoc)
	trace := h.frame(t)
	assert.Len(t, filter(trace, soft.OpCreate), 2)

	trace = h.frame(t)
	assert.Empty(t, filter(trace, soft.OpCreate))

	h.device.Resize(32, 24)
	trace = h.frame(t)
	assert.Len(t, filter(trace, soft.OpCreate), 2)

	_, err := h.device.ReadPixel(scene.NoAATarget, 0, 40, 30)
	assert.ErrorIs(t, err, soft.ErrOutOfBounds)
}

func TestRender2D(t *testing.T) {
	h := newHarness(t, planDoc)
	trace := h.frame(t)

	for _, c := range trace {
		assert.NotEqual(t, soft.OpLight, c.Op)
		if c.Op == soft.OpBind {
			assert.Equal(t, scene.NoAATarget, c.Target)
		}
	}
	assert.NotEmpty(t, filter(trace, soft.OpLines), "grid")

	table := h.scene.Models2D()[0]
	rug := h.scene.Models2D()[1]
	require.Equal(t, "Table", table.Label)

	var order []object.ColorID
	for _, c := range filter(trace, soft.OpDraw) {
		assert.Equal(t, render.ProgramPlan, c.Program)
		assert.False(t, c.State.DepthTest)
		assert.Equal(t, render.CullNone, c.State.Cull)
		order = append(order, c.ID)
	}
	// the rug has no buddy and sits at depth 0, below the table's height
	assert.Equal(t, []object.ColorID{rug.ID, table.ID}, order)

	texts := filter(trace, soft.OpText)
	require.Len(t, texts, 1)
	assert.Equal(t, "Table", texts[0].Text)

	p, ok := h.scene.ActiveCamera().Project(table.Center(), width, height)
	require.True(t, ok)
	id, err := h.scene.GetModelAtPoint(h.device, int(p[0]), int(p[1]))
	require.NoError(t, err)
	assert.Equal(t, table.ID, id)
}

func TestCustomSort2D(t *testing.T) {
	h := newHarness(t, planDoc)
	h.renderer.SetModelSort2D(func(s *scene.Scene, a, b *object.Model2D) int {
		return -render.DefaultSort2D(s, a, b)
	})
	trace := h.frame(t)

	table := h.scene.Models2D()[0]
	draws := filter(trace, soft.OpDraw)
	require.NotEmpty(t, draws)
	assert.Equal(t, table.ID, draws[0].ID)

	h.renderer.SetModelSort2D(nil)
	draws = filter(h.frame(t), soft.OpDraw)
	assert.Equal(t, table.ID, draws[len(draws)-1].ID)
}

func TestGizmo2D(t *testing.T) {
	h := newHarness(t, planDoc)
	base := len(filter(h.frame(t), soft.OpLines))

	table := h.scene.Models2D()[0]
	require.True(t, h.scene.Select(table.ID))
	require.True(t, h.scene.BeginTransform())
	trace := h.frame(t)
	assert.Len(t, filter(trace, soft.OpLines), base+1)

	table.NoGizmo = true
	trace = h.frame(t)
	assert.Len(t, filter(trace, soft.OpLines), base)
}

func TestToggleSwitchesPath(t *testing.T) {
	h := newHarness(t, planDoc)
	assert.Empty(t, filter(h.frame(t), soft.OpLight))

	require.True(t, h.scene.ToggleCamera())
	trace := h.frame(t)
	assert.NotEmpty(t, filter(trace, soft.OpLight))
	assert.Empty(t, filter(trace, soft.OpText))
}

func TestOverlays3D(t *testing.T) {
	h := newHarness(t, crateDoc)
	assert.Empty(t, filter(h.frame(t), soft.OpLines))

	m := h.scene.Models3D()[0]
	m.ShowBounds = object.BoundsOOBB
	m.ShowNormals = true
	trace := h.frame(t)
	lines := filter(trace, soft.OpLines)
	require.Len(t, lines, 1)
	assert.Equal(t, 12, lines[0].Count)
	assert.Len(t, filter(trace, soft.OpNormals), 1)

	m.ShowBounds = object.BoundsNone
	m.ShowNormals = false
	h.renderer.Opts.ShowBounds = object.BoundsSphere
	lines = filter(h.frame(t), soft.OpLines)
	require.Len(t, lines, 1)
	assert.Equal(t, 72, lines[0].Count)
}

func TestDebugCycle(t *testing.T) {
	h := newHarness(t, crateDoc)
	h.frame(t)
	targets := h.scene.Targets()

	var labels []string
	for {
		v, ok := h.renderer.CycleDebugTarget(h.scene)
		if !ok {
			break
		}
		labels = append(labels, v.Label)
		require.Less(t, len(labels), 20)
	}
	require.Len(t, labels, len(targets)+3)
	assert.Equal(t, targets[0].Name+" color", labels[0])
	assert.Equal(t, []string{render.DirectShadowTarget, render.PointShadowTarget(0), render.SpotShadowTarget(0)}, labels[len(targets):])

	_, ok := h.renderer.DebugView(h.scene)
	assert.False(t, ok)
	assert.Empty(t, filter(h.frame(t), soft.OpText))

	// step to the GBuffer and walk its attachments
	for {
		v, ok := h.renderer.CycleDebugTarget(h.scene)
		require.True(t, ok)
		if v.Target == scene.GBufferTarget {
			break
		}
	}
	var names []string
	for range 5 {
		v, ok := h.renderer.CycleDebugAttachment(h.scene)
		require.True(t, ok)
		names = append(names, v.Label)
	}
	assert.Equal(t, []string{"GBuffer id", "GBuffer position", "GBuffer normal", "GBuffer depth", "GBuffer diffuse"}, names)

	texts := filter(h.frame(t), soft.OpText)
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0].Text, "fps")
	assert.Equal(t, "GBuffer diffuse", texts[1].Text)

	h.renderer.DisableDebug()
	assert.Empty(t, filter(h.frame(t), soft.OpText))
}
