package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/components"
	"github.com/plus3/floorplan/config"
	"github.com/plus3/floorplan/engine"
	"github.com/plus3/floorplan/render"
	"github.com/plus3/floorplan/render/soft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const width, height = 64, 48

var fixture = map[string]string{
	"resources.json": `{"resources": [
		{"name": "crate", "path": "builtin:cube"},
		{"name": "crate-plan", "path": "builtin:quad", "kind": "2d"}
	]}`,
	"chair.json": `{"prefabdefinition": {"name": "chair", "components": [
		{"type": "TransformCmp"},
		{"type": "RenderableCmp", "asset": "crate", "view": "both", "label": "Chair"}
	]}}`,
	"catalog.json": `{"catalogdefinition": {"name": "furniture", "items": [
		{"name": "Chair", "prefab": "chair", "category": "seating", "thumbnail": "chair.png"},
		{"name": "Ghost", "prefab": "missing"}
	]}}`,
	"scene.json": `{
		"name": "room",
		"constraints3d": {"min": [-2, 0, -2], "max": [2, 3, 2]},
		"entities": [
			{"name": "camera3d", "components": [{"type": "CameraCmp", "position": [0, 0, 6], "target": [0, 0, 0]}]},
			{"name": "camera2d", "components": [{"type": "CameraCmp", "projection": "orthographic", "zoom": 5}]}
		]
	}`,
	"game.json": `{
		"game": {"name": "test", "state": "scene.json"},
		"resources": "resources.json",
		"prefabs": ["chair.json"],
		"catalogs": "catalog.json"
	}`,
}

func writeFixture(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	dir := writeFixture(t, fixture)
	cfg, err := config.Load(filepath.Join(dir, "game.json"))
	require.NoError(t, err)

	e, err := engine.New(cfg, soft.New(width, height), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(e.Shutdown)
	return e
}

func TestNewLoadsContent(t *testing.T) {
	e := newEngine(t)

	assert.Equal(t, []string{"chair"}, e.Prefabs().Names())
	assert.Equal(t, []string{"furniture"}, e.Catalogs().Names())
	assert.Equal(t, "room", e.Scene().Name)
	require.NotNil(t, e.Scene().ActiveCamera())
	assert.Equal(t, "camera3d", e.Scene().ActiveCamera().Name)

	a, err := e.Assets().Asset3D("crate")
	require.NoError(t, err)
	assert.Equal(t, "builtin:cube", a.Name)

	require.NoError(t, e.Frame(1.0/60))
	stats := e.Scheduler().GetStats()
	require.Len(t, stats.Systems, 2)
	assert.Equal(t, "update", stats.Systems[0].Name)
	assert.Equal(t, "render", stats.Systems[1].Name)
	assert.Equal(t, "render", stats.Systems[1].Phase.String())
	assert.EqualValues(t, 1, stats.Systems[1].ExecutionCount)
}

func TestFrameWithoutCamera(t *testing.T) {
	e, err := engine.New(config.Default(), soft.New(width, height), zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.ErrorIs(t, e.Frame(1.0/60), render.ErrNoCamera)
	assert.ErrorIs(t, e.Frame(1.0/60), render.ErrNoCamera)
}

func TestSpawnCatalogItem(t *testing.T) {
	e := newEngine(t)

	ent, err := e.SpawnCatalogItem("furniture", "Chair", mgl32.Vec3{10, 1, 0})
	require.NoError(t, err)

	c := e.Managers().Catalog.Of(ent)
	require.NotNil(t, c)
	assert.Equal(t, "furniture", c.Catalog)
	assert.Equal(t, "Chair", c.Item)
	assert.Equal(t, "seating", c.Category)
	assert.Equal(t, "chair.png", c.Thumbnail)

	r := e.Managers().Renderable.Of(ent)
	require.NotNil(t, r)
	m := r.Model3D()
	require.NotNil(t, m)
	assert.Contains(t, e.Scene().Models3D(), m)
	assert.Contains(t, e.Scene().Models2D(), r.Model2D())

	// clamped into the scene bounds
	assert.InDelta(t, 1.5, m.Position[0], 1e-5)
	assert.InDelta(t, 1.5, e.Managers().Transform.Of(ent).Position[0], 1e-5)
	assert.Equal(t, "Chair", r.Model2D().Label)

	doc := ent.Serialize()
	comps, err := doc.Objects("components")
	require.NoError(t, err)
	var types []string
	for _, o := range comps {
		types = append(types, o.String("type", ""))
	}
	assert.Contains(t, types, components.CatalogName)
}

func TestSpawnCatalogErrors(t *testing.T) {
	e := newEngine(t)

	_, err := e.SpawnCatalogItem("kitchen", "Chair", mgl32.Vec3{})
	assert.ErrorIs(t, err, engine.ErrUnknownCatalog)

	_, err = e.SpawnCatalogItem("furniture", "Sofa", mgl32.Vec3{})
	assert.ErrorIs(t, err, engine.ErrUnknownItem)

	_, err = e.SpawnCatalogItem("furniture", "Ghost", mgl32.Vec3{})
	assert.Error(t, err)
	assert.Equal(t, 2, e.Entities().Len(), "only the cameras exist")
}

func TestSelectAndDestroy(t *testing.T) {
	e := newEngine(t)
	ent, err := e.SpawnCatalogItem("furniture", "Chair", mgl32.Vec3{0, 1, 0})
	require.NoError(t, err)
	require.NoError(t, e.Frame(1.0/60))

	m := e.Managers().Renderable.Of(ent).Model3D()
	p, ok := e.Scene().ActiveCamera().Project(m.Position, width, height)
	require.True(t, ok)

	picked, id, err := e.Pick(int(p[0]), int(p[1]))
	require.NoError(t, err)
	assert.Equal(t, ent, picked)
	assert.Equal(t, m.ID, id)

	require.True(t, e.SelectAt(int(p[0]), int(p[1])))
	assert.Equal(t, m.ID, e.Scene().Selected())

	require.True(t, e.DestroySelected())
	assert.False(t, e.DestroySelected(), "selection was cleared")
	assert.NotNil(t, e.Entities().GetEntityByID(ent.ID()), "destruction is deferred")

	require.NoError(t, e.Frame(1.0/60))
	assert.Nil(t, e.Entities().GetEntityByID(ent.ID()))
	assert.NotContains(t, e.Scene().Models3D(), m)
	assert.Empty(t, e.Scene().Models2D())
}

func TestFocusAt(t *testing.T) {
	e := newEngine(t)
	ent, err := e.SpawnCatalogItem("furniture", "Chair", mgl32.Vec3{0, 1, 0})
	require.NoError(t, err)
	require.NoError(t, e.Frame(1.0/60))

	m := e.Managers().Renderable.Of(ent).Model3D()
	p, ok := e.Scene().ActiveCamera().Project(m.Position, width, height)
	require.True(t, ok)
	e.FocusAt(int(p[0]), int(p[1]))
	assert.Equal(t, m.ID, e.Scene().Focused())

	e.FocusAt(0, 0)
	assert.Zero(t, e.Scene().Focused())
}

func TestLoadSceneReplaces(t *testing.T) {
	e := newEngine(t)
	_, err := e.SpawnCatalogItem("furniture", "Chair", mgl32.Vec3{})
	require.NoError(t, err)

	saved := filepath.Join(t.TempDir(), "saved.json")
	require.NoError(t, e.SaveScene(saved))

	require.NoError(t, e.LoadScene(saved))
	assert.Equal(t, 3, e.Entities().Len())
	assert.Len(t, e.Scene().Models3D(), 1)

	ent := e.Entities().GetEntityByName("chair")
	require.NotNil(t, ent)
	c := e.Managers().Catalog.Of(ent)
	require.NotNil(t, c)
	assert.Equal(t, "Chair", c.Item)
}

func TestNewMissingFile(t *testing.T) {
	files := map[string]string{}
	for k, v := range fixture {
		files[k] = v
	}
	delete(files, "chair.json")
	dir := writeFixture(t, files)

	cfg, err := config.Load(filepath.Join(dir, "game.json"))
	require.NoError(t, err)
	_, err = engine.New(cfg, soft.New(width, height), zaptest.NewLogger(t))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRenderOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Graphics.Selection = config.Outline{Width: 5, Color: [4]float32{0, 1, 0, 1}}

	opts := engine.RenderOptions(cfg)
	assert.Equal(t, float32(5), opts.SelectionWidth)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, opts.SelectionColor)
	assert.Equal(t, render.DefaultOptions().MaxShadowSize, opts.MaxShadowSize)
}
