// Package engine wires the editor's subsystems together: configuration,
// logging, the ECS, assets, prefabs, catalogs, the scene and the renderer.
// New brings them up in dependency order and Frame runs one update and one
// render through the ECS scheduler.
package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/asset"
	"github.com/plus3/floorplan/components"
	"github.com/plus3/floorplan/config"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/logging"
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/render"
	"github.com/plus3/floorplan/scene"
	"go.uber.org/zap"
)

// Engine is the application context.
type Engine struct {
	cfg    *config.Config
	logger *zap.Logger

	registry  *ecs.Registry
	prefabs   *ecs.PrefabManager
	entities  *ecs.EntityManager
	managers  *components.Managers
	assets    *asset.Library
	catalogs  *Catalogs
	scene     *scene.Scene
	renderer  *render.Renderer
	scheduler *ecs.Scheduler
	render    *RenderSystem
}

// New initializes every subsystem from cfg and draws through device. A nil
// logger is built from the game section of cfg. Content errors are returned;
// duplicate prefab or catalog names panic.
func New(cfg *config.Config, device render.Device, logger *zap.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		l, err := logging.New(logging.Options{
			Level: cfg.Game.LogLevel,
			File:  cfg.Resolve(cfg.Game.LogFile),
		})
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		logger = l
	}

	e := &Engine{
		cfg:    cfg,
		logger: logger.Named("engine"),
	}

	if _, err := cfg.Files(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e.assets = asset.NewLibrary(logger)
	e.registry = ecs.NewRegistry(nil)
	e.prefabs = ecs.NewPrefabManager(logger)
	e.entities = ecs.NewEntityManager(e.registry, e.prefabs, logger)
	e.managers = components.Register(e.registry, e.entities.Subscriptions(), components.Options{
		Assets: e.assets,
	})
	e.entities.Subscriptions().Seal()

	for _, p := range cfg.Resources {
		n, err := loadResources(e.assets, cfg.Resolve(p), e.logger)
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.logger.Info("resources loaded", zap.String("file", p), zap.Int("count", n))
	}

	for _, p := range cfg.Prefabs {
		if err := e.prefabs.AddPrefab(cfg.Resolve(p)); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}

	e.catalogs = NewCatalogs(logger)
	for _, p := range cfg.Catalogs {
		if err := e.catalogs.Add(cfg.Resolve(p)); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}
	e.checkCatalogs()

	e.scene = scene.New(e.entities, e.managers, logger)
	if cfg.Game.State != "" {
		if err := e.scene.LoadFile(cfg.Resolve(cfg.Game.State)); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}

	e.renderer = render.NewRenderer(device, RenderOptions(cfg), logger)

	ecs.SetSingleton(e.entities, e.scene)
	ecs.SetSingleton(e.entities, e.renderer)

	e.scheduler = ecs.NewScheduler(e.entities)
	e.scheduler.Register(&UpdateSystem{Registry: e.registry})
	e.render = &RenderSystem{Logger: e.logger}
	e.scheduler.Register(e.render)

	e.logger.Info("engine ready",
		zap.String("game", cfg.Game.Name),
		zap.Int("prefabs", e.prefabs.Len()),
		zap.Int("catalogs", e.catalogs.Len()),
		zap.Int("entities", e.entities.Len()),
	)
	return e, nil
}

// RenderOptions maps the graphics section of cfg onto renderer options.
func RenderOptions(cfg *config.Config) render.Options {
	opts := render.DefaultOptions()
	g := cfg.Graphics
	opts.SelectionColor = mgl32.Vec4(g.Selection.Color)
	opts.SelectionWidth = g.Selection.Width
	opts.FocusColor = mgl32.Vec4(g.Focus.Color)
	opts.FocusWidth = g.Focus.Width
	opts.LabelColor = mgl32.Vec4(g.Font.Color)
	return opts
}

// checkCatalogs warns about items whose prefab was never loaded.
func (e *Engine) checkCatalogs() {
	for _, name := range e.catalogs.Names() {
		c, _ := e.catalogs.Get(name)
		for _, it := range c.Items {
			if _, ok := e.prefabs.Lookup(it.Prefab); !ok {
				e.logger.Warn("catalog item names an unknown prefab",
					zap.String("catalog", name), zap.String("item", it.Name), zap.String("prefab", it.Prefab))
			}
		}
	}
}

func (e *Engine) Config() *config.Config { return e.cfg }

func (e *Engine) Logger() *zap.Logger { return e.logger }

func (e *Engine) Registry() *ecs.Registry { return e.registry }

func (e *Engine) Prefabs() *ecs.PrefabManager { return e.prefabs }

func (e *Engine) Entities() *ecs.EntityManager { return e.entities }

func (e *Engine) Managers() *components.Managers { return e.managers }

func (e *Engine) Assets() *asset.Library { return e.assets }

func (e *Engine) Catalogs() *Catalogs { return e.catalogs }

func (e *Engine) Scene() *scene.Scene { return e.scene }

func (e *Engine) Renderer() *render.Renderer { return e.renderer }

func (e *Engine) Scheduler() *ecs.Scheduler { return e.scheduler }

// Frame advances the world by dt seconds and renders it. The returned error
// is the renderer's, e.g. render.ErrNoCamera.
func (e *Engine) Frame(dt float64) error {
	e.scheduler.Once(dt)
	return e.render.Err()
}

// LoadScene replaces the current scene with the one in path. The old
// entities are erased before the new document is read.
func (e *Engine) LoadScene(path string) error {
	e.scene.Clear()
	e.entities.Update()
	return e.scene.LoadFile(path)
}

func (e *Engine) SaveScene(path string) error {
	return e.scene.SaveFile(path)
}

// SpawnCatalogItem instantiates the item's prefab at position, tags it with
// its catalog origin and adds it to the scene, clamped to the scene bounds.
func (e *Engine) SpawnCatalogItem(catalog, item string, position mgl32.Vec3) (*ecs.Entity, error) {
	it, err := e.catalogs.Item(catalog, item)
	if err != nil {
		return nil, err
	}
	if _, ok := e.prefabs.Lookup(it.Prefab); !ok {
		return nil, fmt.Errorf("spawn %s/%s: unknown prefab %q", catalog, item, it.Prefab)
	}

	ent, err := e.entities.CreateEntityFromPrefab(it.Prefab)
	if err != nil {
		return nil, fmt.Errorf("spawn %s/%s: %w", catalog, item, err)
	}

	c := e.managers.Catalog.Of(ent)
	if c == nil {
		c = e.managers.Catalog.New()
		ent.AddComponent(c)
	}
	c.Catalog = catalog
	c.Item = it.Name
	c.Category = it.Category
	c.Thumbnail = it.Thumbnail

	t := e.managers.Transform.Of(ent)
	if t == nil {
		t = e.managers.Transform.New()
		ent.AddComponent(t)
	}
	t.SetPosition(position)

	e.scene.AddEntity(ent)
	e.logger.Debug("catalog item spawned",
		zap.String("catalog", catalog), zap.String("item", item), zap.Uint64("entity", uint64(ent.ID())))
	return ent, nil
}

// Pick returns the entity drawn at pixel x, y of the last frame.
func (e *Engine) Pick(x, y int) (*ecs.Entity, object.ColorID, error) {
	id, err := e.scene.GetModelAtPoint(e.renderer.Device(), x, y)
	if err != nil || id == object.NoColorID {
		return nil, object.NoColorID, err
	}
	return e.scene.Owner(id), id, nil
}

// SelectAt selects the model under x, y, or clears the selection.
func (e *Engine) SelectAt(x, y int) bool {
	_, id, err := e.Pick(x, y)
	if err != nil {
		e.logger.Warn("pick failed", zap.Error(err))
		return false
	}
	return e.scene.Select(id)
}

// FocusAt focuses the model under x, y.
func (e *Engine) FocusAt(x, y int) {
	_, id, err := e.Pick(x, y)
	if err != nil {
		return
	}
	e.scene.Focus(id)
}

// DestroySelected schedules the selected model's entity for destruction.
func (e *Engine) DestroySelected() bool {
	id := e.scene.Selected()
	if id == object.NoColorID {
		return false
	}
	owner := e.scene.Owner(id)
	if owner == nil {
		return false
	}
	e.scene.ClearSelection()
	return e.entities.DestroyEntity(owner.ID())
}

// Shutdown flushes the logger.
func (e *Engine) Shutdown() {
	e.logger.Info("engine shutting down", zap.Int64("frames", e.frames()))
	_ = e.logger.Sync()
}

func (e *Engine) frames() int64 {
	for _, s := range e.scheduler.GetStats().Systems {
		if s.Name == "render" {
			return s.ExecutionCount
		}
	}
	return 0
}
