package debugui

import (
	"github.com/plus3/floorplan/ecs"
	"go.uber.org/zap"
)

// UI is a small ECS world of ImGui windows. Its panels inspect a separate
// target entity manager, so tool windows never show up in, or get saved
// with, the target's entities.
type UI struct {
	registry  *ecs.Registry
	entities  *ecs.EntityManager
	scheduler *ecs.Scheduler
	items     *ecs.Manager[ImguiItem, *ImguiItem]
	input     *ecs.Singleton[ImguiInputState]
	timer     *FrameTimer

	target *ecs.EntityManager
	stats  func() *ecs.SchedulerStats

	Browser   *EntityBrowser
	Inspector *ComponentInspector
	Managers  *ManagerViewer
	Query     *QueryDebugger
	Perf      *PerformanceStats
}

// New creates an empty UI world over target.
func New(target *ecs.EntityManager, logger *zap.Logger) *UI {
	if logger == nil {
		logger = zap.NewNop()
	}
	u := &UI{
		registry: ecs.NewRegistry(nil),
		target:   target,
		timer:    NewFrameTimer(),
	}
	u.items = RegisterImguiItem(u.registry, 256)
	u.entities = ecs.NewEntityManager(u.registry, nil, logger.Named("debugui"))
	u.entities.Subscriptions().Seal()
	u.input = ecs.NewSingleton[ImguiInputState](u.entities)

	u.scheduler = ecs.NewScheduler(u.entities)
	u.scheduler.Register(&ImguiSystem{})
	return u
}

// SetSchedulerStats supplies the stats shown by the performance window.
func (u *UI) SetSchedulerStats(fn func() *ecs.SchedulerStats) {
	u.stats = fn
}

// Add spawns a window entity that calls render every frame.
func (u *UI) Add(name string, render func()) *ecs.Entity {
	e := u.entities.CreateNamedEntity(name)
	item := u.items.New()
	item.Render = render
	e.AddComponent(item)
	return e
}

// SpawnDebugUI adds the entity browser, component inspector, manager
// viewer, performance and query windows.
func (u *UI) SpawnDebugUI() {
	u.Browser = NewEntityBrowser(100)
	u.Inspector = NewComponentInspector()
	u.Managers = NewManagerViewer()
	u.Perf = NewPerformanceStats(120)
	u.Query = NewQueryDebugger()

	u.Add("entity-browser", func() { u.Browser.Render(u.target) })
	u.Add("component-inspector", func() { u.Inspector.Render(u.target, u.Browser.Selected()) })
	u.Add("component-managers", func() {
		if id, ok := u.Managers.Render(u.target); ok {
			if m := u.target.Registry().GetByCompID(id); m != nil {
				u.Browser.SetFilter(m.Name())
			}
		}
	})
	u.Add("performance", func() {
		var sched *ecs.SchedulerStats
		if u.stats != nil {
			sched = u.stats()
		}
		u.Perf.Render(u.target, sched, u.timer.GetDeltaTime())
	})
	u.Add("query-debugger", func() { u.Query.Render(u.target) })
}

// Frame runs the ImGui system once: every window's render function is
// called. Call it between the backend's BeginFrame and EndFrame.
func (u *UI) Frame(dt float64) {
	u.scheduler.Once(dt)
}

// Input is the ImGui capture state seen by the last Frame.
func (u *UI) Input() ImguiInputState {
	return *u.input.Get()
}

// Entities is the UI's own entity manager.
func (u *UI) Entities() *ecs.EntityManager {
	return u.entities
}

func (u *UI) Target() *ecs.EntityManager {
	return u.target
}
