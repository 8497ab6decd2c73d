package engine

import (
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/render"
	"github.com/plus3/floorplan/scene"
	"go.uber.org/zap"
)

// UpdateSystem erases destroyed entities, updates every component manager
// in dependency order and drops the destroyed entities' models from the
// scene.
type UpdateSystem struct {
	Registry *ecs.Registry
	Scene    ecs.Singleton[scene.Scene]
}

func (s *UpdateSystem) Name() string { return "update" }

func (s *UpdateSystem) Phase() ecs.Phase { return ecs.PhaseUpdate }

func (s *UpdateSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Entities.Update()
	s.Registry.Update(frame.DeltaTime)
	if sc := s.Scene.Get(); sc != nil {
		sc.Sync()
	}
}

// RenderSystem draws the scene once per frame. Render errors are logged when
// they change so a scene without a camera does not flood the log.
type RenderSystem struct {
	Renderer ecs.Singleton[render.Renderer]
	Scene    ecs.Singleton[scene.Scene]
	Logger   *zap.Logger

	err     error
	lastMsg string
}

func (s *RenderSystem) Name() string { return "render" }

func (s *RenderSystem) Phase() ecs.Phase { return ecs.PhaseRender }

func (s *RenderSystem) Execute(frame *ecs.UpdateFrame) {
	r, sc := s.Renderer.Get(), s.Scene.Get()
	if r == nil || sc == nil {
		return
	}
	s.err = r.RenderScene(sc, frame.DeltaTime)
	msg := ""
	if s.err != nil {
		msg = s.err.Error()
	}
	if msg != s.lastMsg && s.err != nil {
		s.Logger.Warn("frame not rendered", zap.Error(s.err))
	}
	s.lastMsg = msg
}

// Err is the error of the last frame, if any.
func (s *RenderSystem) Err() error { return s.err }
