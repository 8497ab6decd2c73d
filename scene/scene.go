// Package scene aggregates what the renderer draws each frame: cameras,
// lights, 2D and 3D models, render targets and the floor-plan grid. Scene
// contents come from entities; the scene keeps them in sync with the
// entities' transforms.
package scene

import (
	"iter"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kamstrup/intmap"
	"github.com/plus3/floorplan/components"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/geom"
	"github.com/plus3/floorplan/object"
	"go.uber.org/zap"
)

// Default camera names ToggleCamera switches between.
const (
	DefaultCamera2D = "camera2d"
	DefaultCamera3D = "camera3d"
)

type owned[T any] struct {
	obj   T
	owner *ecs.Entity
}

// Scene is the renderable state built from entities.
type Scene struct {
	Name string
	Grid *object.Grid

	logger   *zap.Logger
	entities *ecs.EntityManager
	managers *components.Managers
	bits     components.Bits

	targets     []TargetSpec
	bounds      geom.AABB
	constrained bool

	cameras  []owned[*object.Camera]
	active   *object.Camera
	camera2d string
	camera3d string

	models3d []*object.Model3D
	models2d []*object.Model2D
	ids3d    *intmap.Map[object.ColorID, *object.Model3D]
	ids2d    *intmap.Map[object.ColorID, *object.Model2D]
	owners   *intmap.Map[object.ColorID, *ecs.Entity]

	direct *owned[*object.DirectLight]
	points []owned[*object.PointLight]
	spots  []owned[*object.SpotLight]

	sel selection
}

// New creates an empty scene over an entity manager and the component
// managers registered on it.
func New(entities *ecs.EntityManager, managers *components.Managers, logger *zap.Logger) *Scene {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scene{
		logger:   logger.Named("scene"),
		entities: entities,
		managers: managers,
		bits:     managers.Bits(),
		camera2d: DefaultCamera2D,
		camera3d: DefaultCamera3D,
	}
	s.reset()
	return s
}

func (s *Scene) reset() {
	s.Name = ""
	s.Grid = object.NewGrid()
	s.targets = defaultTargets()
	s.bounds = geom.AABB{}
	s.constrained = false
	s.cameras = nil
	s.active = nil
	s.models3d = nil
	s.models2d = nil
	s.ids3d = intmap.New[object.ColorID, *object.Model3D](64)
	s.ids2d = intmap.New[object.ColorID, *object.Model2D](64)
	s.owners = intmap.New[object.ColorID, *ecs.Entity](128)
	s.direct = nil
	s.points = nil
	s.spots = nil
	s.sel = selection{}
}

// Clear destroys every entity and empties the scene. The entities are
// erased on the entity manager's next Update.
func (s *Scene) Clear() {
	for _, e := range s.entities.Entities() {
		s.entities.DestroyEntity(e.ID())
	}
	s.reset()
}

func (s *Scene) Entities() *ecs.EntityManager { return s.entities }

func (s *Scene) Managers() *components.Managers { return s.managers }

// Targets lists the render targets, NoAA and GBuffer first.
func (s *Scene) Targets() []TargetSpec { return s.targets }

// Target returns the spec called name.
func (s *Scene) Target(name string) (TargetSpec, bool) {
	for _, t := range s.targets {
		if t.Name == name {
			return t, true
		}
	}
	return TargetSpec{}, false
}

// Bounds is the box new 3D models are kept inside. ok is false when the
// scene has no constraints.
func (s *Scene) Bounds() (geom.AABB, bool) { return s.bounds, s.constrained }

// SetBounds installs constraints. min must not exceed max on any axis.
func (s *Scene) SetBounds(b geom.AABB) error {
	for i := 0; i < 3; i++ {
		if b.Min[i] > b.Max[i] {
			return ErrBadConstraints
		}
	}
	s.bounds = b
	s.constrained = true
	return nil
}

// AddEntity files e into the collection matching the first capability it
// carries, in the order camera, renderable, direct light, spot light, point
// light. It returns false for an entity with none of them.
func (s *Scene) AddEntity(e *ecs.Entity) bool {
	mask := e.Mask()
	m := s.managers
	switch {
	case mask&s.bits.Camera != 0:
		if c := m.Camera.Of(e); c != nil && c.Camera != nil {
			s.addCamera(c.Camera, e)
		}
	case mask&s.bits.Renderable != 0:
		r := m.Renderable.Of(e)
		// the Transform may have been attached after the Renderable built
		// its models
		if t := m.Transform.Of(e); t != nil {
			r.PullTransform(t)
		}
		if m3 := r.Model3D(); m3 != nil {
			s.AddModel3D(m3)
			s.ConstrainPosition(m3)
		}
		if m2 := r.Model2D(); m2 != nil {
			s.AddModel2D(m2)
		}
	case mask&s.bits.DirectLight != 0:
		s.setDirectLight(m.DirectLight.Of(e).Light, e)
	case mask&s.bits.SpotLight != 0:
		s.addSpotLight(m.SpotLight.Of(e).Light, e)
	case mask&s.bits.PointLight != 0:
		s.addPointLight(m.PointLight.Of(e).Light, e)
	default:
		return false
	}
	return true
}

// AddModel3D adds a model. Adding the same model twice panics; a second
// model with an existing name is kept with a warning.
func (s *Scene) AddModel3D(m *object.Model3D) {
	if existing, ok := s.ids3d.Get(m.ID); ok {
		if existing == m {
			panic("scene: model " + m.Name + " added twice")
		}
		s.logger.Warn("model color id already in use", zap.String("name", m.Name), zap.Stringer("id", m.ID))
	}
	for _, other := range s.models3d {
		if other.Name == m.Name && m.Name != "" {
			s.logger.Warn("duplicate 3D model name", zap.String("name", m.Name))
			break
		}
	}
	s.models3d = append(s.models3d, m)
	s.ids3d.Put(m.ID, m)
	if owner := m.Owner(); owner != nil {
		s.owners.Put(m.ID, owner)
	}
}

// AddModel2D adds a floor-plan model with the same duplicate policy as
// AddModel3D.
func (s *Scene) AddModel2D(m *object.Model2D) {
	if existing, ok := s.ids2d.Get(m.ID); ok {
		if existing == m {
			panic("scene: model " + m.Name + " added twice")
		}
		s.logger.Warn("model color id already in use", zap.String("name", m.Name), zap.Stringer("id", m.ID))
	}
	for _, other := range s.models2d {
		if other.Name == m.Name && m.Name != "" {
			s.logger.Warn("duplicate 2D model name", zap.String("name", m.Name))
			break
		}
	}
	s.models2d = append(s.models2d, m)
	s.ids2d.Put(m.ID, m)
	if owner := m.Owner(); owner != nil {
		s.owners.Put(m.ID, owner)
	}
}

// AddCamera adds a camera that belongs to no entity.
func (s *Scene) AddCamera(c *object.Camera) { s.addCamera(c, nil) }

func (s *Scene) addCamera(c *object.Camera, owner *ecs.Entity) {
	for _, other := range s.cameras {
		if other.obj == c {
			panic("scene: camera " + c.Name + " added twice")
		}
		if other.obj.Name == c.Name {
			s.logger.Warn("duplicate camera name", zap.String("name", c.Name))
		}
	}
	s.cameras = append(s.cameras, owned[*object.Camera]{c, owner})
	if s.active == nil {
		s.active = c
	}
}

// SetDirectLight replaces the scene's directional light.
func (s *Scene) SetDirectLight(l *object.DirectLight) { s.setDirectLight(l, nil) }

func (s *Scene) setDirectLight(l *object.DirectLight, owner *ecs.Entity) {
	if s.direct != nil && s.direct.obj != l {
		s.logger.Warn("scene already has a direct light, replacing it",
			zap.String("old", s.direct.obj.Name), zap.String("new", l.Name))
	}
	s.direct = &owned[*object.DirectLight]{l, owner}
}

func (s *Scene) AddPointLight(l *object.PointLight) { s.addPointLight(l, nil) }

func (s *Scene) addPointLight(l *object.PointLight, owner *ecs.Entity) {
	for _, other := range s.points {
		if other.obj == l {
			panic("scene: point light " + l.Name + " added twice")
		}
		if other.obj.Name == l.Name {
			s.logger.Warn("duplicate point light name", zap.String("name", l.Name))
		}
	}
	s.points = append(s.points, owned[*object.PointLight]{l, owner})
}

func (s *Scene) AddSpotLight(l *object.SpotLight) { s.addSpotLight(l, nil) }

func (s *Scene) addSpotLight(l *object.SpotLight, owner *ecs.Entity) {
	for _, other := range s.spots {
		if other.obj == l {
			panic("scene: spot light " + l.Name + " added twice")
		}
		if other.obj.Name == l.Name {
			s.logger.Warn("duplicate spot light name", zap.String("name", l.Name))
		}
	}
	s.spots = append(s.spots, owned[*object.SpotLight]{l, owner})
}

// Cameras returns the cameras in the order they were added.
func (s *Scene) Cameras() []*object.Camera {
	out := make([]*object.Camera, len(s.cameras))
	for i, c := range s.cameras {
		out[i] = c.obj
	}
	return out
}

// Camera returns the camera called name.
func (s *Scene) Camera(name string) *object.Camera {
	for _, c := range s.cameras {
		if c.obj.Name == name {
			return c.obj
		}
	}
	return nil
}

// ActiveCamera is the camera the renderer draws from, nil if none.
func (s *Scene) ActiveCamera() *object.Camera { return s.active }

func (s *Scene) hasCamera(c *object.Camera) bool {
	for _, other := range s.cameras {
		if other.obj == c {
			return true
		}
	}
	return false
}

// SetActiveCamera activates the camera called name.
func (s *Scene) SetActiveCamera(name string) bool {
	c := s.Camera(name)
	if c == nil {
		return false
	}
	s.active = c
	return true
}

// CameraNames are the orthographic and perspective camera names ToggleCamera
// switches between.
func (s *Scene) CameraNames() (ortho, perspective string) { return s.camera2d, s.camera3d }

func (s *Scene) SetCameraNames(ortho, perspective string) {
	s.camera2d = ortho
	s.camera3d = perspective
}

func (s *Scene) Models3D() []*object.Model3D { return s.models3d }

func (s *Scene) Models2D() []*object.Model2D { return s.models2d }

// Model3D looks a model up by color id.
func (s *Scene) Model3D(id object.ColorID) *object.Model3D {
	m, _ := s.ids3d.Get(id)
	return m
}

// Model2D looks a floor-plan model up by color id.
func (s *Scene) Model2D(id object.ColorID) *object.Model2D {
	m, _ := s.ids2d.Get(id)
	return m
}

// Buddy3D resolves the 3D buddy of m, nil when unlinked.
func (s *Scene) Buddy3D(m *object.Model2D) *object.Model3D {
	if m.Buddy() == object.NoColorID {
		return nil
	}
	return s.Model3D(m.Buddy())
}

// Buddy2D resolves the floor-plan buddy of m, nil when unlinked.
func (s *Scene) Buddy2D(m *object.Model3D) *object.Model2D {
	if m.Buddy() == object.NoColorID {
		return nil
	}
	return s.Model2D(m.Buddy())
}

// DirectLight is the directional light, nil if the scene has none.
func (s *Scene) DirectLight() *object.DirectLight {
	if s.direct == nil {
		return nil
	}
	return s.direct.obj
}

func (s *Scene) PointLights() iter.Seq[*object.PointLight] {
	return func(yield func(*object.PointLight) bool) {
		for _, l := range s.points {
			if !yield(l.obj) {
				return
			}
		}
	}
}

func (s *Scene) SpotLights() iter.Seq[*object.SpotLight] {
	return func(yield func(*object.SpotLight) bool) {
		for _, l := range s.spots {
			if !yield(l.obj) {
				return
			}
		}
	}
}

// Len returns the number of cameras, 3D models, 2D models and lights.
func (s *Scene) Len() (cameras, models3d, models2d, lights int) {
	lights = len(s.points) + len(s.spots)
	if s.direct != nil {
		lights++
	}
	return len(s.cameras), len(s.models3d), len(s.models2d), lights
}

// ConstrainPosition moves m the least amount that puts its oriented bounds
// inside the scene bounds, axis by axis. When m moved and its entity has a
// Transform, the transform is updated to match. It reports whether m moved.
func (s *Scene) ConstrainPosition(m *object.Model3D) bool {
	if !s.constrained {
		return false
	}
	d := s.bounds.Nudge(m.WorldBounds())
	if d == (mgl32.Vec3{}) {
		return false
	}
	m.Position = m.Position.Add(d)
	s.writeBack(m)
	return true
}

// writeBack stores a model's placement in its entity's Transform.
func (s *Scene) writeBack(model any) {
	var id object.ColorID
	switch m := model.(type) {
	case *object.Model3D:
		id = m.ID
	case *object.Model2D:
		id = m.ID
	}
	owner, ok := s.owners.Get(id)
	if !ok {
		return
	}
	t := s.managers.Transform.Of(owner)
	if t == nil {
		return
	}
	if r := s.managers.Renderable.Of(owner); r != nil {
		r.PushTransform(t, model)
		return
	}
	if m, ok := model.(*object.Model3D); ok {
		t.SetPosition(m.Position)
	}
}

// Sync drops everything whose entity has been destroyed. Call it after the
// entity manager's Update.
func (s *Scene) Sync() int {
	gone := func(e *ecs.Entity) bool { return e != nil && e.World() == nil }
	removed := 0

	modelGone := func(id object.ColorID) bool {
		owner, ok := s.owners.Get(id)
		if !ok || !gone(owner) {
			return false
		}
		s.owners.Del(id)
		s.forget(id)
		removed++
		return true
	}

	keep3 := s.models3d[:0]
	for _, m := range s.models3d {
		if modelGone(m.ID) {
			s.ids3d.Del(m.ID)
			continue
		}
		keep3 = append(keep3, m)
	}
	clear(s.models3d[len(keep3):])
	s.models3d = keep3

	keep2 := s.models2d[:0]
	for _, m := range s.models2d {
		if modelGone(m.ID) {
			s.ids2d.Del(m.ID)
			continue
		}
		keep2 = append(keep2, m)
	}
	clear(s.models2d[len(keep2):])
	s.models2d = keep2

	removed += prune(&s.points, gone)
	removed += prune(&s.spots, gone)
	if s.direct != nil && gone(s.direct.owner) {
		s.direct = nil
		removed++
	}

	if n := prune(&s.cameras, gone); n > 0 {
		removed += n
		if !s.hasCamera(s.active) {
			s.active = nil
			if len(s.cameras) > 0 {
				s.active = s.cameras[0].obj
			}
		}
	}
	return removed
}

func prune[T any](list *[]owned[T], gone func(*ecs.Entity) bool) int {
	keep := (*list)[:0]
	for _, o := range *list {
		if !gone(o.owner) {
			keep = append(keep, o)
		}
	}
	n := len(*list) - len(keep)
	clear((*list)[len(keep):])
	*list = keep
	return n
}
