package scene

import (
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/object"
	"go.uber.org/zap"
)

// LinkBuddies pairs floor-plan models with the 3D models of the entities
// their Renderable names as buddy. Models of a "both" renderable are linked
// when built; this covers buddies spread over two entities. It returns the
// number of new links.
func (s *Scene) LinkBuddies() int {
	links := 0
	for _, m2 := range s.models2d {
		owner, ok := s.owners.Get(m2.ID)
		if !ok {
			continue
		}
		r := s.managers.Renderable.Of(owner)
		if r == nil || r.Buddy == "" || s.Buddy3D(m2) != nil {
			continue
		}
		other := s.entities.GetEntityByName(r.Buddy)
		if other == nil {
			s.logger.Warn("buddy entity not found", zap.String("model", m2.Name), zap.String("buddy", r.Buddy))
			continue
		}
		or := s.managers.Renderable.Of(other)
		if or == nil || or.Model3D() == nil {
			s.logger.Warn("buddy entity has no 3D model", zap.String("model", m2.Name), zap.String("buddy", r.Buddy))
			continue
		}
		m3 := or.Model3D()
		if s.Model3D(m3.ID) != m3 {
			continue
		}
		m3.SetBuddy(m2.ID)
		m2.SetBuddy(m3.ID)
		links++
	}
	return links
}

// ToggleCamera switches between the orthographic and the perspective camera.
// Every buddy pair is synchronized from the view being left into the view
// being entered, and the selection is cleared.
func (s *Scene) ToggleCamera() bool {
	toPlan := !s.Is2D()
	name := s.camera3d
	want := object.Perspective
	if toPlan {
		name = s.camera2d
		want = object.Orthographic
	}

	next := s.Camera(name)
	if next == nil || next.Projection != want {
		next = nil
		for _, c := range s.cameras {
			if c.obj.Projection == want {
				next = c.obj
				break
			}
		}
	}
	if next == nil {
		s.logger.Warn("no camera to toggle to", zap.String("camera", name))
		return false
	}

	for _, m3 := range s.models3d {
		m2 := s.Buddy2D(m3)
		if m2 == nil {
			continue
		}
		if toPlan {
			object.SyncPlan(m3, m2)
			s.writeBack(m2)
		} else {
			object.SyncSpace(m2, m3)
			s.writeBack(m3)
		}
	}

	s.active = next
	s.ClearSelection()
	s.logger.Debug("camera toggled", zap.String("camera", next.Name), zap.Stringer("projection", next.Projection))
	return true
}

// Owner is the entity a model id belongs to, or nil for models added
// without one.
func (s *Scene) Owner(id object.ColorID) *ecs.Entity {
	owner, _ := s.owners.Get(id)
	return owner
}
