package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/object"
)

type selection struct {
	selected     object.ColorID
	focused      object.ColorID
	transforming bool
}

// known reports whether id names a model in the view the active camera
// shows.
func (s *Scene) known(id object.ColorID) bool {
	if s.Is2D() {
		return s.Model2D(id) != nil
	}
	return s.Model3D(id) != nil
}

// Is2D reports whether the active camera is orthographic.
func (s *Scene) Is2D() bool {
	return s.active != nil && s.active.Projection == object.Orthographic
}

// Select marks the model with id as selected. Selecting NoColorID or an id
// not shown by the active camera clears the selection.
func (s *Scene) Select(id object.ColorID) bool {
	s.sel.transforming = false
	if id == object.NoColorID || !s.known(id) {
		s.sel.selected = object.NoColorID
		return false
	}
	s.sel.selected = id
	return true
}

// Focus marks the model under the cursor.
func (s *Scene) Focus(id object.ColorID) {
	if id != object.NoColorID && !s.known(id) {
		id = object.NoColorID
	}
	s.sel.focused = id
}

func (s *Scene) Selected() object.ColorID { return s.sel.selected }

func (s *Scene) Focused() object.ColorID { return s.sel.focused }

func (s *Scene) IsSelected(id object.ColorID) bool {
	return id != object.NoColorID && id == s.sel.selected
}

func (s *Scene) IsFocused(id object.ColorID) bool {
	return id != object.NoColorID && id == s.sel.focused
}

// BeginTransform starts interactive transformation of the selected model.
func (s *Scene) BeginTransform() bool {
	if s.sel.selected == object.NoColorID {
		return false
	}
	s.sel.transforming = true
	return true
}

// EndTransform finishes the interaction and stores the model's placement in
// its entity.
func (s *Scene) EndTransform() {
	if !s.sel.transforming {
		return
	}
	s.sel.transforming = false
	if m := s.Model3D(s.sel.selected); m != nil && !s.Is2D() {
		s.ConstrainPosition(m)
		s.writeBack(m)
	} else if m := s.Model2D(s.sel.selected); m != nil {
		s.writeBack(m)
	}
}

// Transforming returns the id of the model under interactive transform.
func (s *Scene) Transforming() (object.ColorID, bool) {
	return s.sel.selected, s.sel.transforming
}

// ClearSelection drops selection, focus and any transform in progress.
func (s *Scene) ClearSelection() {
	s.sel = selection{}
}

// MoveSelection translates the selected model. In the floor-plan view only
// X and Y of delta are used. 3D models are kept inside the scene bounds.
func (s *Scene) MoveSelection(delta mgl32.Vec3) bool {
	id := s.sel.selected
	if s.Is2D() {
		m := s.Model2D(id)
		if m == nil {
			return false
		}
		m.Position = m.Position.Add(delta.Vec2())
		s.writeBack(m)
		return true
	}
	m := s.Model3D(id)
	if m == nil {
		return false
	}
	m.Position = m.Position.Add(delta)
	if !s.ConstrainPosition(m) {
		s.writeBack(m)
	}
	return true
}

// RotateSelection turns the selected model by rad: about +Z on the floor
// plan, about +Y in 3D.
func (s *Scene) RotateSelection(rad float32) bool {
	id := s.sel.selected
	if s.Is2D() {
		m := s.Model2D(id)
		if m == nil {
			return false
		}
		m.Rotation += rad
		s.writeBack(m)
		return true
	}
	m := s.Model3D(id)
	if m == nil {
		return false
	}
	m.SetYaw(m.Yaw() + rad)
	if !s.ConstrainPosition(m) {
		s.writeBack(m)
	}
	return true
}

func (s *Scene) forget(id object.ColorID) {
	if s.sel.selected == id {
		s.sel.selected = object.NoColorID
		s.sel.transforming = false
	}
	if s.sel.focused == id {
		s.sel.focused = object.NoColorID
	}
}
