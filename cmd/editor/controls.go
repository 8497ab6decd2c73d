package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/config"
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/scene"
)

// Base rates at sensitivity 100.
const (
	movePerPixel   = 0.01
	rotatePerPixel = 0.005
	zoomPerStep    = 0.1
	minOrthoZoom   = 0.5

	// rotateStep is one Q/R key press.
	rotateStep = math.Pi / 12
)

// Controls turns mouse deltas into camera and selection changes.
type Controls struct {
	move, rotate, zoom float32
}

func NewControls(s config.Sensitivity) Controls {
	return Controls{
		move:   s.Move / 100,
		rotate: s.Rotate / 100,
		zoom:   s.Zoom / 100,
	}
}

// Orbit turns a perspective camera by a mouse drag.
func (c Controls) Orbit(cam *object.Camera, dx, dy float32) {
	if cam == nil || cam.Projection == object.Orthographic {
		return
	}
	k := rotatePerPixel * c.rotate
	cam.Rotate(-dx*k, -dy*k)
}

// Pan slides the camera parallel to the view: across the plan for the
// orthographic camera, along the ground for the perspective one.
func (c Controls) Pan(cam *object.Camera, dx, dy float32, height int) {
	if cam == nil {
		return
	}
	if cam.Projection == object.Orthographic {
		k := planUnitsPerPixel(cam, height) * c.move
		cam.Position = cam.Position.Add(mgl32.Vec3{-dx * k, dy * k, 0})
		return
	}
	right, forward := groundAxes(cam)
	k := movePerPixel * c.move * max(cam.Distance(), 1)
	cam.Position = cam.Position.Sub(right.Mul(dx * k)).Add(forward.Mul(dy * k))
}

// Zoom changes the orthographic extent, or dollies a perspective camera,
// by wheel steps. Positive steps zoom in.
func (c Controls) Zoom(cam *object.Camera, steps float32) {
	if cam == nil || steps == 0 {
		return
	}
	f := float32(math.Pow(1-zoomPerStep*float64(c.zoom), float64(steps)))
	if cam.Projection == object.Orthographic {
		cam.Zoom = max(cam.Zoom*f, minOrthoZoom)
		return
	}
	d := max(cam.Distance(), 1)
	cam.Position = cam.Position.Add(cam.Forward().Mul(d * (1 - f)))
}

// Drag moves the selected model by a mouse delta in the active view.
func (c Controls) Drag(s *scene.Scene, dx, dy float32, height int) bool {
	cam := s.ActiveCamera()
	if cam == nil {
		return false
	}
	if cam.Projection == object.Orthographic {
		k := planUnitsPerPixel(cam, height)
		return s.MoveSelection(mgl32.Vec3{dx * k, -dy * k, 0})
	}
	right, forward := groundAxes(cam)
	k := movePerPixel * c.move * max(cam.Distance(), 1) * 0.2
	return s.MoveSelection(right.Mul(dx * k).Sub(forward.Mul(dy * k)))
}

// planUnitsPerPixel is the world size of one pixel under an orthographic
// camera.
func planUnitsPerPixel(cam *object.Camera, height int) float32 {
	if height <= 0 {
		return 0
	}
	return 2 * cam.Zoom / float32(height)
}

// groundAxes are the camera's right and forward directions flattened onto
// the floor.
func groundAxes(cam *object.Camera) (right, forward mgl32.Vec3) {
	sin, cos := math.Sincos(float64(cam.Yaw))
	right = mgl32.Vec3{float32(cos), 0, float32(-sin)}
	forward = mgl32.Vec3{float32(-sin), 0, float32(-cos)}
	return right, forward
}
