package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/ecs"
	"github.com/plus3/floorplan/object"
)

// Camera wraps a scene camera. When the entity has a Transform the camera
// sits at its position; orientation stays the camera's own yaw and pitch.
type Camera struct {
	ecs.Base
	Camera *object.Camera

	seen uint64
}

func (c *Camera) Update(float64) {
	t := ecs.Find[*Transform](c.Owner())
	if t == nil || c.Camera == nil || t.Version() == c.seen {
		return
	}
	c.seen = t.Version()
	c.Camera.Position = t.Position
}

func (c *Camera) Serialize(o ecs.Object) {
	cam := c.Camera
	if cam == nil {
		return
	}
	o["name"] = cam.Name
	o["projection"] = cam.Projection.String()
	o["fov"] = float64(mgl32.RadToDeg(cam.FOV))
	o["zoom"] = float64(cam.Zoom)
	o["near"] = float64(cam.Near)
	o["far"] = float64(cam.Far)
	o.SetVec3("position", cam.Position)
	o["yaw"] = float64(mgl32.RadToDeg(cam.Yaw))
	o["pitch"] = float64(mgl32.RadToDeg(cam.Pitch))
}

// Deserialize builds the camera. Missing fields fall back to a 60 degree
// perspective or a 10 unit orthographic view. A "target" point overrides
// yaw and pitch.
func (c *Camera) Deserialize(o ecs.Object) error {
	name := o.String("name", "")
	if name == "" && c.Owner() != nil {
		name = c.Owner().Name()
	}

	near := o.Float32("near", 0.1)
	far := o.Float32("far", 1000)
	var cam *object.Camera
	switch object.ParseProjection(o.String("projection", "perspective")) {
	case object.Orthographic:
		cam = object.NewOrthographicCamera(name, o.Float32("zoom", 10), 1, near, far)
		cam.Position = mgl32.Vec3{0, 0, 100}
	default:
		cam = object.NewPerspectiveCamera(name, o.Float32("fov", 60), 1, near, far)
		cam.Zoom = o.Float32("zoom", cam.Zoom)
		cam.Position = mgl32.Vec3{0, 10, 10}
	}

	cam.Position = o.Vec3("position", cam.Position)
	if t := ecs.Find[*Transform](c.Owner()); t != nil && !o.Has("position") {
		cam.Position = t.Position
	}
	cam.Yaw = mgl32.DegToRad(o.Float32("yaw", 0))
	cam.Pitch = mgl32.DegToRad(o.Float32("pitch", 0))
	if o.Has("target") {
		cam.LookAt(o.Vec3("target", mgl32.Vec3{}))
	}
	cam.Recalculate()

	c.Camera = cam
	return nil
}
