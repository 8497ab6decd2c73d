package object

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/geom"
)

// ProjectionType distinguishes the floor-plan and 3D views.
type ProjectionType uint8

const (
	Perspective ProjectionType = iota
	Orthographic
)

func (p ProjectionType) String() string {
	if p == Orthographic {
		return "orthographic"
	}
	return "perspective"
}

// ParseProjection accepts "orthographic"/"ortho"; anything else is perspective.
func ParseProjection(s string) ProjectionType {
	switch s {
	case "orthographic", "ortho", "2d":
		return Orthographic
	}
	return Perspective
}

const maxPitch = 89 * math.Pi / 180

// Camera is a view into the scene. Orientation is yaw about +Y and pitch
// about the camera's right axis; with both zero it looks down -Z.
type Camera struct {
	Name       string
	Projection ProjectionType
	Position   mgl32.Vec3
	Yaw        float32
	Pitch      float32
	FOV        float32
	Zoom       float32
	Aspect     float32
	Near       float32
	Far        float32

	view    mgl32.Mat4
	proj    mgl32.Mat4
	frustum geom.Frustum
}

// NewPerspectiveCamera creates a camera with a vertical field of view in degrees.
func NewPerspectiveCamera(name string, fovDeg, aspect, near, far float32) *Camera {
	c := &Camera{
		Name:       name,
		Projection: Perspective,
		FOV:        mgl32.DegToRad(fovDeg),
		Zoom:       10,
		Aspect:     aspect,
		Near:       near,
		Far:        far,
	}
	c.Recalculate()
	return c
}

// NewOrthographicCamera creates a camera showing zoom world units above and
// below its position.
func NewOrthographicCamera(name string, zoom, aspect, near, far float32) *Camera {
	c := &Camera{
		Name:       name,
		Projection: Orthographic,
		FOV:        mgl32.DegToRad(45),
		Zoom:       zoom,
		Aspect:     aspect,
		Near:       near,
		Far:        far,
	}
	c.Recalculate()
	return c
}

// Forward is the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	return mgl32.Vec3{
		-float32(math.Sin(float64(c.Yaw))) * cp,
		float32(math.Sin(float64(c.Pitch))),
		-float32(math.Cos(float64(c.Yaw))) * cp,
	}
}

// LookAt aims the camera at target.
func (c *Camera) LookAt(target mgl32.Vec3) {
	d := target.Sub(c.Position)
	if d.Len() == 0 {
		return
	}
	d = d.Normalize()
	c.Pitch = float32(math.Asin(float64(d[1])))
	c.Yaw = float32(math.Atan2(float64(-d[0]), float64(-d[2])))
	c.clampPitch()
}

// Rotate adds to yaw and pitch, keeping pitch short of straight up or down.
func (c *Camera) Rotate(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch += dPitch
	c.clampPitch()
}

func (c *Camera) clampPitch() {
	c.Pitch = mgl32.Clamp(c.Pitch, -maxPitch, maxPitch)
}

// SetAspect updates the aspect ratio, ignoring degenerate sizes.
func (c *Camera) SetAspect(width, height int) {
	if width > 0 && height > 0 {
		c.Aspect = float32(width) / float32(height)
	}
}

// Recalculate rebuilds the view and projection matrices and the frustum
// planes from the current fields.
func (c *Camera) Recalculate() {
	if c.Aspect <= 0 {
		c.Aspect = 1
	}
	c.view = mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})

	switch c.Projection {
	case Orthographic:
		h := c.Zoom
		w := h * c.Aspect
		c.proj = mgl32.Ortho(-w, w, -h, h, c.Near, c.Far)
	default:
		c.proj = mgl32.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
	}
	c.frustum = geom.FrustumFromMatrix(c.proj.Mul4(c.view))
}

func (c *Camera) View() mgl32.Mat4 { return c.view }

func (c *Camera) ProjectionMatrix() mgl32.Mat4 { return c.proj }

func (c *Camera) ViewProjection() mgl32.Mat4 { return c.proj.Mul4(c.view) }

// Frustum is the frustum computed by the last Recalculate.
func (c *Camera) Frustum() geom.Frustum { return c.frustum }

// Distance is the scale the floor-plan grid adapts to: the zoom for an
// orthographic camera, the height above the floor for a perspective one.
func (c *Camera) Distance() float32 {
	if c.Projection == Orthographic {
		return c.Zoom
	}
	return float32(math.Abs(float64(c.Position[1])))
}

// Project maps a world point to pixel coordinates with the origin top-left.
// ok is false for points behind the camera.
func (c *Camera) Project(p mgl32.Vec3, width, height int) (mgl32.Vec2, bool) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return mgl32.Vec2{}, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	return mgl32.Vec2{
		(ndc[0]*0.5 + 0.5) * float32(width),
		(1 - (ndc[1]*0.5 + 0.5)) * float32(height),
	}, true
}
