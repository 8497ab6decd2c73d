package object

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/geom"
)

// DefaultShadowSize is the edge length of a shadow map in texels.
const DefaultShadowSize = 1024

// Light holds what every light kind shares.
type Light struct {
	Name        string
	Color       mgl32.Vec3
	Intensity   float32
	Enabled     bool
	CastShadows bool
	ShadowSize  int
	ShadowBias  float32
}

func newLight(name string) Light {
	return Light{
		Name:        name,
		Color:       mgl32.Vec3{1, 1, 1},
		Intensity:   1,
		Enabled:     true,
		CastShadows: true,
		ShadowSize:  DefaultShadowSize,
		ShadowBias:  0.005,
	}
}

// Radiance is color scaled by intensity.
func (l *Light) Radiance() mgl32.Vec3 {
	return l.Color.Mul(l.Intensity)
}

// DirectLight lights the whole scene from one direction. Ambient is the
// scene-wide ambient term applied by the ambient pass.
type DirectLight struct {
	Light
	Direction mgl32.Vec3
	Ambient   mgl32.Vec3
}

func NewDirectLight(name string) *DirectLight {
	return &DirectLight{
		Light:     newLight(name),
		Direction: mgl32.Vec3{-0.3, -1, -0.2}.Normalize(),
		Ambient:   mgl32.Vec3{0.2, 0.2, 0.2},
	}
}

// LightSpace fits an orthographic shadow projection around bounds, looking
// along the light direction.
func (d *DirectLight) LightSpace(bounds geom.AABB) mgl32.Mat4 {
	s := bounds.Sphere()
	r := max(s.Radius, 0.001)
	dir := d.Direction.Normalize()
	eye := s.Center.Sub(dir.Mul(r * 2))
	view := mgl32.LookAtV(eye, s.Center, upFor(dir))
	proj := mgl32.Ortho(-r, r, -r, r, 0.01, r*4)
	return proj.Mul4(view)
}

// PointLight radiates in every direction with distance attenuation.
type PointLight struct {
	Light
	Position mgl32.Vec3
	Range    float32
}

func NewPointLight(name string) *PointLight {
	return &PointLight{
		Light: newLight(name),
		Range: 10,
	}
}

// Attenuation returns the constant, linear and quadratic factors for the
// light's range.
func (p *PointLight) Attenuation() mgl32.Vec3 {
	return attenuation(p.Range)
}

// Sphere is the volume the light reaches, used for culling.
func (p *PointLight) Sphere() geom.Sphere {
	return geom.Sphere{Center: p.Position, Radius: p.Range}
}

var cubeFaces = [6][2]mgl32.Vec3{
	{{1, 0, 0}, {0, -1, 0}},
	{{-1, 0, 0}, {0, -1, 0}},
	{{0, 1, 0}, {0, 0, 1}},
	{{0, -1, 0}, {0, 0, -1}},
	{{0, 0, 1}, {0, -1, 0}},
	{{0, 0, -1}, {0, -1, 0}},
}

// FaceSpace returns the view-projection for one of the six cube faces of
// the light's shadow map, in +X, -X, +Y, -Y, +Z, -Z order.
func (p *PointLight) FaceSpace(face int) mgl32.Mat4 {
	f := cubeFaces[face]
	view := mgl32.LookAtV(p.Position, p.Position.Add(f[0]), f[1])
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.05, max(p.Range, 0.1))
	return proj.Mul4(view)
}

// SpotLight is a cone of light. Cutoffs are half-angles in radians.
type SpotLight struct {
	Light
	Position    mgl32.Vec3
	Direction   mgl32.Vec3
	Range       float32
	InnerCutoff float32
	OuterCutoff float32
}

func NewSpotLight(name string) *SpotLight {
	return &SpotLight{
		Light:       newLight(name),
		Direction:   mgl32.Vec3{0, -1, 0},
		Range:       15,
		InnerCutoff: mgl32.DegToRad(20),
		OuterCutoff: mgl32.DegToRad(30),
	}
}

func (s *SpotLight) Attenuation() mgl32.Vec3 {
	return attenuation(s.Range)
}

// Sphere bounds the cone for culling.
func (s *SpotLight) Sphere() geom.Sphere {
	return geom.Sphere{Center: s.Position, Radius: s.Range}
}

// LightSpace is the perspective shadow projection covering the outer cone.
func (s *SpotLight) LightSpace() mgl32.Mat4 {
	dir := s.Direction.Normalize()
	view := mgl32.LookAtV(s.Position, s.Position.Add(dir), upFor(dir))
	fov := min(s.OuterCutoff*2+mgl32.DegToRad(2), mgl32.DegToRad(170))
	proj := mgl32.Perspective(fov, 1, 0.05, max(s.Range, 0.1))
	return proj.Mul4(view)
}

// attenuation approximates the usual range table: full strength at the
// source and about 1/75 at the range.
func attenuation(r float32) mgl32.Vec3 {
	r = max(r, 0.001)
	return mgl32.Vec3{1, 4.5 / r, 75 / (r * r)}
}

// AttenuationAt evaluates 1 / (c + l*d + q*d^2).
func AttenuationAt(att mgl32.Vec3, d float32) float32 {
	return 1 / (att[0] + att[1]*d + att[2]*d*d)
}

func upFor(dir mgl32.Vec3) mgl32.Vec3 {
	if math.Abs(float64(dir[1])) > 0.99 {
		return mgl32.Vec3{0, 0, -1}
	}
	return mgl32.Vec3{0, 1, 0}
}
