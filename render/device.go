// Package render draws a scene.Scene each frame through a Device: shadow
// maps, a deferred geometry pass, additive lighting passes and overlays for
// the 3D view, and a sorted flat pass with labels for the floor plan.
package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/asset"
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/scene"
)

type Blend uint8

const (
	BlendNone Blend = iota
	BlendAlpha
	BlendAdditive
)

type Cull uint8

const (
	CullNone Cull = iota
	CullBack
	CullFront
)

type Fill uint8

const (
	FillSolid Fill = iota
	FillWire
)

type StencilFunc uint8

const (
	StencilAlways StencilFunc = iota
	StencilEqual
	StencilNotEqual
)

// Stencil configures the stencil test. With Write set, fragments that pass
// store Ref.
type Stencil struct {
	Enabled bool
	Func    StencilFunc
	Ref     uint8
	Write   bool
}

// State is the fixed-function state draws run with.
type State struct {
	Blend      Blend
	DepthTest  bool
	DepthWrite bool
	ColorWrite bool
	Cull       Cull
	FrontCCW   bool
	Fill       Fill
	LineWidth  float32
	Stencil    Stencil
}

// BaselineState is the state every frame starts from: no blending or
// stencil, depth test and write on, solid fill, back faces culled with
// counter-clockwise front faces.
func BaselineState() State {
	return State{
		DepthTest:  true,
		DepthWrite: true,
		ColorWrite: true,
		Cull:       CullBack,
		FrontCCW:   true,
		Fill:       FillSolid,
		LineWidth:  1,
	}
}

// Program selects the shading a Draw or Light call runs.
type Program uint8

const (
	// ProgramShadow writes depth only.
	ProgramShadow Program = iota
	// ProgramGeometry fills the GBuffer attachments.
	ProgramGeometry
	// ProgramFlat draws a single unlit color.
	ProgramFlat
	// ProgramPlan draws textured floor-plan models and their ids.
	ProgramPlan
	ProgramAmbient
	ProgramDirect
	ProgramPoint
	ProgramSpot
)

var programNames = [...]string{"shadow", "geometry", "flat", "plan", "ambient", "direct", "point", "spot"}

func (p Program) String() string {
	if int(p) < len(programNames) {
		return programNames[p]
	}
	return "unknown"
}

// Surface is the lighting flag stored in the w channel of the GBuffer
// normal attachment.
type Surface uint8

const (
	SurfaceNone Surface = iota
	SurfaceLit
	SurfaceNoShadow
	SurfaceUnlit
)

// ClearFlags selects what Clear resets.
type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil

	ClearAll = ClearColor | ClearDepth | ClearStencil
)

// TargetDesc describes a render target for CreateTarget. Shadow targets
// have no color attachments; point-light shadows have six layers.
type TargetDesc struct {
	Name        string
	Width       int
	Height      int
	Attachments []scene.Format
	Depth       bool
	Stencil     bool
	Layers      int
	Samples     int
	Clear       mgl32.Vec4
}

// DrawCall draws one prepared mesh.
type DrawCall struct {
	Program  Program
	Mesh     uint32
	Model    mgl32.Mat4
	ViewProj mgl32.Mat4
	ID       object.ColorID
	// Color is the flat color for ProgramFlat and a tint otherwise.
	Color   mgl32.Vec4
	Surface Surface
}

// ShadowSource is the shadow map a lighting pass samples. An empty Target
// samples the 1x1 white texture: fully lit.
type ShadowSource struct {
	Target string
	// Spaces holds the light view-projection per layer: one for direct and
	// spot lights, six cube faces for point lights.
	Spaces []mgl32.Mat4
	Bias   float32
}

// LightPass is one full-screen lighting pass over a GBuffer.
type LightPass struct {
	Program     Program
	Source      string
	Color       mgl32.Vec3
	Ambient     mgl32.Vec3
	// Background is written by the ambient pass where nothing was drawn.
	Background  mgl32.Vec4
	Direction   mgl32.Vec3
	Position    mgl32.Vec3
	Attenuation mgl32.Vec3
	Range       float32
	InnerCos    float32
	OuterCos    float32
	Shadow      ShadowSource
}

// Device is what the renderer needs from a graphics backend. Methods that
// draw act on the bound target and the current State.
type Device interface {
	Size() (width, height int)

	CreateTarget(desc TargetDesc) error
	DestroyTarget(name string)
	HasTarget(name string) bool
	BindTarget(name string, layer int) error
	// Clear resets the bound target. The first color attachment takes
	// color, the others zero.
	Clear(flags ClearFlags, color mgl32.Vec4)
	SetState(s State)

	// Upload3D and Upload2D copy host geometry into the device and return
	// a non-zero handle.
	Upload3D(a *asset.Asset3D) (uint32, error)
	Upload2D(a *asset.Asset2D) (uint32, error)

	Draw(call DrawCall)
	DrawLines(lines []object.Line, color mgl32.Vec4, viewProj mgl32.Mat4)
	DrawNormals(mesh uint32, model, viewProj mgl32.Mat4, length float32, color mgl32.Vec4)
	Light(pass LightPass)

	Text(s string, x, y int, color mgl32.Vec4)
	MeasureText(s string) (width, height int)

	ReadPixel(target string, attachment, x, y int) (color.RGBA, error)
}
