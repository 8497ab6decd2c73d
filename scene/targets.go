package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/ecs"
)

var (
	// ErrUnknownTarget is returned for a render target of an unknown type.
	ErrUnknownTarget = errors.New("scene: unknown render target type")
	// ErrBadConstraints is returned when constraints3d has min > max on an axis.
	ErrBadConstraints = errors.New("scene: constraints3d min exceeds max")
)

// Names of the targets every scene has.
const (
	NoAATarget    = "NoAA"
	GBufferTarget = "GBuffer"
)

// TargetType is the kind of a render target.
type TargetType uint8

const (
	// TargetNoAA is the single-sampled forward/composite target. Attachment 1
	// holds object ids for floor-plan picking.
	TargetNoAA TargetType = iota
	// TargetMSAA is a multisampled forward target resolved into NoAA.
	TargetMSAA
	// TargetGBuffer is the deferred geometry target.
	TargetGBuffer
)

var targetTypeNames = [...]string{"NoAA", "MSAA", "GBuffer"}

func (t TargetType) String() string {
	if int(t) < len(targetTypeNames) {
		return targetTypeNames[t]
	}
	return fmt.Sprintf("TargetType(%d)", t)
}

// ParseTargetType maps a document name to a type.
func ParseTargetType(s string) (TargetType, error) {
	for i, name := range targetTypeNames {
		if name == s {
			return TargetType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// Format is the pixel format of a target attachment.
type Format uint8

const (
	RGBA8 Format = iota
	RGB8
	RGB32F
	RGBA32F
)

// GBuffer attachments.
const (
	AttachDiffuse = iota
	AttachID
	AttachPosition
	AttachNormal
)

// TargetSpec describes a render target the renderer must create.
type TargetSpec struct {
	Name         string
	Type         TargetType
	Clear        mgl32.Vec4
	Attachments  []Format
	DepthStencil bool
	Samples      int
}

// Layout returns the attachment formats for a target type.
func Layout(t TargetType) []Format {
	switch t {
	case TargetGBuffer:
		return []Format{RGBA8, RGB8, RGB32F, RGBA32F}
	default:
		return []Format{RGBA8, RGB8}
	}
}

func newTargetSpec(name string, t TargetType, clear mgl32.Vec4) TargetSpec {
	spec := TargetSpec{
		Name:         name,
		Type:         t,
		Clear:        clear,
		Attachments:  Layout(t),
		DepthStencil: true,
		Samples:      1,
	}
	if t == TargetMSAA {
		spec.Samples = 4
	}
	return spec
}

func defaultTargets() []TargetSpec {
	return []TargetSpec{
		newTargetSpec(NoAATarget, TargetNoAA, mgl32.Vec4{0.92, 0.92, 0.92, 1}),
		newTargetSpec(GBufferTarget, TargetGBuffer, mgl32.Vec4{0, 0, 0, 0}),
	}
}

// parseTargetSpec reads {"name", "type", "clearcolor"}. Type and clear color
// are required.
func parseTargetSpec(o ecs.Object) (TargetSpec, error) {
	typeName, err := o.RequireString("type")
	if err != nil {
		return TargetSpec{}, err
	}
	t, err := ParseTargetType(typeName)
	if err != nil {
		return TargetSpec{}, err
	}
	if !o.Has("clearcolor") {
		return TargetSpec{}, fmt.Errorf("render target %q: %w: %q", typeName, ecs.ErrMissingField, "clearcolor")
	}
	spec := newTargetSpec(o.String("name", typeName), t, o.Color("clearcolor", mgl32.Vec4{}))
	spec.Samples = o.Int("samples", spec.Samples)
	return spec, nil
}

func (t TargetSpec) serialize() ecs.Object {
	o := ecs.Object{"name": t.Name, "type": t.Type.String()}
	o.SetColor("clearcolor", t.Clear)
	if t.Type == TargetMSAA {
		o["samples"] = t.Samples
	}
	return o
}
