// Package soft is a software render.Device. It rasterizes into float
// attachments held in memory, which makes frames inspectable from tests and
// lets the editor blit them without a GPU pipeline of its own.
package soft

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/asset"
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/render"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

var (
	ErrNoTarget     = errors.New("soft: no such target")
	ErrNoAttachment = errors.New("soft: no such attachment")
	ErrOutOfBounds  = errors.New("soft: pixel out of bounds")
)

// layer is one image of a target: a color plane per attachment plus
// optional depth and stencil planes.
type layer struct {
	color   [][]mgl32.Vec4
	depth   []float32
	stencil []uint8
}

type target struct {
	desc   render.TargetDesc
	layers []*layer
}

func newTarget(desc render.TargetDesc) *target {
	n := desc.Width * desc.Height
	t := &target{desc: desc, layers: make([]*layer, max(desc.Layers, 1))}
	for i := range t.layers {
		l := &layer{color: make([][]mgl32.Vec4, len(desc.Attachments))}
		for a := range l.color {
			l.color[a] = make([]mgl32.Vec4, n)
		}
		if desc.Depth {
			l.depth = make([]float32, n)
			for p := range l.depth {
				l.depth[p] = 1
			}
		}
		if desc.Stencil {
			l.stencil = make([]uint8, n)
		}
		t.layers[i] = l
	}
	return t
}

type submesh struct {
	texture *asset.Texture
	diffuse mgl32.Vec4
	offset  int
	count   int
}

// mesh is the device copy of an asset. 2D meshes have z=0 and +Z normals.
type mesh struct {
	name      string
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	indices   []uint32
	submeshes []submesh
}

// Device renders on the CPU. It is not safe for concurrent use.
type Device struct {
	width  int
	height int

	targets map[string]*target
	meshes  []*mesh

	bound     *target
	boundName string
	layer     int
	state     render.State

	face  font.Face
	trace []Command
}

// New returns a device whose scene-sized targets are width by height.
func New(width, height int) *Device {
	return &Device{
		width:   width,
		height:  height,
		targets: make(map[string]*target),
		state:   render.BaselineState(),
		face:    basicfont.Face7x13,
	}
}

func (d *Device) Size() (int, int) { return d.width, d.height }

// Resize changes the size reported to the renderer, which recreates its
// targets on the next frame.
func (d *Device) Resize(width, height int) {
	d.width, d.height = max(width, 1), max(height, 1)
}

func (d *Device) CreateTarget(desc render.TargetDesc) error {
	if desc.Name == "" || desc.Width <= 0 || desc.Height <= 0 {
		return fmt.Errorf("soft: invalid target %q (%dx%d)", desc.Name, desc.Width, desc.Height)
	}
	d.targets[desc.Name] = newTarget(desc)
	d.record(Command{Op: OpCreate, Target: desc.Name, Layer: max(desc.Layers, 1)})
	return nil
}

func (d *Device) DestroyTarget(name string) {
	if d.targets[name] == d.bound {
		d.bound, d.boundName = nil, ""
	}
	delete(d.targets, name)
}

func (d *Device) HasTarget(name string) bool {
	_, ok := d.targets[name]
	return ok
}

func (d *Device) BindTarget(name string, layer int) error {
	t, ok := d.targets[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoTarget, name)
	}
	if layer < 0 || layer >= len(t.layers) {
		return fmt.Errorf("%w: %q has no layer %d", ErrNoTarget, name, layer)
	}
	d.bound, d.boundName, d.layer = t, name, layer
	d.record(Command{Op: OpBind, Target: name, Layer: layer})
	return nil
}

func (d *Device) Clear(flags render.ClearFlags, c mgl32.Vec4) {
	d.record(Command{Op: OpClear, Target: d.boundName, Layer: d.layer, Clear: flags})
	l := d.current()
	if l == nil {
		return
	}
	if flags&render.ClearColor != 0 {
		for a, plane := range l.color {
			v := mgl32.Vec4{}
			if a == 0 {
				v = c
			}
			for i := range plane {
				plane[i] = v
			}
		}
	}
	if flags&render.ClearDepth != 0 {
		for i := range l.depth {
			l.depth[i] = 1
		}
	}
	if flags&render.ClearStencil != 0 {
		clear(l.stencil)
	}
}

func (d *Device) SetState(s render.State) {
	if s.LineWidth <= 0 {
		s.LineWidth = 1
	}
	d.state = s
	d.record(Command{Op: OpState, Target: d.boundName, State: s})
}

func (d *Device) current() *layer {
	if d.bound == nil {
		return nil
	}
	return d.bound.layers[d.layer]
}

func (d *Device) Upload3D(a *asset.Asset3D) (uint32, error) {
	if a.Ready() {
		return 0, fmt.Errorf("upload %s: %w", a.Name, asset.ErrNotResident)
	}
	if err := a.Validate(); err != nil {
		return 0, err
	}
	m := &mesh{name: a.Name, indices: append([]uint32(nil), a.Indices...)}
	for _, v := range a.Vertices {
		m.positions = append(m.positions, mgl32.Vec3(v.Position))
		m.normals = append(m.normals, mgl32.Vec3(v.Normal))
		m.uvs = append(m.uvs, mgl32.Vec2(v.UV))
	}
	m.submeshes = submeshes(a.Submeshes(), len(m.indices))
	return d.addMesh(m), nil
}

func (d *Device) Upload2D(a *asset.Asset2D) (uint32, error) {
	if a.Ready() {
		return 0, fmt.Errorf("upload %s: %w", a.Name, asset.ErrNotResident)
	}
	if err := a.Validate(); err != nil {
		return 0, err
	}
	m := &mesh{name: a.Name, indices: append([]uint32(nil), a.Indices...)}
	for _, v := range a.Vertices {
		m.positions = append(m.positions, mgl32.Vec3{v.Position[0], v.Position[1], 0})
		m.normals = append(m.normals, mgl32.Vec3{0, 0, 1})
		m.uvs = append(m.uvs, mgl32.Vec2(v.UV))
	}
	m.submeshes = submeshes(a.Submeshes(), len(m.indices))
	return d.addMesh(m), nil
}

// submeshes converts draw ranges, covering the whole index buffer with a
// default material when the asset has none.
func submeshes(in []asset.Submesh, indices int) []submesh {
	if len(in) == 0 {
		def := asset.DefaultMaterial()
		return []submesh{{diffuse: mgl32.Vec4(def.Diffuse), count: indices}}
	}
	out := make([]submesh, len(in))
	for i, s := range in {
		out[i] = submesh{
			texture: s.Texture,
			diffuse: mgl32.Vec4(s.Material.Diffuse),
			offset:  int(s.Offset),
			count:   int(s.Count),
		}
	}
	return out
}

// addMesh stores m and returns its handle, the index plus one.
func (d *Device) addMesh(m *mesh) uint32 {
	d.meshes = append(d.meshes, m)
	return uint32(len(d.meshes))
}

func (d *Device) lookup(h uint32) *mesh {
	if h == 0 || int(h) > len(d.meshes) {
		return nil
	}
	return d.meshes[h-1]
}

// Meshes is the number of uploaded meshes.
func (d *Device) Meshes() int { return len(d.meshes) }

func (d *Device) ReadPixel(name string, attachment, x, y int) (color.RGBA, error) {
	t, ok := d.targets[name]
	if !ok {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrNoTarget, name)
	}
	if attachment < 0 || attachment >= len(t.desc.Attachments) {
		return color.RGBA{}, fmt.Errorf("%w: %q attachment %d", ErrNoAttachment, name, attachment)
	}
	if x < 0 || y < 0 || x >= t.desc.Width || y >= t.desc.Height {
		return color.RGBA{}, fmt.Errorf("%w: (%d, %d) in %q", ErrOutOfBounds, x, y, name)
	}
	return toRGBA(t.layers[0].color[attachment][y*t.desc.Width+x]), nil
}

func toRGBA(c mgl32.Vec4) color.RGBA {
	return color.RGBA{R: toByte(c[0]), G: toByte(c[1]), B: toByte(c[2]), A: toByte(c[3])}
}

func toByte(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}

var _ render.Device = (*Device)(nil)

func (d *Device) DrawNormals(h uint32, model, viewProj mgl32.Mat4, length float32, c mgl32.Vec4) {
	d.record(Command{Op: OpNormals, Target: d.boundName, Mesh: h})
	m := d.lookup(h)
	if m == nil {
		return
	}
	normal := normalMatrix(model)
	lines := make([]object.Line, len(m.positions))
	for i, p := range m.positions {
		wp := mgl32.TransformCoordinate(p, model)
		n := normal.Mul3x1(m.normals[i])
		if n.Len() > 0 {
			n = n.Normalize()
		}
		lines[i] = object.Line{From: wp, To: wp.Add(n.Mul(length))}
	}
	d.lines(lines, c, viewProj)
}
