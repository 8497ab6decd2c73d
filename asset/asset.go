// Package asset holds the static geometry definitions shared by models:
// vertex and index buffers plus per-material draw ranges.
package asset

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/geom"
)

var (
	// ErrCorrupt is returned when a binary asset stream is malformed.
	ErrCorrupt = errors.New("asset: corrupt data")
	// ErrNotResident is returned when host geometry was released by RenderReady.
	ErrNotResident = errors.New("asset: geometry no longer resident")
)

// Vertex3D is the interleaved vertex layout for 3D assets.
type Vertex3D struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// Vertex2D is the interleaved vertex layout for 2D assets.
type Vertex2D struct {
	Position [2]float32
	UV       [2]float32
}

// Material is a fixed-size record so it can be written to the binary format as is.
type Material struct {
	Ambient   [4]float32
	Diffuse   [4]float32
	Specular  [4]float32
	Shininess float32
	Opacity   float32
}

// DefaultMaterial is plain light grey.
func DefaultMaterial() Material {
	return Material{
		Ambient:   [4]float32{0.2, 0.2, 0.2, 1},
		Diffuse:   [4]float32{0.8, 0.8, 0.8, 1},
		Specular:  [4]float32{0, 0, 0, 1},
		Shininess: 1,
		Opacity:   1,
	}
}

// ColorMaterial returns a material with the given diffuse color.
func ColorMaterial(c [4]float32) Material {
	m := DefaultMaterial()
	m.Diffuse = c
	m.Ambient = [4]float32{c[0] * 0.25, c[1] * 0.25, c[2] * 0.25, c[3]}
	m.Opacity = c[3]
	return m
}

// Submesh is one per-material draw range.
type Submesh struct {
	Texture  *Texture
	Material Material
	Offset   uint32
	Count    uint32
}

// geometry is the part shared by 2D and 3D assets: index buffer and the four
// parallel per-material arrays.
type geometry struct {
	Name      string
	Indices   []uint32
	Textures  []*Texture
	Materials []Material
	Offsets   []uint32
	Counts    []uint32

	handle uint32
	ready  bool
}

// AddSubmesh appends a draw range. The four parallel arrays always grow together.
func (g *geometry) AddSubmesh(tex *Texture, mat Material, offset, count uint32) {
	g.Textures = append(g.Textures, tex)
	g.Materials = append(g.Materials, mat)
	g.Offsets = append(g.Offsets, offset)
	g.Counts = append(g.Counts, count)
}

// Submeshes returns the per-material draw ranges.
func (g *geometry) Submeshes() []Submesh {
	out := make([]Submesh, len(g.Materials))
	for i := range g.Materials {
		out[i] = Submesh{
			Texture:  g.Textures[i],
			Material: g.Materials[i],
			Offset:   g.Offsets[i],
			Count:    g.Counts[i],
		}
	}
	return out
}

func (g *geometry) checkParallel() error {
	n := len(g.Materials)
	if len(g.Textures) != n || len(g.Offsets) != n || len(g.Counts) != n {
		return fmt.Errorf("%w: %q has mismatched material arrays", ErrCorrupt, g.Name)
	}
	for i := 0; i < n; i++ {
		if uint64(g.Offsets[i])+uint64(g.Counts[i]) > uint64(len(g.Indices)) && !g.ready {
			return fmt.Errorf("%w: %q submesh %d out of range", ErrCorrupt, g.Name, i)
		}
	}
	return nil
}

// RenderHandle is the renderer resource prepared for this asset, 0 if none.
func (g *geometry) RenderHandle() uint32 { return g.handle }

// SetRenderHandle records the prepared renderer resource.
func (g *geometry) SetRenderHandle(h uint32) { g.handle = h }

// Ready reports whether host geometry has been released.
func (g *geometry) Ready() bool { return g.ready }

// IndexCount is the total number of indices across submeshes.
func (g *geometry) IndexCount() int {
	var n uint32
	for _, c := range g.Counts {
		n += c
	}
	return int(n)
}

// Asset3D is an immutable-after-load 3D mesh definition.
type Asset3D struct {
	geometry
	Vertices []Vertex3D

	bounds    geom.AABB
	maxVertex mgl32.Vec3
}

// NewAsset3D builds an asset from raw buffers and computes its bounds.
func NewAsset3D(name string, vertices []Vertex3D, indices []uint32) *Asset3D {
	a := &Asset3D{Vertices: vertices}
	a.Name = name
	a.Indices = indices
	a.ComputeBounds()
	return a
}

// ComputeBounds recalculates the bounding box and max-length vertex from the
// vertex buffer. It is a no-op once the asset is render ready.
func (a *Asset3D) ComputeBounds() {
	if a.ready {
		return
	}
	a.bounds = geom.EmptyAABB()
	a.maxVertex = mgl32.Vec3{}
	var best float32
	for _, v := range a.Vertices {
		p := mgl32.Vec3(v.Position)
		a.bounds.Extend(p)
		if l := p.Len(); l > best {
			best = l
			a.maxVertex = p
		}
	}
	if len(a.Vertices) == 0 {
		a.bounds = geom.AABB{}
	}
}

// Bounds is the local-space bounding box.
func (a *Asset3D) Bounds() geom.AABB { return a.bounds }

// MaxVertex is the vertex furthest from the local origin.
func (a *Asset3D) MaxVertex() mgl32.Vec3 { return a.maxVertex }

// Validate checks the buffer invariants.
func (a *Asset3D) Validate() error {
	if err := a.checkParallel(); err != nil {
		return err
	}
	if a.ready {
		return nil
	}
	for _, idx := range a.Indices {
		if int(idx) >= len(a.Vertices) {
			return fmt.Errorf("%w: %q index %d out of range", ErrCorrupt, a.Name, idx)
		}
	}
	return nil
}

// RenderReady releases host geometry once the renderer holds its own copy.
// Bounds, max vertex and draw ranges remain.
func (a *Asset3D) RenderReady() {
	if a.ready {
		return
	}
	a.ComputeBounds()
	a.ready = true
	a.Vertices = nil
	a.Indices = nil
}

// Asset2D is an immutable-after-load 2D mesh definition, used by floor-plan models.
type Asset2D struct {
	geometry
	Vertices []Vertex2D

	bounds geom.AABB
}

// NewAsset2D builds a 2D asset and computes its bounds.
func NewAsset2D(name string, vertices []Vertex2D, indices []uint32) *Asset2D {
	a := &Asset2D{Vertices: vertices}
	a.Name = name
	a.Indices = indices
	a.ComputeBounds()
	return a
}

func (a *Asset2D) ComputeBounds() {
	if a.ready {
		return
	}
	a.bounds = geom.EmptyAABB()
	for _, v := range a.Vertices {
		a.bounds.Extend(mgl32.Vec3{v.Position[0], v.Position[1], 0})
	}
	if len(a.Vertices) == 0 {
		a.bounds = geom.AABB{}
	}
}

// Bounds is the local-space bounding box with zero depth.
func (a *Asset2D) Bounds() geom.AABB { return a.bounds }

func (a *Asset2D) Validate() error {
	if err := a.checkParallel(); err != nil {
		return err
	}
	if a.ready {
		return nil
	}
	for _, idx := range a.Indices {
		if int(idx) >= len(a.Vertices) {
			return fmt.Errorf("%w: %q index %d out of range", ErrCorrupt, a.Name, idx)
		}
	}
	return nil
}

// RenderReady releases host geometry.
func (a *Asset2D) RenderReady() {
	if a.ready {
		return
	}
	a.ComputeBounds()
	a.ready = true
	a.Vertices = nil
	a.Indices = nil
}
