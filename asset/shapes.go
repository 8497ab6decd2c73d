package asset

import "github.com/go-gl/mathgl/mgl32"

// Box generates an axis-aligned box centered on the origin, resting on y=0
// when floor is set.
func Box(name string, size mgl32.Vec3, color [4]float32, floor bool) *Asset3D {
	h := size.Mul(0.5)
	var base float32
	if floor {
		base = h.Y()
	}
	faces := []struct {
		n    mgl32.Vec3
		u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}

	vertices := make([]Vertex3D, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		start := uint32(len(vertices))
		center := mgl32.Vec3{f.n[0] * h[0], f.n[1]*h[1] + base, f.n[2] * h[2]}
		du := mgl32.Vec3{f.u[0] * h[0], f.u[1] * h[1], f.u[2] * h[2]}
		dv := mgl32.Vec3{f.v[0] * h[0], f.v[1] * h[1], f.v[2] * h[2]}
		corners := [4]struct {
			p  mgl32.Vec3
			uv [2]float32
		}{
			{center.Sub(du).Sub(dv), [2]float32{0, 1}},
			{center.Add(du).Sub(dv), [2]float32{1, 1}},
			{center.Add(du).Add(dv), [2]float32{1, 0}},
			{center.Sub(du).Add(dv), [2]float32{0, 0}},
		}
		for _, c := range corners {
			vertices = append(vertices, Vertex3D{Position: c.p, Normal: f.n, UV: c.uv})
		}
		indices = append(indices, start, start+1, start+2, start, start+2, start+3)
	}

	a := NewAsset3D(name, vertices, indices)
	a.AddSubmesh(nil, ColorMaterial(color), 0, uint32(len(indices)))
	return a
}

// Quad2D generates a w by h rectangle centered on the origin in the XY plane.
func Quad2D(name string, w, h float32, color [4]float32, tex *Texture) *Asset2D {
	hw, hh := w/2, h/2
	vertices := []Vertex2D{
		{Position: [2]float32{-hw, -hh}, UV: [2]float32{0, 1}},
		{Position: [2]float32{hw, -hh}, UV: [2]float32{1, 1}},
		{Position: [2]float32{hw, hh}, UV: [2]float32{1, 0}},
		{Position: [2]float32{-hw, hh}, UV: [2]float32{0, 0}},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	a := NewAsset2D(name, vertices, indices)
	a.AddSubmesh(tex, ColorMaterial(color), 0, 6)
	return a
}

// Footprint2D derives the floor-plan rectangle of a 3D asset: its x/z extent
// mapped to 2D with z flipped to -y.
func Footprint2D(name string, src *Asset3D, color [4]float32) *Asset2D {
	b := src.Bounds()
	w := b.Max.X() - b.Min.X()
	d := b.Max.Z() - b.Min.Z()
	q := Quad2D(name, w, d, color, nil)
	cx := (b.Max.X() + b.Min.X()) / 2
	cy := -(b.Max.Z() + b.Min.Z()) / 2
	for i := range q.Vertices {
		q.Vertices[i].Position[0] += cx
		q.Vertices[i].Position[1] += cy
	}
	q.ComputeBounds()
	return q
}
