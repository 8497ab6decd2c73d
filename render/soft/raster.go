package soft

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/render"
)

// vertex is a clip-space position with the attributes interpolated across
// a triangle.
type vertex struct {
	clip   mgl32.Vec4
	world  mgl32.Vec3
	normal mgl32.Vec3
	uv     mgl32.Vec2
}

func lerpVertex(a, b vertex, t float32) vertex {
	return vertex{
		clip:   a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
		world:  a.world.Add(b.world.Sub(a.world).Mul(t)),
		normal: a.normal.Add(b.normal.Sub(a.normal).Mul(t)),
		uv:     a.uv.Add(b.uv.Sub(a.uv).Mul(t)),
	}
}

// screen is a vertex after the perspective divide. Attributes are stored
// divided by w for perspective-correct interpolation.
type screen struct {
	x, y, z float32
	invW    float32
	world   mgl32.Vec3
	normal  mgl32.Vec3
	uv      mgl32.Vec2
}

// fragment is what a program shades.
type fragment struct {
	x, y   int
	depth  float32
	world  mgl32.Vec3
	normal mgl32.Vec3
	uv     mgl32.Vec2
}

const nearEpsilon = 1e-5

// clipNear clips a polygon against z >= -w, the near plane in GL clip space.
func clipNear(poly []vertex) []vertex {
	out := make([]vertex, 0, len(poly)+2)
	dist := func(v vertex) float32 { return v.clip[2] + v.clip[3] }
	for i, cur := range poly {
		prev := poly[(i+len(poly)-1)%len(poly)]
		dc, dp := dist(cur), dist(prev)
		if dc >= 0 {
			if dp < 0 {
				out = append(out, lerpVertex(prev, cur, dp/(dp-dc)))
			}
			out = append(out, cur)
		} else if dp >= 0 {
			out = append(out, lerpVertex(prev, cur, dp/(dp-dc)))
		}
	}
	return out
}

func (d *Device) toScreen(v vertex, w, h int) screen {
	iw := 1 / max(v.clip[3], nearEpsilon)
	return screen{
		x:      (v.clip[0]*iw*0.5 + 0.5) * float32(w),
		y:      (1 - (v.clip[1]*iw*0.5 + 0.5)) * float32(h),
		z:      v.clip[2]*iw*0.5 + 0.5,
		invW:   iw,
		world:  v.world.Mul(iw),
		normal: v.normal.Mul(iw),
		uv:     v.uv.Mul(iw),
	}
}

// triangle clips, culls and rasterizes one triangle, calling shade for
// every covered pixel center.
func (d *Device) triangle(tri [3]vertex, shade func(f fragment)) {
	t := d.bound.desc
	poly := clipNear(tri[:])
	if len(poly) < 3 {
		return
	}
	pts := make([]screen, len(poly))
	for i, v := range poly {
		pts[i] = d.toScreen(v, t.Width, t.Height)
	}

	// facing from the NDC winding; screen y points down so the sign flips
	area := polyArea(pts)
	front := area < 0
	if !d.state.FrontCCW {
		front = !front
	}
	switch d.state.Cull {
	case render.CullBack:
		if !front {
			return
		}
	case render.CullFront:
		if front {
			return
		}
	}

	if d.state.Fill == render.FillWire {
		for i := range pts {
			d.segment(pts[i], pts[(i+1)%len(pts)], shade)
		}
		return
	}
	for i := 1; i+1 < len(pts); i++ {
		d.fill(pts[0], pts[i], pts[i+1], shade)
	}
}

func polyArea(p []screen) float32 {
	var a float32
	for i := range p {
		j := (i + 1) % len(p)
		a += p[i].x*p[j].y - p[j].x*p[i].y
	}
	return a / 2
}

func edge(a, b screen, x, y float32) float32 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

func (d *Device) fill(a, b, c screen, shade func(f fragment)) {
	t := d.bound.desc
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	minX := max(int(math.Floor(float64(min(a.x, b.x, c.x)))), 0)
	maxX := min(int(math.Ceil(float64(max(a.x, b.x, c.x)))), t.Width-1)
	minY := max(int(math.Floor(float64(min(a.y, b.y, c.y)))), 0)
	maxY := min(int(math.Ceil(float64(max(a.y, b.y, c.y)))), t.Height-1)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(b, c, px, py) / area
			w1 := edge(c, a, px, py) / area
			w2 := edge(a, b, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			shade(interpolate(x, y, [3]screen{a, b, c}, [3]float32{w0, w1, w2}))
		}
	}
}

func interpolate(x, y int, p [3]screen, w [3]float32) fragment {
	f := fragment{x: x, y: y}
	var invW float32
	for i := range p {
		f.depth += p[i].z * w[i]
		invW += p[i].invW * w[i]
		f.world = f.world.Add(p[i].world.Mul(w[i]))
		f.normal = f.normal.Add(p[i].normal.Mul(w[i]))
		f.uv = f.uv.Add(p[i].uv.Mul(w[i]))
	}
	if invW != 0 {
		f.world = f.world.Mul(1 / invW)
		f.normal = f.normal.Mul(1 / invW)
		f.uv = f.uv.Mul(1 / invW)
	}
	return f
}

// segment draws a line LineWidth pixels wide between two screen points.
func (d *Device) segment(a, b screen, shade func(f fragment)) {
	t := d.bound.desc
	dx, dy := b.x-a.x, b.y-a.y
	steps := int(math.Ceil(float64(max(abs32(dx), abs32(dy)))))
	steps = max(steps, 1)
	half := int(d.state.LineWidth / 2)

	for i := 0; i <= steps; i++ {
		s := float32(i) / float32(steps)
		cx := int(math.Floor(float64(a.x + dx*s)))
		cy := int(math.Floor(float64(a.y + dy*s)))
		w := [3]float32{1 - s, s, 0}
		for oy := -half; oy <= half; oy++ {
			for ox := -half; ox <= half; ox++ {
				x, y := cx+ox, cy+oy
				if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
					continue
				}
				shade(interpolate(x, y, [3]screen{a, b, a}, w))
			}
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// fragmentTests runs the depth and stencil tests for f and applies their
// writes. It reports whether color may be written.
func (d *Device) fragmentTests(l *layer, f fragment) bool {
	i := f.y*d.bound.desc.Width + f.x
	st := d.state

	if st.Stencil.Enabled && l.stencil != nil {
		v := l.stencil[i]
		switch st.Stencil.Func {
		case render.StencilEqual:
			if v != st.Stencil.Ref {
				return false
			}
		case render.StencilNotEqual:
			if v == st.Stencil.Ref {
				return false
			}
		}
	}
	if st.DepthTest && l.depth != nil {
		if f.depth < 0 || f.depth > 1 || f.depth >= l.depth[i] {
			return false
		}
		if st.DepthWrite {
			l.depth[i] = f.depth
		}
	}
	if st.Stencil.Enabled && st.Stencil.Write && l.stencil != nil {
		l.stencil[i] = st.Stencil.Ref
	}
	return st.ColorWrite
}

// blend writes src into attachment 0 using the current blend mode.
func (d *Device) blend(plane []mgl32.Vec4, i int, src mgl32.Vec4) {
	switch d.state.Blend {
	case render.BlendAlpha:
		a := src[3]
		dst := plane[i]
		out := src.Vec3().Mul(a).Add(dst.Vec3().Mul(1 - a))
		plane[i] = out.Vec4(a + dst[3]*(1-a))
	case render.BlendAdditive:
		plane[i] = plane[i].Add(src)
	default:
		plane[i] = src
	}
}

func normalMatrix(model mgl32.Mat4) mgl32.Mat3 {
	m := model.Mat3()
	if m.Det() == 0 {
		return m
	}
	return m.Inv().Transpose()
}

// Draw runs call.Program over every submesh of the mesh into the bound
// target.
func (d *Device) Draw(call render.DrawCall) {
	d.record(Command{Op: OpDraw, Target: d.boundName, Layer: d.layer, Program: call.Program, Mesh: call.Mesh, ID: call.ID, State: d.state})
	m := d.lookup(call.Mesh)
	l := d.current()
	if m == nil || l == nil {
		return
	}
	mvp := call.ViewProj.Mul4(call.Model)
	normal := normalMatrix(call.Model)

	for _, sub := range m.submeshes {
		end := min(sub.offset+sub.count, len(m.indices))
		for i := sub.offset; i+3 <= end; i += 3 {
			var tri [3]vertex
			for k := range tri {
				idx := m.indices[i+k]
				p := m.positions[idx]
				tri[k] = vertex{
					clip:   mvp.Mul4x1(p.Vec4(1)),
					world:  mgl32.TransformCoordinate(p, call.Model),
					normal: normal.Mul3x1(m.normals[idx]),
					uv:     m.uvs[idx],
				}
			}
			d.triangle(tri, func(f fragment) {
				if d.fragmentTests(l, f) {
					d.shade(l, call, sub, f)
				}
			})
		}
	}
}

// shade writes the program's outputs for one fragment.
func (d *Device) shade(l *layer, call render.DrawCall, sub submesh, f fragment) {
	i := f.y*d.bound.desc.Width + f.x
	n := len(l.color)

	switch call.Program {
	case render.ProgramShadow:
		return
	case render.ProgramFlat:
		if n > 0 {
			d.blend(l.color[0], i, call.Color)
		}
		if n > 3 {
			l.color[3][i] = mgl32.Vec4{0, 0, 0, float32(call.Surface)}
		}
		return
	}

	tex := sub.texture.Sample(f.uv[0], f.uv[1])
	albedo := mgl32.Vec4{
		tex[0] * sub.diffuse[0] * call.Color[0],
		tex[1] * sub.diffuse[1] * call.Color[1],
		tex[2] * sub.diffuse[2] * call.Color[2],
		tex[3] * sub.diffuse[3] * call.Color[3],
	}

	if call.Program == render.ProgramPlan {
		if albedo[3] <= 0 {
			return
		}
		if n > 0 {
			d.blend(l.color[0], i, albedo)
		}
		if n > 1 {
			l.color[1][i] = call.ID.RGB().Vec4(1)
		}
		return
	}

	// geometry
	if n > 0 {
		l.color[0][i] = albedo
	}
	if n > 1 {
		l.color[1][i] = call.ID.RGB().Vec4(1)
	}
	if n > 2 {
		l.color[2][i] = f.world.Vec4(1)
	}
	if n > 3 {
		nrm := f.normal
		if nrm.Len() > 0 {
			nrm = nrm.Normalize()
		}
		l.color[3][i] = nrm.Vec4(float32(call.Surface))
	}
}

// DrawLines draws world-space segments in a flat color.
func (d *Device) DrawLines(lines []object.Line, c mgl32.Vec4, viewProj mgl32.Mat4) {
	d.record(Command{Op: OpLines, Target: d.boundName, Layer: d.layer, State: d.state, Count: len(lines)})
	d.lines(lines, c, viewProj)
}

func (d *Device) lines(lines []object.Line, c mgl32.Vec4, viewProj mgl32.Mat4) {
	l := d.current()
	if l == nil {
		return
	}
	t := d.bound.desc
	call := render.DrawCall{Program: render.ProgramFlat, Color: c, Surface: render.SurfaceUnlit}
	for _, ln := range lines {
		a := vertex{clip: viewProj.Mul4x1(ln.From.Vec4(1)), world: ln.From}
		b := vertex{clip: viewProj.Mul4x1(ln.To.Vec4(1)), world: ln.To}
		da, db := a.clip[2]+a.clip[3], b.clip[2]+b.clip[3]
		if da < 0 && db < 0 {
			continue
		}
		if da < 0 {
			a = lerpVertex(a, b, da/(da-db))
		} else if db < 0 {
			b = lerpVertex(b, a, db/(db-da))
		}
		d.segment(d.toScreen(a, t.Width, t.Height), d.toScreen(b, t.Width, t.Height), func(f fragment) {
			if d.fragmentTests(l, f) {
				d.shade(l, call, submesh{}, f)
			}
		})
	}
}
