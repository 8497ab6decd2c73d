package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/floorplan/geom"
	"github.com/plus3/floorplan/object"
	"github.com/plus3/floorplan/scene"
)

var (
	normalColor = mgl32.Vec4{0.2, 0.4, 1, 1}
	boundsColor = mgl32.Vec4{0, 1, 0.3, 1}
	lightColor  = mgl32.Vec4{1, 0.9, 0.2, 1}
	axisColors  = [3]mgl32.Vec4{{1, 0.2, 0.2, 1}, {0.2, 1, 0.2, 1}, {0.2, 0.4, 1, 1}}
)

// boxEdges indexes the corners returned by geom.AABB.Corners.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

const circleSegments = 24

// overlays3D draws the debug overlays on top of the lit frame. Each kind is
// enabled per model or globally through Options.
func (r *Renderer) overlays3D(s *scene.Scene, cam *object.Camera) {
	st := BaselineState()
	st.DepthTest = false
	st.DepthWrite = false
	st.Cull = CullNone
	r.device.SetState(st)

	vp := cam.ViewProjection()
	var bounds []object.Line
	for _, m := range r.visible3d {
		if r.Opts.ShowNormals || m.ShowNormals {
			if mesh := r.mesh3D(m.Asset); mesh != 0 {
				length := max(m.LocalBounds().Size().Len()*0.05, 0.05)
				r.device.DrawNormals(mesh, m.Model(), vp, length, normalColor)
			}
		}
		mode := m.ShowBounds
		if mode == object.BoundsNone {
			mode = r.Opts.ShowBounds
		}
		switch mode {
		case object.BoundsSphere:
			bounds = appendSphere(bounds, m.Sphere())
		case object.BoundsAABB:
			bounds = appendBox(bounds, m.WorldBounds().Corners())
		case object.BoundsOOBB:
			bounds = appendBox(bounds, m.OOBB().Corners())
		}
	}
	if len(bounds) > 0 {
		r.device.DrawLines(bounds, boundsColor, vp)
	}

	if r.Opts.ShowLights {
		r.lightMarkers(s, vp)
	}
	r.gizmo3D(s, vp)
}

func (r *Renderer) lightMarkers(s *scene.Scene, vp mgl32.Mat4) {
	var lines []object.Line
	for _, l := range r.points {
		lines = appendCross(lines, l.Position, 0.25)
	}
	for _, l := range r.spots {
		lines = appendCross(lines, l.Position, 0.25)
		reach := min(l.Range, 2)
		dir := l.Direction.Normalize()
		lines = append(lines, object.Line{From: l.Position, To: l.Position.Add(dir.Mul(reach))})
	}
	if d := s.DirectLight(); d != nil && d.Enabled {
		var at mgl32.Vec3
		if b, ok := s.Bounds(); ok {
			at = b.Center().Add(mgl32.Vec3{0, b.Size()[1] * 0.5, 0})
		}
		lines = appendCross(lines, at, 0.5)
		lines = append(lines, object.Line{From: at, To: at.Add(d.Direction.Normalize())})
	}
	if len(lines) > 0 {
		r.device.DrawLines(lines, lightColor, vp)
	}
}

// gizmo3D draws the model axes of the model under transform.
func (r *Renderer) gizmo3D(s *scene.Scene, vp mgl32.Mat4) {
	id, ok := s.Transforming()
	if !ok {
		return
	}
	m := s.Model3D(id)
	if m == nil || !m.Enabled {
		return
	}
	reach := max(m.WorldBounds().Size().Len()*0.6, 0.5)
	for axis, col := range axisColors {
		var v mgl32.Vec3
		v[axis] = reach
		to := m.Position.Add(m.Rotation.Rotate(v))
		r.device.DrawLines([]object.Line{{From: m.Position, To: to}}, col, vp)
	}
}

func appendBox(lines []object.Line, c [8]mgl32.Vec3) []object.Line {
	for _, e := range boxEdges {
		lines = append(lines, object.Line{From: c[e[0]], To: c[e[1]]})
	}
	return lines
}

// appendSphere approximates s with three great circles.
func appendSphere(lines []object.Line, s geom.Sphere) []object.Line {
	point := func(axis int, a float64) mgl32.Vec3 {
		u, v := float32(math.Cos(a))*s.Radius, float32(math.Sin(a))*s.Radius
		var p mgl32.Vec3
		p[(axis+1)%3] = u
		p[(axis+2)%3] = v
		return s.Center.Add(p)
	}
	for axis := range 3 {
		for i := range circleSegments {
			a0 := 2 * math.Pi * float64(i) / circleSegments
			a1 := 2 * math.Pi * float64(i+1) / circleSegments
			lines = append(lines, object.Line{From: point(axis, a0), To: point(axis, a1)})
		}
	}
	return lines
}

func appendCross(lines []object.Line, p mgl32.Vec3, size float32) []object.Line {
	for axis := range 3 {
		var d mgl32.Vec3
		d[axis] = size
		lines = append(lines, object.Line{From: p.Sub(d), To: p.Add(d)})
	}
	return lines
}
